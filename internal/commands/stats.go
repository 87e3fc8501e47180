package commands

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// SystemStats is the host and process view shown by /auditstatus. Fields a
// probe could not read stay zero.
type SystemStats struct {
	Hostname   string
	Platform   string
	HostUptime time.Duration

	MemoryTotal   uint64
	MemoryPercent float64

	ProcessRSS uint64
	CPUPercent float64
	Goroutines int
	GoVersion  string
}

func gatherSystemStats() *SystemStats {
	stats := &SystemStats{
		Goroutines: runtime.NumGoroutine(),
		GoVersion:  runtime.Version(),
	}

	if info, err := host.Info(); err == nil {
		stats.Hostname = info.Hostname
		stats.Platform = info.Platform
		stats.HostUptime = time.Duration(info.Uptime) * time.Second
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryTotal = vm.Total
		stats.MemoryPercent = vm.UsedPercent
	}

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfo(); err == nil {
			stats.ProcessRSS = info.RSS
		}
		if pct, err := p.CPUPercent(); err == nil {
			stats.CPUPercent = pct
		}
	}

	return stats
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func createProgressBar(value, max float64) string {
	if max <= 0 {
		max = 100
	}
	filled := int(value / max * 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return "`" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "`"
}

func (s *SystemStats) hostField() string {
	return fmt.Sprintf("**Host:** `%s` (%s)\n**Uptime:** `%s`\n**Memory:** `%.1f%%` of `%s`\n%s",
		orUnknown(s.Hostname),
		orUnknown(s.Platform),
		formatDuration(s.HostUptime),
		s.MemoryPercent,
		humanize.IBytes(s.MemoryTotal),
		createProgressBar(s.MemoryPercent, 100))
}

func (s *SystemStats) processField() string {
	return fmt.Sprintf("**RSS:** `%s`\n**CPU:** `%.1f%%`\n**Goroutines:** `%d`\n**Go:** `%s`",
		humanize.IBytes(s.ProcessRSS),
		s.CPUPercent,
		s.Goroutines,
		s.GoVersion)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
