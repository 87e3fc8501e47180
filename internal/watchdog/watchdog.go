package watchdog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go-audit-relay/internal/logging"
)

// Probe reports when a component was last seen alive.
type Probe func() time.Time

type Watchdog struct {
	mu             sync.RWMutex
	components     map[string]*ComponentHealth
	checkInterval  time.Duration
	alertThreshold uint32

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

type ComponentHealth struct {
	Name          string
	LastHeartbeat int64
	IsHealthy     uint32
	Threshold     time.Duration

	probe    Probe
	failures uint32
}

func NewWatchdog(checkInterval time.Duration) *Watchdog {
	return &Watchdog{
		components:     make(map[string]*ComponentHealth),
		checkInterval:  checkInterval,
		alertThreshold: 3,
		stop:           make(chan struct{}),
	}
}

// RegisterProbe tracks a component whose liveness is read on every check,
// such as the gateway's last heartbeat acknowledgement.
func (w *Watchdog) RegisterProbe(name string, threshold time.Duration, probe Probe) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.components[name] = &ComponentHealth{
		Name:      name,
		IsHealthy: 1,
		Threshold: threshold,
		probe:     probe,
	}
}

// Start runs the check loop until ctx ends or Stop is called.
func (w *Watchdog) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.monitorLoop(ctx)
}

func (w *Watchdog) monitorLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.CheckNow(time.Now())
		}
	}
}

// CheckNow evaluates every component against now. A component that never
// reported is left healthy; the gateway may still be connecting.
func (w *Watchdog) CheckNow(now time.Time) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for name, comp := range w.components {
		if seen := comp.probe(); !seen.IsZero() {
			atomic.StoreInt64(&comp.LastHeartbeat, seen.UnixNano())
		}

		lastBeat := atomic.LoadInt64(&comp.LastHeartbeat)
		if lastBeat == 0 {
			continue
		}

		elapsed := time.Duration(now.UnixNano() - lastBeat)
		if elapsed <= comp.Threshold {
			if atomic.SwapUint32(&comp.IsHealthy, 1) == 0 {
				logging.Info("Watchdog: %s recovered", name)
			}
			atomic.StoreUint32(&comp.failures, 0)
			continue
		}

		atomic.StoreUint32(&comp.IsHealthy, 0)
		if atomic.AddUint32(&comp.failures, 1) == w.alertThreshold {
			logging.Critical("Watchdog: %s unhealthy (no heartbeat for %v)", name, elapsed.Round(time.Second))
		} else {
			logging.Warn("Watchdog: %s unhealthy (no heartbeat for %v)", name, elapsed.Round(time.Second))
		}
	}
}

func (w *Watchdog) IsHealthy(name string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if comp, exists := w.components[name]; exists {
		return atomic.LoadUint32(&comp.IsHealthy) == 1
	}
	return false
}

// Healthy reports whether every registered component is healthy.
func (w *Watchdog) Healthy() bool {
	for _, ok := range w.GetStatus() {
		if !ok {
			return false
		}
	}
	return true
}

func (w *Watchdog) Stop() {
	w.once.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *Watchdog) GetStatus() map[string]bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	status := make(map[string]bool, len(w.components))
	for name, comp := range w.components {
		status[name] = atomic.LoadUint32(&comp.IsHealthy) == 1
	}
	return status
}
