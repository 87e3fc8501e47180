package metrics

import (
	"sync/atomic"
	"time"
)

// IngressRateCounter tracks the average gateway event rate since start.
type IngressRateCounter struct {
	events    atomic.Uint64
	startTime atomic.Int64
}

func NewIngressRateCounter() *IngressRateCounter {
	c := &IngressRateCounter{}
	c.startTime.Store(time.Now().UnixNano())
	return c
}

func (irc *IngressRateCounter) Increment() {
	irc.events.Add(1)
}

// GetRate returns events per second.
func (irc *IngressRateCounter) GetRate() float64 {
	events := irc.events.Load()
	elapsed := time.Now().UnixNano() - irc.startTime.Load()

	if elapsed <= 0 {
		return 0
	}

	return float64(events) / (float64(elapsed) / 1e9)
}

func (irc *IngressRateCounter) GetCount() uint64 {
	return irc.events.Load()
}
