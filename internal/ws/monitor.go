package ws

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Monitor is the core's only timing-based failure detector. On every
// interval it probes each registered connection independently; a
// connection that neither answers within the timeout nor survived its
// last write is handed to evict.
type Monitor struct {
	registry *Registry
	interval time.Duration
	timeout  time.Duration
	evict    func(*Client)
}

func NewMonitor(registry *Registry, interval, timeout time.Duration, evict func(*Client)) *Monitor {
	return &Monitor{
		registry: registry,
		interval: interval,
		timeout:  timeout,
		evict:    evict,
	}
}

func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *Monitor) sweep() {
	for _, c := range m.registry.All() {
		if c.writeFailed.Load() {
			logrus.WithField("user", c.userID).Warn("transport gone, evicting")
			m.evict(c)
			continue
		}
		client := c
		client.startProbe(m.timeout, func() {
			logrus.WithField("user", client.userID).Warn("liveness timeout, evicting")
			m.evict(client)
		})
	}
}
