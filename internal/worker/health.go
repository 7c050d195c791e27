// Package worker runs the optional background connectivity sweeps that feed
// the health_check tool.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/martinsuchenak/fortimcp/internal/fortigate"
	"github.com/martinsuchenak/fortimcp/internal/log"
)

// Health values reported by Monitor.Status.
const (
	StatusUnknown  = "unknown"
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// probeTimeout bounds one full sweep.
const probeTimeout = 2 * time.Minute

// Monitor tracks the outcome of the most recent connectivity sweep over the
// registry. Sweeps run on demand or on a cron schedule; the per-device
// probes never mutate registry state.
type Monitor struct {
	mu       sync.RWMutex
	registry *fortigate.Registry
	results  map[string]bool
	lastRun  time.Time
	cron     *cron.Cron
}

// NewMonitor creates a monitor over registry. No sweep is scheduled until
// Start or RunProbe is called.
func NewMonitor(registry *fortigate.Registry) *Monitor {
	return &Monitor{registry: registry}
}

// RunProbe performs one connectivity sweep and stores the outcome.
func (m *Monitor) RunProbe(ctx context.Context) map[string]bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	results := m.registry.TestAll(ctx)

	m.mu.Lock()
	m.results = results
	m.lastRun = time.Now()
	m.mu.Unlock()

	reachable := 0
	for _, ok := range results {
		if ok {
			reachable++
		}
	}
	log.Info("Connectivity sweep completed", "devices", len(results), "reachable", reachable)
	return results
}

// Start schedules recurring sweeps using a cron spec (e.g. "@every 5m").
func (m *Monitor) Start(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		m.RunProbe(context.Background())
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.cron = c
	m.mu.Unlock()

	c.Start()
	log.Info("Health monitor started", "schedule", spec)
	return nil
}

// Stop halts scheduled sweeps. Safe to call when Start was never called.
func (m *Monitor) Stop() {
	m.mu.Lock()
	c := m.cron
	m.cron = nil
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
		log.Info("Health monitor stopped")
	}
}

// Status reports the aggregate health and a copy of the last sweep results.
// Before any sweep has run the status is unknown.
func (m *Monitor) Status() (string, map[string]bool, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.results == nil {
		return StatusUnknown, nil, m.lastRun
	}

	results := make(map[string]bool, len(m.results))
	status := StatusHealthy
	for id, ok := range m.results {
		results[id] = ok
		if !ok {
			status = StatusDegraded
		}
	}
	return status, results, m.lastRun
}
