package dispatcher

import (
	"sort"
	"sync"
	"time"
)

// Metrics collects dispatch statistics.
type Metrics struct {
	mu sync.RWMutex

	actions map[string]*ActionMetrics

	totalDispatches uint64
	totalAborted    uint64
	totalPanics     uint64
	totalDuration   time.Duration
}

// ActionMetrics holds metrics for one action.
type ActionMetrics struct {
	Name          string
	DispatchCount uint64
	AbortCount    uint64
	TotalDuration time.Duration
	MaxDuration   time.Duration
	LastOutcome   Outcome
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{actions: make(map[string]*ActionMetrics)}
}

// RecordDispatch records one dispatched step.
func (m *Metrics) RecordDispatch(name string, d time.Duration, outcome Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalDispatches++
	m.totalDuration += d
	if outcome == Aborted {
		m.totalAborted++
	}

	am := m.actions[name]
	if am == nil {
		am = &ActionMetrics{Name: name}
		m.actions[name] = am
	}
	am.DispatchCount++
	am.TotalDuration += d
	am.LastOutcome = outcome
	am.MaxDuration = max(am.MaxDuration, d)
	if outcome == Aborted {
		am.AbortCount++
	}
}

// RecordPanic records a recovered fault.
func (m *Metrics) RecordPanic(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalPanics++
	if am := m.actions[name]; am != nil {
		am.AbortCount++
	}
}

// TotalDispatches returns the number of dispatched steps.
func (m *Metrics) TotalDispatches() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalDispatches
}

// TotalPanics returns the number of recovered faults.
func (m *Metrics) TotalPanics() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalPanics
}

// ActionStats returns a copy of the metrics for one action.
func (m *Metrics) ActionStats(name string) *ActionMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	am := m.actions[name]
	if am == nil {
		return nil
	}
	c := *am
	return &c
}

// TopActions returns the n most dispatched actions.
func (m *Metrics) TopActions(n int) []*ActionMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ActionMetrics, 0, len(m.actions))
	for _, am := range m.actions {
		c := *am
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DispatchCount != out[j].DispatchCount {
			return out[i].DispatchCount > out[j].DispatchCount
		}
		return out[i].Name < out[j].Name
	})
	return out[:min(n, len(out))]
}

// MetricsSnapshot is a point-in-time copy of the totals.
type MetricsSnapshot struct {
	TotalDispatches uint64
	TotalAborted    uint64
	TotalPanics     uint64
	AverageDuration time.Duration
	ActionCount     int
}

// Snapshot returns the current totals.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := MetricsSnapshot{
		TotalDispatches: m.totalDispatches,
		TotalAborted:    m.totalAborted,
		TotalPanics:     m.totalPanics,
		ActionCount:     len(m.actions),
	}
	if m.totalDispatches > 0 {
		s.AverageDuration = m.totalDuration / time.Duration(m.totalDispatches)
	}
	return s
}
