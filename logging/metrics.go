package logging

import "sync"

// Metrics is a process-wide counter set keyed by name. The zero value
// is ready to use and safe for concurrent access from the router
// workers and the game loop.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]uint64
}

func NewMetrics() *Metrics {
	return &Metrics{counters: make(map[string]uint64)}
}

// TelemetryAdd increments the named counter.
func (m *Metrics) TelemetryAdd(name string, delta uint64) {
	if m == nil || name == "" {
		return
	}
	m.mu.Lock()
	if m.counters == nil {
		m.counters = make(map[string]uint64)
	}
	m.counters[name] += delta
	m.mu.Unlock()
}

// TelemetryStore overwrites the named counter with an absolute value.
func (m *Metrics) TelemetryStore(name string, value uint64) {
	if m == nil || name == "" {
		return
	}
	m.mu.Lock()
	if m.counters == nil {
		m.counters = make(map[string]uint64)
	}
	m.counters[name] = value
	m.mu.Unlock()
}

// Snapshot returns a copy of every counter.
func (m *Metrics) Snapshot() map[string]uint64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]uint64, len(m.counters))
	for k, v := range m.counters {
		out[k] = v
	}
	return out
}
