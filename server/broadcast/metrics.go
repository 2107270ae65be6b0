package broadcast

import (
	"sync"
)

// Policy is a delivery policy of the Broadcaster.
type Policy string

const (
	PolicyChunk  Policy = "chunk"
	PolicyEntity Policy = "entity"
	PolicyDirect Policy = "direct"
	PolicyGlobal Policy = "global"
)

// Metrics tracks per-policy counters of a Broadcaster.
type Metrics struct {
	mu sync.Mutex

	sent    map[Policy]uint64
	skipped map[Policy]uint64
}

// NewMetrics creates an empty metrics registry.
func NewMetrics() *Metrics {
	return &Metrics{
		sent:    make(map[Policy]uint64),
		skipped: make(map[Policy]uint64),
	}
}

// AddSent increments the number of packets sent using a policy.
func (m *Metrics) AddSent(p Policy, value uint64) {
	if m == nil || value == 0 {
		return
	}
	m.mu.Lock()
	m.sent[p] += value
	m.mu.Unlock()
}

// IncSkipped increments the number of sends skipped because the client or
// entity was no longer alive.
func (m *Metrics) IncSkipped(p Policy) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.skipped[p]++
	m.mu.Unlock()
}

// Sent returns the number of packets sent using a policy.
func (m *Metrics) Sent(p Policy) uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[p]
}

// Skipped returns the number of sends skipped for a policy.
func (m *Metrics) Skipped(p Policy) uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skipped[p]
}
