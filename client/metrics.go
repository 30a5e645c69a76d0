package client

import "sync/atomic"

// Metrics records session counters. Safe for concurrent use; the shim binary
// serves a Snapshot over its debug HTTP endpoint.
type Metrics struct {
	TicksReceived   int64 // tick snapshots received
	ActionsSent     int64 // actions written back
	BadLines        int64 // malformed or oversized incoming lines
	Spawns          int64 // spawn notifications
	Decisions       int64 // agent invocations
	TotalDecisionNs int64 // cumulative agent time (nanoseconds)
}

// NewMetrics returns a zeroed metrics set.
func NewMetrics() *Metrics { return &Metrics{} }

func (m *Metrics) IncTick() { atomic.AddInt64(&m.TicksReceived, 1) }

func (m *Metrics) IncAction() { atomic.AddInt64(&m.ActionsSent, 1) }

func (m *Metrics) IncBadLine() { atomic.AddInt64(&m.BadLines, 1) }

func (m *Metrics) IncSpawn() { atomic.AddInt64(&m.Spawns, 1) }

// AddDecision records one agent call and its duration.
func (m *Metrics) AddDecision(ns int64) {
	atomic.AddInt64(&m.Decisions, 1)
	atomic.AddInt64(&m.TotalDecisionNs, ns)
}

// Snapshot returns a read-only copy for serving over HTTP.
func (m *Metrics) Snapshot() map[string]any {
	decisions := atomic.LoadInt64(&m.Decisions)
	total := atomic.LoadInt64(&m.TotalDecisionNs)
	var avgMs float64
	if decisions > 0 {
		avgMs = float64(total) / float64(decisions) / 1e6
	}
	return map[string]any{
		"ticks_received":  atomic.LoadInt64(&m.TicksReceived),
		"actions_sent":    atomic.LoadInt64(&m.ActionsSent),
		"bad_lines":       atomic.LoadInt64(&m.BadLines),
		"spawns":          atomic.LoadInt64(&m.Spawns),
		"avg_decision_ms": avgMs,
	}
}
