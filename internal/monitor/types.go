package monitor

import (
	"github.com/procboost/boostd/internal/history"
	"github.com/procboost/boostd/internal/proctab"
	"github.com/procboost/boostd/internal/sysstats"
)

// TickResult is the immutable bundle one tick hands to the consumer:
// the system snapshot, every process record scored this tick, and the
// action-log entries this tick produced.
type TickResult struct {
	Snapshot sysstats.Snapshot `json:"snapshot"`
	Records  []proctab.Record  `json:"records"`
	Actions  []history.Entry   `json:"actions"`
}

// Sink receives each tick's result on the engine's goroutine. Post must
// return promptly and never block; results arrive in tick order.
type Sink interface {
	Post(result TickResult)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(result TickResult)

func (f SinkFunc) Post(result TickResult) { f(result) }

// NopSink discards results.
var NopSink = SinkFunc(func(TickResult) {})

// ProcessCollector yields one scan of per-process records.
type ProcessCollector interface {
	Collect() ([]proctab.Record, error)
}

// SystemCollector yields one snapshot of system-wide aggregates.
type SystemCollector interface {
	Collect() (sysstats.Snapshot, error)
}
