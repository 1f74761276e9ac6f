// Package boost decides which processes get an automatic priority boost.
// The policy is stateless: it is evaluated fresh against every tick's
// records, so a process that stays above the threshold is re-selected each
// tick. That re-affirms the priority even if something outside the engine
// reset it.
package boost

import (
	"github.com/procboost/boostd/internal/priority"
	"github.com/procboost/boostd/internal/proctab"
)

// Config is the auto-boost configuration read by the monitor loop once per
// tick. Treat values as immutable once published.
type Config struct {
	Enabled   bool           `json:"enabled"`
	Threshold float64        `json:"threshold"`
	Level     priority.Level `json:"level"`
}

// DefaultConfig mirrors the engine's startup defaults: boosting off, a
// threshold of 50, boosting to High.
func DefaultConfig() Config {
	return Config{
		Enabled:   false,
		Threshold: 50,
		Level:     priority.High,
	}
}

// Select returns the pids whose score strictly exceeds cfg.Threshold, or
// nothing when boosting is disabled. Pure with respect to its inputs.
func Select(records []proctab.Record, cfg Config) []int32 {
	if !cfg.Enabled {
		return nil
	}
	var pids []int32
	for _, rec := range records {
		if rec.Score > cfg.Threshold {
			pids = append(pids, rec.Pid)
		}
	}
	return pids
}
