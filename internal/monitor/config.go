package monitor

import (
	"sync/atomic"

	"github.com/procboost/boostd/internal/boost"
)

// ConfigStore publishes the auto-boost configuration across the consumer /
// engine thread boundary. Writers swap in a whole new value; the engine
// reads one internally consistent copy per tick. No lock sits on the tick
// path.
type ConfigStore struct {
	ptr atomic.Pointer[boost.Config]
}

// NewConfigStore returns a store seeded with cfg.
func NewConfigStore(cfg boost.Config) *ConfigStore {
	s := &ConfigStore{}
	s.ptr.Store(&cfg)
	return s
}

// Load returns the current configuration as a copy.
func (s *ConfigStore) Load() boost.Config {
	return *s.ptr.Load()
}

// Store publishes cfg, replacing the previous configuration atomically.
func (s *ConfigStore) Store(cfg boost.Config) {
	s.ptr.Store(&cfg)
}
