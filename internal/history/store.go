// Package history keeps bounded in-memory histories of engine actions and
// system-stat samples. The monitor loop is the only writer; reads may come
// from other goroutines and are synchronized against concurrent appends.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/procboost/boostd/internal/sysstats"
)

// Kind classifies an action-log entry.
type Kind string

const (
	KindBoost     Kind = "boost"
	KindAutoBoost Kind = "auto_boost"
	KindKill      Kind = "kill"
	KindError     Kind = "error"
)

// Entry is one action-log record. The ID lets consumers that receive
// entries both streamed and via direct reads deduplicate them.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
}

// NewEntry stamps a fresh action-log entry.
func NewEntry(kind Kind, message string) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Kind:      kind,
		Message:   message,
	}
}

// Default ring capacities.
const (
	DefaultActionCapacity = 100
	DefaultStatCapacity   = 60
)

// Store holds the two bounded histories.
type Store struct {
	mu      sync.RWMutex
	actions *Ring[Entry]
	stats   *Ring[sysstats.Snapshot]
}

// NewStore returns a Store with the given ring capacities. Values below 1
// fall back to the defaults.
func NewStore(actionCap, statCap int) *Store {
	if actionCap < 1 {
		actionCap = DefaultActionCapacity
	}
	if statCap < 1 {
		statCap = DefaultStatCapacity
	}
	return &Store{
		actions: NewRing[Entry](actionCap),
		stats:   NewRing[sysstats.Snapshot](statCap),
	}
}

// AppendAction records an action-log entry.
func (s *Store) AppendAction(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions.Append(e)
}

// AppendStat records a system-stat sample.
func (s *Store) AppendStat(snap sysstats.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Append(snap)
}

// Actions returns the buffered action log, oldest first.
func (s *Store) Actions() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actions.Items()
}

// Stats returns the buffered stat samples, oldest first.
func (s *Store) Stats() []sysstats.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats.Items()
}
