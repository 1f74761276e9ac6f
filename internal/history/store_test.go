package history

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procboost/boostd/internal/sysstats"
)

func TestStoreActionCapacity(t *testing.T) {
	s := NewStore(100, 60)

	for i := 0; i < 101; i++ {
		s.AppendAction(NewEntry(KindAutoBoost, fmt.Sprintf("entry %d", i)))
	}

	actions := s.Actions()
	require.Len(t, actions, 100)
	assert.Equal(t, "entry 1", actions[0].Message, "entry 0 must have been evicted")
	assert.Equal(t, "entry 100", actions[99].Message)
}

func TestStoreStatCapacity(t *testing.T) {
	s := NewStore(100, 60)

	for i := 0; i < 61; i++ {
		s.AppendStat(sysstats.Snapshot{CPUPercent: float64(i)})
	}

	stats := s.Stats()
	require.Len(t, stats, 60)
	assert.Equal(t, 1.0, stats[0].CPUPercent)
	assert.Equal(t, 60.0, stats[59].CPUPercent)
}

func TestStoreDefaultCapacities(t *testing.T) {
	s := NewStore(0, -1)

	for i := 0; i < 500; i++ {
		s.AppendAction(NewEntry(KindError, "x"))
		s.AppendStat(sysstats.Snapshot{})
	}

	assert.Len(t, s.Actions(), DefaultActionCapacity)
	assert.Len(t, s.Stats(), DefaultStatCapacity)
}

func TestNewEntryStampsIDAndTime(t *testing.T) {
	a := NewEntry(KindBoost, "one")
	b := NewEntry(KindBoost, "two")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
	assert.Equal(t, KindBoost, a.Kind)
}

func TestStoreConcurrentReadersAndWriter(t *testing.T) {
	s := NewStore(100, 60)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.AppendAction(NewEntry(KindAutoBoost, "tick"))
			s.AppendStat(sysstats.Snapshot{})
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = s.Actions()
				_ = s.Stats()
			}
		}()
	}

	wg.Wait()
	assert.LessOrEqual(t, len(s.Actions()), 100)
}
