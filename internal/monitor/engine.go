// Package monitor runs the background monitoring loop: scan processes and
// system state, score every process, apply auto-boosts, record history,
// and dispatch the tick's result to the consumer. A fault inside one tick
// never kills the loop; only Stop does.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/procboost/boostd/internal/boost"
	"github.com/procboost/boostd/internal/history"
	"github.com/procboost/boostd/internal/logger"
	"github.com/procboost/boostd/internal/priority"
	"github.com/procboost/boostd/internal/proctab"
	"github.com/procboost/boostd/internal/score"
	"github.com/procboost/boostd/internal/sysstats"
)

// State is the engine's lifecycle state.
type State int32

const (
	StateStopped State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// DefaultInterval is the tick cadence when none is configured.
const DefaultInterval = time.Second

// Options configure an Engine. Zero-valued fields get working defaults.
type Options struct {
	Interval  time.Duration
	Processes ProcessCollector
	System    SystemCollector
	Mapper    priority.Mapper
	Config    *ConfigStore
	History   *history.Store
	Sink      Sink
}

// Engine owns the dedicated monitoring goroutine. One Engine runs at most
// one loop; Start and Stop are idempotent.
type Engine struct {
	interval  time.Duration
	processes ProcessCollector
	system    SystemCollector
	mapper    priority.Mapper
	config    *ConfigStore
	store     *history.Store
	sink      Sink

	// lifecycle guards Start/Stop transitions; never held during a tick.
	lifecycle sync.Mutex
	state     atomic.Int32
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewEngine builds an Engine, filling unset options with the real
// collectors, the platform priority mapper, default history capacities,
// and a discarding sink.
func NewEngine(opts Options) *Engine {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Processes == nil {
		opts.Processes = proctab.NewCollector()
	}
	if opts.System == nil {
		opts.System = sysstats.NewCollector()
	}
	if opts.Mapper == nil {
		opts.Mapper = priority.NewMapper()
	}
	if opts.Config == nil {
		opts.Config = NewConfigStore(boost.DefaultConfig())
	}
	if opts.History == nil {
		opts.History = history.NewStore(history.DefaultActionCapacity, history.DefaultStatCapacity)
	}
	if opts.Sink == nil {
		opts.Sink = NopSink
	}
	return &Engine{
		interval:  opts.Interval,
		processes: opts.Processes,
		system:    opts.System,
		mapper:    opts.Mapper,
		config:    opts.Config,
		store:     opts.History,
		sink:      opts.Sink,
	}
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Config returns the shared auto-boost configuration store. Consumers may
// swap configurations at any time; the engine reads once per tick.
func (e *Engine) Config() *ConfigStore {
	return e.config
}

// History returns the engine's bounded history store.
func (e *Engine) History() *history.Store {
	return e.store
}

// Start launches the monitoring goroutine. Calling Start while the engine
// is already running is a no-op.
func (e *Engine) Start() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	if !e.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.wg.Add(1)
	go e.run(ctx)
	logger.Info("monitor started", "interval", e.interval.String())
}

// Stop requests cancellation and waits for the loop to exit. The request
// is observed at the next tick boundary, so Stop returns within one tick
// interval. Calling Stop while stopped is a no-op.
func (e *Engine) Stop() {
	e.lifecycle.Lock()
	if !e.state.CompareAndSwap(int32(StateRunning), int32(StateStopping)) {
		e.lifecycle.Unlock()
		return
	}
	e.cancel()
	e.lifecycle.Unlock()

	e.wg.Wait()
	e.state.Store(int32(StateStopped))
	logger.Info("monitor stopped")
}

func (e *Engine) run(ctx context.Context) {
	defer e.wg.Done()

	// First tick immediately so consumers don't wait a full interval for
	// data.
	e.tick()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

// tick runs one monitoring pass. Any panic is caught here, logged as an
// error entry, and the loop carries on with the next tick.
func (e *Engine) tick() {
	defer func() {
		if r := recover(); r != nil {
			entry := history.NewEntry(history.KindError, fmt.Sprintf("tick fault: %v", r))
			e.store.AppendAction(entry)
			logger.Error("tick fault recovered", "panic", r)
		}
	}()

	var actions []history.Entry

	records, err := e.processes.Collect()
	if err != nil {
		actions = append(actions, history.NewEntry(history.KindError,
			fmt.Sprintf("process scan failed: %v", err)))
		records = nil
	}

	snap, err := e.system.Collect()
	if err != nil {
		actions = append(actions, history.NewEntry(history.KindError,
			fmt.Sprintf("system stats failed: %v", err)))
		snap = sysstats.Snapshot{Timestamp: time.Now()}
	}
	snap.ProcessCount = len(records)

	for i := range records {
		records[i].Score = score.Compute(records[i].CPUPercent, records[i].RAMPercent)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
	byPid := make(map[int32]proctab.Record, len(records))
	for _, rec := range records {
		byPid[rec.Pid] = rec
	}

	cfg := e.config.Load()
	for _, pid := range boost.Select(records, cfg) {
		if err := e.mapper.SetPriority(pid, cfg.Level); err != nil {
			// A pid that exited between scan and boost is routine churn.
			if errors.Is(err, priority.ErrProcessVanished) {
				logger.Debug("auto-boost target vanished", "pid", pid)
				continue
			}
			actions = append(actions, history.NewEntry(history.KindError,
				fmt.Sprintf("auto-boost pid %d failed: %v", pid, err)))
			continue
		}
		rec := byPid[pid]
		actions = append(actions, history.NewEntry(history.KindAutoBoost,
			fmt.Sprintf("auto-boosted pid %d (%s) to %s - score %.2f",
				pid, rec.Name, cfg.Level, rec.Score)))
	}

	e.store.AppendStat(snap)
	for _, entry := range actions {
		e.store.AppendAction(entry)
	}

	e.sink.Post(TickResult{Snapshot: snap, Records: records, Actions: actions})
}

// BoostProcess sets pid's priority on demand, outside the tick cycle. The
// outcome is returned to the caller and recorded in the action history.
func (e *Engine) BoostProcess(pid int32, level priority.Level) error {
	if err := e.mapper.SetPriority(pid, level); err != nil {
		e.store.AppendAction(history.NewEntry(history.KindError,
			fmt.Sprintf("boost pid %d failed: %v", pid, err)))
		return err
	}
	e.store.AppendAction(history.NewEntry(history.KindBoost,
		fmt.Sprintf("boosted pid %d to %s", pid, level)))
	return nil
}

// TerminateProcess terminates pid on demand, outside the tick cycle.
func (e *Engine) TerminateProcess(pid int32) error {
	if err := e.mapper.Terminate(pid); err != nil {
		e.store.AppendAction(history.NewEntry(history.KindError,
			fmt.Sprintf("kill pid %d failed: %v", pid, err)))
		return err
	}
	e.store.AppendAction(history.NewEntry(history.KindKill,
		fmt.Sprintf("killed pid %d", pid)))
	return nil
}
