// Package proctab scans the OS process table. One scan produces a fresh
// list of Records; a process that vanishes or denies access mid-scan is
// dropped from that scan without aborting it.
package proctab

import (
	"fmt"
	"sync"

	"github.com/shirou/gopsutil/v4/process"
)

// Status is a process's coarse run state.
type Status string

const (
	StatusRunning  Status = "running"
	StatusSleeping Status = "sleeping"
	StatusZombie   Status = "zombie"
	StatusStopped  Status = "stopped"
	StatusUnknown  Status = "unknown"
)

// Record is one process's readings from one scan. Records are values,
// rebuilt from scratch every scan and never mutated afterwards. Score is
// filled in by the monitor loop.
type Record struct {
	Pid        int32   `json:"pid"`
	Name       string  `json:"name"`
	CPUPercent float64 `json:"cpu_percent"`
	RAMPercent float64 `json:"ram_percent"`
	Status     Status  `json:"status"`
	Score      float64 `json:"score"`
}

// Collector scans the process table. It caches gopsutil process handles
// across scans so CPU percentages are deltas between scans rather than
// since-boot averages; the cache is measurement plumbing, not an
// authoritative process table.
type Collector struct {
	mu        sync.Mutex
	procCache map[int32]*process.Process
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{procCache: make(map[int32]*process.Process)}
}

// Collect scans the process table once and returns a fresh Record list.
// Pids are unique within one result. The mutex covers only the cache
// reconciliation, never the per-process OS reads; one Collector is
// expected to be sampled by a single goroutine at a time.
func (c *Collector) Collect() ([]Record, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("error getting processes: %w", err)
	}

	return collectRecords(c.syncCache(procs)), nil
}

// syncCache reconciles the handle cache against the current scan and
// returns the handles to read this tick.
func (c *Collector) syncCache(procs []*process.Process) []*process.Process {
	c.mu.Lock()
	defer c.mu.Unlock()

	currentPids := make(map[int32]bool, len(procs))
	for _, p := range procs {
		currentPids[p.Pid] = true
		if _, ok := c.procCache[p.Pid]; !ok {
			c.procCache[p.Pid] = p
		}
	}

	// Cleanup dead processes
	for pid := range c.procCache {
		if !currentPids[pid] {
			delete(c.procCache, pid)
		}
	}

	handles := make([]*process.Process, 0, len(c.procCache))
	for _, p := range c.procCache {
		handles = append(handles, p)
	}
	return handles
}

// collectRecords reads every handle, dropping the ones that vanished or
// denied access mid-scan without aborting the rest.
func collectRecords(handles []*process.Process) []Record {
	records := make([]Record, 0, len(handles))
	for _, p := range handles {
		if rec, ok := readRecord(p); ok {
			records = append(records, rec)
		}
	}
	return records
}

// readRecord reads one process's attributes. ok is false when the process
// is no longer readable; that process is skipped for this scan.
func readRecord(p *process.Process) (Record, bool) {
	// Use Percent(0) which calculates based on last call time
	cpuPct, err := p.Percent(0)
	if err != nil {
		// Process might have died
		return Record{}, false
	}

	name, err := p.Name()
	if err != nil {
		name = "unknown"
	}

	memPct, err := p.MemoryPercent()
	if err != nil {
		memPct = 0
	}

	return Record{
		Pid:        p.Pid,
		Name:       name,
		CPUPercent: cpuPct,
		RAMPercent: float64(memPct),
		Status:     readStatus(p),
	}, true
}

func readStatus(p *process.Process) Status {
	statuses, err := p.Status()
	if err != nil || len(statuses) == 0 {
		return StatusUnknown
	}
	switch statuses[0] {
	case process.Running:
		return StatusRunning
	case process.Sleep, process.Idle, process.Wait:
		return StatusSleeping
	case process.Zombie:
		return StatusZombie
	case process.Stop:
		return StatusStopped
	default:
		return StatusUnknown
	}
}
