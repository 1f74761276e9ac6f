package proctab

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/procboost/boostd/internal/priority"
)

// Detail is the extended view of a single process, for on-demand lookups
// outside the tick cycle. Fields the OS refuses to reveal are left zero.
type Detail struct {
	Pid         int32     `json:"pid"`
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	CPUPercent  float64   `json:"cpu_percent"`
	RAMPercent  float64   `json:"ram_percent"`
	MemRSSBytes uint64    `json:"mem_rss_bytes"`
	MemVMSBytes uint64    `json:"mem_vms_bytes"`
	NumThreads  int32     `json:"num_threads"`
	CreateTime  time.Time `json:"create_time"`
	Exe         string    `json:"exe"`
	Cwd         string    `json:"cwd"`
	Cmdline     string    `json:"cmdline"`
	Username    string    `json:"username"`
	Nice        int32     `json:"nice"`
}

// LookupDetail reads the extended view of pid. A pid that no longer exists
// reports priority.ErrProcessVanished.
func LookupDetail(pid int32) (Detail, error) {
	p, err := process.NewProcess(pid)
	if err != nil {
		return Detail{}, fmt.Errorf("lookup pid %d: %w", pid, priority.ErrProcessVanished)
	}

	d := Detail{Pid: pid, Status: readStatus(p)}

	if name, err := p.Name(); err == nil {
		d.Name = name
	}
	if cpuPct, err := p.CPUPercent(); err == nil {
		d.CPUPercent = cpuPct
	}
	if memPct, err := p.MemoryPercent(); err == nil {
		d.RAMPercent = float64(memPct)
	}
	if memInfo, err := p.MemoryInfo(); err == nil {
		d.MemRSSBytes = memInfo.RSS
		d.MemVMSBytes = memInfo.VMS
	}
	if threads, err := p.NumThreads(); err == nil {
		d.NumThreads = threads
	}
	if created, err := p.CreateTime(); err == nil {
		d.CreateTime = time.UnixMilli(created)
	}
	if exe, err := p.Exe(); err == nil {
		d.Exe = exe
	}
	if cwd, err := p.Cwd(); err == nil {
		d.Cwd = cwd
	}
	if cmdline, err := p.Cmdline(); err == nil {
		d.Cmdline = cmdline
	}
	if username, err := p.Username(); err == nil {
		d.Username = username
	}
	if nice, err := p.Nice(); err == nil {
		d.Nice = nice
	}

	return d, nil
}
