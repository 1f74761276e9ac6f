// Package sysstats collects OS-wide CPU, memory, disk, and network
// aggregates, one snapshot per monitoring tick.
package sysstats

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"

	"github.com/procboost/boostd/internal/logger"
)

// Snapshot is one tick's system-wide readings.
type Snapshot struct {
	CPUPercent     float64   `json:"cpu_percent"`
	MemPercent     float64   `json:"mem_percent"`
	MemUsedBytes   uint64    `json:"mem_used_bytes"`
	MemTotalBytes  uint64    `json:"mem_total_bytes"`
	DiskPercent    float64   `json:"disk_percent"`
	DiskUsedBytes  uint64    `json:"disk_used_bytes"`
	DiskTotalBytes uint64    `json:"disk_total_bytes"`
	NetTxRate      uint64    `json:"net_tx_rate"` // Bytes/sec
	NetRxRate      uint64    `json:"net_rx_rate"` // Bytes/sec
	ProcessCount   int       `json:"process_count"`
	Timestamp      time.Time `json:"timestamp"`
}

// Collector produces Snapshots. It keeps the previous network counters to
// derive byte rates; the mutex covers only that counter state, never the
// OS queries themselves.
type Collector struct {
	mu           sync.Mutex
	diskPath     string
	lastNetStats *net.IOCountersStat
	lastNetTime  time.Time
}

// NewCollector returns a Collector using the platform's primary volume for
// disk readings.
func NewCollector() *Collector {
	return &Collector{diskPath: defaultDiskPath()}
}

func defaultDiskPath() string {
	if runtime.GOOS == "windows" {
		return `C:\`
	}
	return "/"
}

// Collect returns one Snapshot. Disk readings degrade to zero rather than
// failing the snapshot; CPU or memory failures are reported as errors.
// ProcessCount is left for the caller to fill from its process scan.
func (c *Collector) Collect() (Snapshot, error) {
	cpuUsage, err := cpu.Percent(0, false)
	if err != nil {
		return Snapshot{}, fmt.Errorf("error getting CPU usage: %w", err)
	}

	memUsage, err := mem.VirtualMemory()
	if err != nil {
		return Snapshot{}, fmt.Errorf("error getting memory usage: %w", err)
	}

	snap := Snapshot{
		CPUPercent:    cpuUsage[0],
		MemPercent:    memUsage.UsedPercent,
		MemUsedBytes:  memUsage.Used,
		MemTotalBytes: memUsage.Total,
		Timestamp:     time.Now(),
	}

	if usage, ok := c.diskUsage(); ok {
		snap.DiskPercent = usage.UsedPercent
		snap.DiskUsedBytes = usage.Used
		snap.DiskTotalBytes = usage.Total
	}

	c.collectNetRates(&snap)

	return snap, nil
}

// diskUsage queries the default path first, then falls back to the first
// queryable mount point. Returns ok=false when nothing is queryable.
func (c *Collector) diskUsage() (*disk.UsageStat, bool) {
	usage, err := disk.Usage(c.diskPath)
	if err == nil {
		return usage, true
	}
	logger.Debug("disk usage failed, probing mount points", "path", c.diskPath, "error", err)

	parts, err := disk.Partitions(false)
	if err != nil {
		return nil, false
	}
	for _, part := range parts {
		if usage, err := disk.Usage(part.Mountpoint); err == nil {
			return usage, true
		}
	}
	return nil, false
}

func (c *Collector) collectNetRates(snap *Snapshot) {
	netStats, err := net.IOCounters(false) // false = aggregated
	if err != nil || len(netStats) == 0 {
		return
	}
	current := &netStats[0]
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastNetStats != nil {
		duration := now.Sub(c.lastNetTime).Seconds()
		if duration > 0 {
			snap.NetTxRate = uint64(float64(current.BytesSent-c.lastNetStats.BytesSent) / duration)
			snap.NetRxRate = uint64(float64(current.BytesRecv-c.lastNetStats.BytesRecv) / duration)
		}
	}

	c.lastNetStats = current
	c.lastNetTime = now
}
