// Package score computes the resource-pressure score used for boost
// decisions. CPU saturation is weighted as the primary contention signal,
// memory pressure secondary. The weights are fixed; making them
// configurable is an explicit non-feature of the current engine.
package score

const (
	cpuWeight = 0.6
	ramWeight = 0.4
)

// Compute returns the weighted pressure score for one process sample.
// cpuPct may exceed 100 on multi-core hosts.
func Compute(cpuPct, ramPct float64) float64 {
	return cpuWeight*cpuPct + ramWeight*ramPct
}
