// Package memory estimates how much of the input can be held in memory at
// once and how large each sorted run should be.
package memory

import (
	"runtime"
	"runtime/debug"
	"unsafe"
)

const (
	// DefaultMaxRuns bounds the number of runs a single sort aims to create.
	DefaultMaxRuns = 1024

	// DefaultAvailable is used when the available memory can't be determined.
	DefaultAvailable int64 = 256 << 20
)

// Estimator turns input sizes into memory estimates. The zero value counts
// only line bytes; use NewEstimator for an overhead matching the platform.
type Estimator struct {
	// ObjectOverhead is added to the length of every buffered line.
	ObjectOverhead int64
}

// NewEstimator returns an Estimator whose per-line overhead is the size of a
// string header plus the slice slot that holds it while buffered.
func NewEstimator() Estimator {
	var s string
	return Estimator{
		ObjectOverhead: int64(unsafe.Sizeof(s)) + int64(unsafe.Sizeof(uintptr(0))),
	}
}

// EstimateRunSize returns the target size of one run in bytes. The naive
// target ceil(totalInputBytes/maxRuns) is raised to half of the available
// memory when it is smaller, so that small inputs don't produce many tiny runs.
func (e Estimator) EstimateRunSize(totalInputBytes int64, maxRuns int, availableMemoryBytes int64) int64 {
	if maxRuns <= 0 {
		maxRuns = 1
	}
	n := int64(maxRuns)

	size := totalInputBytes / n
	if totalInputBytes%n != 0 {
		size++
	}

	if half := availableMemoryBytes / 2; size < half {
		size = half
	}
	return size
}

// EstimateLineFootprint approximates the memory needed to buffer line.
func (e Estimator) EstimateLineFootprint(line string) int64 {
	return int64(len(line)) + e.ObjectOverhead
}

// Available estimates the memory a sort may use. It prefers the runtime soft
// memory limit, then free system memory, and subtracts the heap already in
// use. Call it once per sort: it triggers a garbage collection.
func Available() int64 {
	runtime.GC()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	inUse := int64(ms.HeapInuse)

	if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < 1<<62 {
		return clamp(limit - inUse)
	}

	if free, ok := systemFree(); ok {
		return clamp(free)
	}

	return DefaultAvailable
}

func clamp(n int64) int64 {
	if n <= 0 {
		return DefaultAvailable
	}
	return n
}
