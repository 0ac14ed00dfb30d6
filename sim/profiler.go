// Package sim is the core driver and profiler (spec §2, component 5): it
// advances each core's instruction cursor, drives its cache, and
// accumulates the per-core and global counters spec.md §4.6 names.
// Grounded on reb/resilver.go's per-mountpath jogger/WaitGroup fan-out,
// adapted to per-core goroutines and, for private/shared accounting, the
// atomic fetch-add counters the teacher keeps on xaction stats objects.
package sim

import (
	"github.com/coherence-sim/cachesim/3rdparty/atomic"
)

// CoreStats holds one core's accumulated counters (spec §4.6). Per
// original_source/src/profiler.cpp's Profiler::update, IdleCycles
// accumulates the cycle cost of every Load/Store (time the core spends
// waiting on the memory subsystem); ComputeCycles accumulates separately
// from Compute instructions alone; Cycles is always their sum.
type CoreStats struct {
	Cycles        int64
	IdleCycles    int64
	ComputeCycles int64
	Loads         int64
	Stores        int64
	Hits          int64
	Misses        int64
}

// Profiler accumulates per-core counters and the two global private/shared
// access counters (spec §4.6). In parallel mode every core's goroutine
// only ever mutates its own CoreStats slot — different cores touch
// different slice elements, never the same one — so only the private and
// shared totals, which every goroutine increments, need to be atomic (spec
// §5: "private/shared access counters on the profiler use atomic
// fetch-add").
type Profiler struct {
	Cores []CoreStats

	privateAccesses atomic.Int64
	sharedAccesses  atomic.Int64
}

// NewProfiler allocates a Profiler for numCores cores.
func NewProfiler(numCores int) *Profiler {
	return &Profiler{Cores: make([]CoreStats, numCores)}
}

func (p *Profiler) recordPrivate() { p.privateAccesses.Inc() }
func (p *Profiler) recordShared()  { p.sharedAccesses.Inc() }

// PrivateAccesses and SharedAccesses report the global totals (spec §4.6).
func (p *Profiler) PrivateAccesses() int64 { return p.privateAccesses.Load() }
func (p *Profiler) SharedAccesses() int64  { return p.sharedAccesses.Load() }

// MaxCycles returns the slowest core's cycle count (spec §6.4's "max
// cycles across cores").
func (p *Profiler) MaxCycles() int64 {
	var max int64
	for _, c := range p.Cores {
		if c.Cycles > max {
			max = c.Cycles
		}
	}
	return max
}
