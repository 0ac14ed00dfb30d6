package sim

import (
	"github.com/coherence-sim/cachesim/bus"
	"github.com/coherence-sim/cachesim/cachecore"
	"github.com/coherence-sim/cachesim/cmn"
	"github.com/coherence-sim/cachesim/protocol"
	"github.com/coherence-sim/cachesim/trace"
	"github.com/google/uuid"
)

// Driver owns one run's bus, per-core caches, and profiler, generic over
// the same state type S every cache and its Rules[S] were built with
// (spec §2's dataflow: driver -> cache -> bus -> snoop -> cache). Run
// metadata is tagged with a UUID the way the teacher tags every xaction
// with one (xreg.Args.UUID, xs.tcowi.msg.TxnUUID).
type Driver[S protocol.State] struct {
	RunID uuid.UUID

	cfg      *cmn.Config
	rules    protocol.Rules[S]
	bus      *bus.Bus
	caches   []*cachecore.Cache[S]
	traces   [][]trace.Instruction
	profiler *Profiler
}

// NewDriver builds a Driver for cfg (already Validate()-d), wiring one
// cache per trace onto a fresh bus.
func NewDriver[S protocol.State](cfg *cmn.Config, rules protocol.Rules[S], traces [][]trace.Instruction) *Driver[S] {
	b := bus.New(cfg.BlockSize)
	caches := make([]*cachecore.Cache[S], len(traces))
	for i := range caches {
		caches[i] = cachecore.New(i, cfg, rules, b)
	}
	return &Driver[S]{
		RunID:    uuid.New(),
		cfg:      cfg,
		rules:    rules,
		bus:      b,
		caches:   caches,
		traces:   traces,
		profiler: NewProfiler(len(traces)),
	}
}

// Bus exposes the run's bus for reporting (traffic bytes, invalidations).
func (d *Driver[S]) Bus() *bus.Bus { return d.bus }

// Profiler exposes the run's accumulated counters for reporting.
func (d *Driver[S]) Profiler() *Profiler { return d.profiler }

// Caches exposes the per-core caches, e.g. for coherence.CheckInvariants
// in a test harness.
func (d *Driver[S]) Caches() []*cachecore.Cache[S] { return d.caches }

// NumCores is the number of cores (and traces) this run was built with.
func (d *Driver[S]) NumCores() int { return len(d.traces) }

// step applies one instruction on behalf of coreIdx and updates that
// core's counters (spec §4.6). It never touches another core's CoreStats
// slot, which is what lets RunParallel call it concurrently across cores
// without a lock around the profiler's per-core data.
func (d *Driver[S]) step(coreIdx int, instr trace.Instruction) {
	stats := &d.profiler.Cores[coreIdx]
	cache := d.caches[coreIdx]

	switch instr.Kind {
	case trace.Load:
		cycles, hit, _, next := cache.Load(instr.Value)
		stats.Cycles += int64(cycles)
		stats.IdleCycles += int64(cycles)
		stats.Loads++
		d.recordHitMiss(stats, hit)
		d.classify(next)
	case trace.Store:
		cycles, hit, _, next := cache.Store(instr.Value)
		stats.Cycles += int64(cycles)
		stats.IdleCycles += int64(cycles)
		stats.Stores++
		d.recordHitMiss(stats, hit)
		d.classify(next)
	case trace.Compute:
		// Compute adds to both the total cycle count and compute_cycles, but
		// never to idle_cycles or the hit/miss counters (spec §9(c) design
		// note, correcting source variants that mis-wire this into store
		// cycles). original_source/src/profiler.cpp's Profiler::update adds
		// this_cycles to cycles_per_core for every instruction kind, OTHER
		// included.
		stats.Cycles += int64(instr.Value)
		stats.ComputeCycles += int64(instr.Value)
	}
}

func (d *Driver[S]) recordHitMiss(stats *CoreStats, hit bool) {
	if hit {
		stats.Hits++
	} else {
		stats.Misses++
	}
}

// classify records the global private/shared access counters (spec §4.6)
// from the resulting state of a Load or Store.
func (d *Driver[S]) classify(next S) {
	switch {
	case d.rules.Private(next):
		d.profiler.recordPrivate()
	case d.rules.Shared(next):
		d.profiler.recordShared()
	}
}
