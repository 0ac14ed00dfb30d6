package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coherence-sim/cachesim/cmn"
	"github.com/coherence-sim/cachesim/protocol"
	"github.com/coherence-sim/cachesim/trace"
)

func cfg2Core(proto cmn.Protocol, cacheSize, associativity, blockSize int) *cmn.Config {
	c := cmn.NewConfig(proto, "", cacheSize, associativity, blockSize)
	if err := c.Validate(); err != nil {
		panic(err)
	}
	return c
}

// TestScenarioS1_MESIReadThenReadSharing locks in spec.md §8's S1: both
// cores load the same block; core 0 starts Exclusive, ends Shared once
// core 1 misses in alongside it.
func TestScenarioS1_MESIReadThenReadSharing(t *testing.T) {
	cfg := cfg2Core(cmn.MESI, 128, 2, 16)
	traces := [][]trace.Instruction{
		{{Kind: trace.Load, Value: 0x0}},
		{{Kind: trace.Load, Value: 0x0}},
	}
	d := NewDriver(cfg, protocol.MESIRules{}, traces)
	RunSerial(d)

	require.Equal(t, protocol.Shared, d.Caches()[0].Lines()[0].State)
	require.Equal(t, protocol.Shared, d.Caches()[1].Lines()[0].State)
	require.EqualValues(t, 2, d.Bus().TrafficBlocks())
	require.EqualValues(t, 0, d.Bus().InvalidationsOrUpdates())
	require.EqualValues(t, 0, d.Profiler().Cores[0].Hits)
	require.EqualValues(t, 1, d.Profiler().Cores[0].Misses)
	require.EqualValues(t, 0, d.Profiler().Cores[1].Hits)
	require.EqualValues(t, 1, d.Profiler().Cores[1].Misses)
}

// TestScenarioS2_MESIWriteAfterShareInvalidates continues S1 with core 0
// storing to the now-Shared block: it must emit BusRdX, end Modified, cost
// exactly CACHE_HIT, and invalidate core 1.
func TestScenarioS2_MESIWriteAfterShareInvalidates(t *testing.T) {
	cfg := cfg2Core(cmn.MESI, 128, 2, 16)
	traces := [][]trace.Instruction{
		{{Kind: trace.Load, Value: 0x0}, {Kind: trace.Store, Value: 0x0}},
		{{Kind: trace.Load, Value: 0x0}},
	}
	d := NewDriver(cfg, protocol.MESIRules{}, traces)
	RunSerial(d)

	require.Equal(t, protocol.Modified, d.Caches()[0].Lines()[0].State)
	require.Equal(t, protocol.Invalid, d.Caches()[1].Lines()[0].State)
	require.EqualValues(t, 1, d.Bus().InvalidationsOrUpdates())
	// The store itself (core 0's second instruction) costs a flat CACHE_HIT.
	require.EqualValues(t, cmn.CacheHit+cmn.MemFetch+cmn.CacheHit, d.Profiler().Cores[0].Cycles,
		"load-miss (MEM_FETCH+CACHE_HIT) followed by a store hit (CACHE_HIT)")
	require.EqualValues(t, 1, d.Profiler().Cores[0].Hits)
}

// TestScenarioS3_MESIWritebackOnEviction locks in spec.md §8's S3: three
// stores from one core, all mapping to set 0 under a 2-set/2-way/16B
// geometry, evict the LRU Modified line and flush it.
func TestScenarioS3_MESIWritebackOnEviction(t *testing.T) {
	cfg := cfg2Core(cmn.MESI, 64, 2, 16) // num_sets=2, assoc=2, block=16
	traces := [][]trace.Instruction{
		{
			{Kind: trace.Store, Value: 0x0},
			{Kind: trace.Store, Value: 0x40},
			{Kind: trace.Store, Value: 0x80},
		},
	}
	d := NewDriver(cfg, protocol.MESIRules{}, traces)
	RunSerial(d)

	require.EqualValues(t, 4, d.Bus().TrafficBlocks(), "one BusRdX block per store miss, plus one Flush for the evicted Modified line")
	require.EqualValues(t, 0, d.Bus().InvalidationsOrUpdates())
}

// TestScenarioS4_DragonWriteHitInSharedClean locks in spec.md §8's S4: two
// cores hold a block SharedClean; core 0's store emits BusUpd, costs one
// word of traffic, and leaves core 0 SharedModified / core 1 SharedClean.
func TestScenarioS4_DragonWriteHitInSharedClean(t *testing.T) {
	cfg := cfg2Core(cmn.Dragon, 128, 2, 16)
	traces := [][]trace.Instruction{
		{{Kind: trace.Load, Value: 0x0}, {Kind: trace.Store, Value: 0x0}},
		{{Kind: trace.Load, Value: 0x0}},
	}
	d := NewDriver(cfg, protocol.DragonRules{}, traces)
	RunSerial(d)

	require.Equal(t, protocol.SharedModified, d.Caches()[0].Lines()[0].State)
	require.Equal(t, protocol.SharedClean, d.Caches()[1].Lines()[0].State)
	require.EqualValues(t, 1, d.Bus().TrafficWords())
	require.EqualValues(t, 1, d.Bus().InvalidationsOrUpdates())
}

// TestScenarioS5_DragonReadMissWithDirtySharer locks in spec.md §8's S5:
// core 0 holds a block Dirty; core 1's load emits BusRd, forces a Flush,
// and both end up Shared*.
func TestScenarioS5_DragonReadMissWithDirtySharer(t *testing.T) {
	cfg := cfg2Core(cmn.Dragon, 128, 2, 16)
	traces := [][]trace.Instruction{
		{{Kind: trace.Store, Value: 0x0}},
		{{Kind: trace.Load, Value: 0x0}},
	}
	d := NewDriver(cfg, protocol.DragonRules{}, traces)
	RunSerial(d)

	require.Equal(t, protocol.SharedModified, d.Caches()[0].Lines()[0].State)
	require.Equal(t, protocol.SharedClean, d.Caches()[1].Lines()[0].State)
	require.EqualValues(t, 3, d.Bus().TrafficBlocks(), "one block for core 0's write-miss BusRd, one for core 1's BusRd, one for the forced Flush")
	require.EqualValues(t, 0, d.Bus().InvalidationsOrUpdates())
}

// TestScenarioS6_ComputePassthrough locks in spec.md §8's S6: a Compute
// instruction adds exactly its value to compute cycles, nothing to idle
// cycles, and touches no bus state.
func TestScenarioS6_ComputePassthrough(t *testing.T) {
	cfg := cfg2Core(cmn.MESI, 128, 2, 16)
	traces := [][]trace.Instruction{
		{{Kind: trace.Compute, Value: 10}},
	}
	d := NewDriver(cfg, protocol.MESIRules{}, traces)
	RunSerial(d)

	stats := d.Profiler().Cores[0]
	require.EqualValues(t, 10, stats.ComputeCycles)
	require.EqualValues(t, 10, stats.Cycles, "compute cycles still count toward the total")
	require.EqualValues(t, 0, stats.IdleCycles)
	require.EqualValues(t, 0, d.Bus().TrafficBlocks())
	require.EqualValues(t, 0, d.Bus().TrafficWords())
}

// TestCoreStats_CyclesIsIdlePlusCompute locks in the invariant
// original_source/src/profiler.cpp's Profiler::update produces: a core's
// total Cycles always equals IdleCycles (memory-system cost) plus
// ComputeCycles, for a mixed Load/Store/Compute trace.
func TestCoreStats_CyclesIsIdlePlusCompute(t *testing.T) {
	cfg := cfg2Core(cmn.MESI, 128, 2, 16)
	traces := [][]trace.Instruction{
		{
			{Kind: trace.Load, Value: 0x0},
			{Kind: trace.Compute, Value: 7},
			{Kind: trace.Store, Value: 0x0},
			{Kind: trace.Compute, Value: 3},
		},
	}
	d := NewDriver(cfg, protocol.MESIRules{}, traces)
	RunSerial(d)

	stats := d.Profiler().Cores[0]
	require.EqualValues(t, 10, stats.ComputeCycles)
	require.Equal(t, stats.IdleCycles+stats.ComputeCycles, stats.Cycles)
}

// TestRunParallel_MatchesRunSerial drives disjoint addresses per core (no
// cross-core contention) so the aggregate counters are independent of
// goroutine interleaving and RunParallel's result is deterministic.
func TestRunParallel_MatchesRunSerial(t *testing.T) {
	build := func() *Driver[protocol.MESIState] {
		cfg := cfg2Core(cmn.MESI, 128, 2, 16)
		traces := [][]trace.Instruction{
			{{Kind: trace.Load, Value: 0x0}, {Kind: trace.Store, Value: 0x0}},
			{{Kind: trace.Load, Value: 0x100}, {Kind: trace.Load, Value: 0x110}},
		}
		return NewDriver(cfg, protocol.MESIRules{}, traces)
	}

	serial := build()
	RunSerial(serial)

	parallel := build()
	require.NoError(t, RunParallel(parallel))

	require.Equal(t, serial.Bus().TrafficBlocks(), parallel.Bus().TrafficBlocks())
	require.Equal(t, serial.Profiler().Cores[0].Hits, parallel.Profiler().Cores[0].Hits)
	require.Equal(t, serial.Profiler().Cores[1].Hits, parallel.Profiler().Cores[1].Hits)
}
