// Package cachecore implements the per-core cache (spec §2, component 2):
// address decomposition, dispatch to the owning coherence.LRUSet, and the
// cycle-cost accounting of spec §6.3. Grounded on cluster/lom.go's
// init-then-dispatch shape (decompose an identifier, locate the owning
// structure, apply an operation) and xs/tcobjs.go's per-request dispatch
// into a worker keyed by an index.
package cachecore

import (
	"github.com/coherence-sim/cachesim/bus"
	"github.com/coherence-sim/cachesim/cmn"
	"github.com/coherence-sim/cachesim/cmn/debug"
	"github.com/coherence-sim/cachesim/coherence"
	"github.com/coherence-sim/cachesim/protocol"
)

// Cache is one core's private cache: a fixed number of coherence.LRUSet[S],
// one per index derived from an address's index bits (spec §3). Cache is
// generic over the same state type S as the protocol.Rules[S] it was
// built with, so a Cache[MESIState] can never be driven by Dragon rules
// or vice versa.
type Cache[S protocol.State] struct {
	idx   int
	cfg   *cmn.Config
	rules protocol.Rules[S]
	bus   protocol.Bus

	offsetBits int
	indexBits  int
	indexMask  uint32

	sets []*coherence.LRUSet[S]
}

// New builds a Cache for core idx, wired to b, and connects it as a snoop
// target. cfg must already be Validate()-d.
func New[S protocol.State](idx int, cfg *cmn.Config, rules protocol.Rules[S], b *bus.Bus) *Cache[S] {
	numSets := cfg.NumSets()
	sets := make([]*coherence.LRUSet[S], numSets)
	for i := range sets {
		sets[i] = coherence.NewLRUSet(cfg.Associativity, rules)
	}
	indexBits := cfg.IndexBits()
	c := &Cache[S]{
		idx:        idx,
		cfg:        cfg,
		rules:      rules,
		bus:        b,
		offsetBits: cfg.OffsetBits(),
		indexBits:  indexBits,
		indexMask:  uint32(numSets - 1),
		sets:       sets,
	}
	b.Connect(c)
	return c
}

// decompose splits addr into its set index and tag per spec §3:
// set_index = (addr >> offset_bits) & (num_sets - 1),
// tag = addr >> (offset_bits + index_bits).
func (c *Cache[S]) decompose(addr uint32) (setIndex uint32, tag uint32) {
	setIndex = (addr >> uint(c.offsetBits)) & c.indexMask
	tag = addr >> uint(c.offsetBits+c.indexBits)
	return setIndex, tag
}

// Load implements the processor-side read (spec §4.5): decompose the
// address, read the owning set, allocate on a miss, and price the access
// per the cycle-cost table (spec §6.3). hit reports per spec's invariant
// 9 ("reported hit iff cycles = CACHE_HIT"), which is why it is derived
// from the final cost rather than from the pre-transition state directly.
func (c *Cache[S]) Load(addr uint32) (cycles int, hit bool, prev, next S) {
	setIdx, tag := c.decompose(addr)
	debug.Assert(int(setIdx) < len(c.sets), "set index out of range: ", setIdx)
	set := c.sets[setIdx]

	prev, resp, next := set.Read(tag, c.bus, addr, c.idx)
	var evictedDirty bool
	if prev.IsNotPresent() {
		resp, next, evictedDirty = set.Allocate(tag, false, c.bus, addr, c.idx)
	}
	cycles = c.cost(prev, resp, evictedDirty, false)
	return cycles, cycles == cmn.CacheHit, prev, next
}

// Store implements the processor-side write (spec §4.5); see Load for the
// shared hit/miss/allocate/cost structure.
func (c *Cache[S]) Store(addr uint32) (cycles int, hit bool, prev, next S) {
	setIdx, tag := c.decompose(addr)
	debug.Assert(int(setIdx) < len(c.sets), "set index out of range: ", setIdx)
	set := c.sets[setIdx]

	prev, resp, next := set.Write(tag, c.bus, addr, c.idx)
	var evictedDirty bool
	if prev.IsNotPresent() {
		resp, next, evictedDirty = set.Allocate(tag, true, c.bus, addr, c.idx)
	}
	cycles = c.cost(prev, resp, evictedDirty, true)
	return cycles, cycles == cmn.CacheHit, prev, next
}

// cost prices one access per spec §6.3. prev is the pre-transition state
// Read/Write observed: if it classifies as a hit (present, and for MESI
// not Invalid), the access is a flat CACHE_HIT plus — for a write only —
// whatever extra a protocol's write-hit bus activity costs (zero for
// MESI, SEND_WORD for a Dragon BusUpd; a Dragon read hit never emits a
// transaction, so it is never priced above the flat CACHE_HIT). A miss is
// priced against resp, the aggregated snoop response from whichever bus
// transaction was issued — either the in-place BusRd/BusRdX for a
// present-but-Invalid MESI line, or the Allocate miss request for a
// genuinely absent tag — plus an eviction flush surcharge if Allocate
// evicted a dirty victim.
func (c *Cache[S]) cost(prev S, resp protocol.Response, evictedDirty, isWrite bool) int {
	var total int
	if c.rules.Hit(prev) {
		total = cmn.CacheHit
		if isWrite {
			total += c.rules.WriteHitExtraCycles(prev)
		}
	} else {
		switch resp {
		case protocol.NoCopy:
			total = cmn.MemFetch + cmn.CacheHit
		case protocol.SharedCopy:
			total = cmn.SendWord*(c.cfg.BlockSize/cmn.WordSize) + cmn.CacheHit
		case protocol.DirtyCopy:
			total = cmn.SendWord*(c.cfg.BlockSize/cmn.WordSize) + cmn.CacheHit + cmn.MemFlush
		}
	}
	if evictedDirty {
		total += cmn.MemFlush
	}
	return total
}

// Snoop implements bus.Snooper: it is invoked by the bus for every
// transaction broadcast by another core (spec §4.4).
func (c *Cache[S]) Snoop(txn protocol.Txn, addr uint32) (resp protocol.Response, emitFlush bool) {
	setIdx, tag := c.decompose(addr)
	return c.sets[setIdx].Snoop(tag, txn)
}

// Lines returns a snapshot of every set's lines, used by invariant checks
// and tests; not on any hot path.
func (c *Cache[S]) Lines() []coherence.Line[S] {
	out := make([]coherence.Line[S], 0)
	for _, s := range c.sets {
		out = append(out, s.Lines()...)
	}
	return out
}

// Rules exposes the Rules[S] this cache was built with, so generic
// callers (invariant checks, reports) can classify states without
// threading a separate reference through.
func (c *Cache[S]) Rules() protocol.Rules[S] { return c.rules }

// Index is this cache's core index (sender_idx on the bus).
func (c *Cache[S]) Index() int { return c.idx }

// Sets exposes the underlying per-index LRUSets, for coherence.CheckInvariants
// and other structural tests; not on any hot path.
func (c *Cache[S]) Sets() []*coherence.LRUSet[S] { return c.sets }
