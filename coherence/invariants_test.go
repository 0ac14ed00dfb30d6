package coherence_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coherence-sim/cachesim/bus"
	"github.com/coherence-sim/cachesim/cachecore"
	"github.com/coherence-sim/cachesim/cmn"
	"github.com/coherence-sim/cachesim/coherence"
	"github.com/coherence-sim/cachesim/protocol"
)

// setsOf collects every cache's []*LRUSet[S] in core order, the shape
// coherence.CheckInvariants expects.
func setsOf[S protocol.State](caches []*cachecore.Cache[S]) [][]*coherence.LRUSet[S] {
	out := make([][]*coherence.LRUSet[S], len(caches))
	for i, c := range caches {
		out[i] = c.Sets()
	}
	return out
}

func fuzzProtocol[S protocol.State](t *testing.T, protoName cmn.Protocol, rules protocol.Rules[S]) {
	const (
		numCores      = 4
		associativity = 2
		blockSize     = 16
		numSets       = 4
		addressSpan   = numSets * 3 // a handful of tags mapping onto each set, to force contention
	)
	cfg := cmn.NewConfig(protoName, "", numSets*blockSize*associativity, associativity, blockSize)
	require.NoError(t, cfg.Validate())

	b := bus.New(blockSize)
	caches := make([]*cachecore.Cache[S], numCores)
	for i := range caches {
		caches[i] = cachecore.New(i, cfg, rules, b)
	}

	rng := rand.New(rand.NewSource(42))
	for step := 0; step < 5000; step++ {
		core := rng.Intn(numCores)
		addr := uint32(rng.Intn(addressSpan)) * blockSize
		if rng.Intn(2) == 0 {
			caches[core].Load(addr)
		} else {
			caches[core].Store(addr)
		}
		require.NoError(t, coherence.CheckInvariants(rules, associativity, setsOf(caches)),
			"invariant violated after step %d", step)
	}
}

func TestCheckInvariants_MESIFuzz(t *testing.T) {
	fuzzProtocol[protocol.MESIState](t, cmn.MESI, protocol.MESIRules{})
}

func TestCheckInvariants_DragonFuzz(t *testing.T) {
	fuzzProtocol[protocol.DragonState](t, cmn.Dragon, protocol.DragonRules{})
}
