package coherence

import (
	"github.com/coherence-sim/cachesim/cmn"
	"github.com/coherence-sim/cachesim/protocol"
)

// CheckInvariants structurally checks spec properties 1 (tag uniqueness),
// 2 (capacity), 3 (MESI coherence), and 4 (Dragon coherence) against a
// snapshot of every core's sets, generalized over the protocol via
// Rules.Private/Shared/IsDirty/Holds rather than branching on S:
//
//   - within one cache's set, no two lines share a tag, and no set holds
//     more than `associativity` lines;
//   - for a given tag, across every cache's corresponding set, if any
//     holder (Holds(state) == true) is in a Private state, it must be the
//     only holder — this is exactly "at most one cache holds M/E" for
//     MESI and "at most one cache holds Ec/Dirty" for Dragon, since
//     Private classifies precisely those states in each protocol;
//   - if any holder is in a dirty-but-shared state (IsDirty && Shared —
//     Dragon's SharedModified; vacuous for MESI, which has no such state),
//     every holder must be in a Shared state.
//
// Properties 5-7 (counter monotonicity, LRU-position-preserved-by-snoop,
// allocate-is-a-no-op-on-a-present-tag) are not observable from a single
// snapshot and are not checked here; of those, the package's tests assert
// only property 6 (TestLRUSet_SnoopDoesNotReorderLRU).
//
// perCoreSets holds one []*LRUSet[S] per cache/core, each indexed the same
// way (sets[i] is the same address-index set for every core).
func CheckInvariants[S protocol.State](rules protocol.Rules[S], associativity int, perCoreSets [][]*LRUSet[S]) error {
	if len(perCoreSets) == 0 {
		return nil
	}
	numSets := len(perCoreSets[0])

	for setIdx := 0; setIdx < numSets; setIdx++ {
		byTag := make(map[uint32][]S)

		for core, sets := range perCoreSets {
			lines := sets[setIdx].Lines()
			if len(lines) > associativity {
				return &cmn.InvariantError{
					Core: core, Protocol: rules.Name(),
					Reason: "set holds more lines than its associativity",
				}
			}
			seen := make(map[uint32]bool, len(lines))
			for _, l := range lines {
				if seen[l.Tag] {
					return &cmn.InvariantError{
						Core: core, Addr: l.Tag, Protocol: rules.Name(),
						State1: l.State, Reason: "duplicate tag within one set",
					}
				}
				seen[l.Tag] = true
				if rules.Holds(l.State) {
					byTag[l.Tag] = append(byTag[l.Tag], l.State)
				}
			}
		}

		if err := checkCrossCache(rules, byTag); err != nil {
			return err
		}
	}
	return nil
}

func checkCrossCache[S protocol.State](rules protocol.Rules[S], byTag map[uint32][]S) error {
	for tag, states := range byTag {
		var privateCount int
		var dirtySharedExists bool
		for _, s := range states {
			if rules.Private(s) {
				privateCount++
			}
			if rules.IsDirty(s) && rules.Shared(s) {
				dirtySharedExists = true
			}
		}
		if privateCount > 0 && len(states) > 1 {
			return &cmn.InvariantError{
				Addr: tag, Protocol: rules.Name(), State1: states[0],
				Reason: "a private-state holder coexists with another active holder",
			}
		}
		if dirtySharedExists {
			for _, s := range states {
				if !rules.Shared(s) {
					return &cmn.InvariantError{
						Addr: tag, Protocol: rules.Name(), State1: s,
						Reason: "dirty-shared holder coexists with a non-shared holder",
					}
				}
			}
		}
	}
	return nil
}
