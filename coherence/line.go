// Package coherence implements the set-associative LRU structure whose
// lines carry coherence-protocol state: the hard engineering named in
// spec §1 as "the core." LRUSet applies protocol.Rules on processor and
// snoop events; it never talks to a bus except through the protocol.Bus
// handle each processor-side method is given. Grounded on the teacher's
// cluster/lom.go — a mutex-guarded, atomic-flagged metadata entry mutated
// by local ops, remote (snoop-equivalent) signals, and eviction — adapted
// from one metadata record per object to one tag+state record per line.
package coherence

import "github.com/coherence-sim/cachesim/protocol"

// Line is a single cache line: a tag and its coherence state. There is no
// data payload (spec §3 Non-goals).
type Line[S protocol.State] struct {
	Tag   uint32
	State S
}

type entry[S protocol.State] struct {
	tag   uint32
	state S
}
