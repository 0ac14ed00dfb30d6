// Package protocol holds the MESI and Dragon transition tables: the
// conceptual centerpiece of the simulator (spec §2, component 4). A
// protocol is expressed as a Rules[S] implementation — pure functions from
// (current state, event) to (next state, bus transaction, response
// classification) — and nothing in this package touches a bus, a set, or
// an address. coherence.LRUSet[S] drives the transitions; cachecore, sim
// and coherence.CheckInvariants call the classification methods directly.
package protocol

import "fmt"

// Bus is the subset of bus.Bus that coherence.LRUSet needs: broadcasting a
// transaction and learning the aggregated snoop response. It is declared
// here, rather than in package bus, so that coherence can depend on
// protocol alone and never on bus — the dependency the spec's ownership
// model (§3) describes runs cache -> bus, not the reverse.
type Bus interface {
	Broadcast(txn Txn, addr uint32, senderIdx int, senderState fmt.Stringer) Response
}

// Txn is a coherence transaction carried by the bus (spec §4.1).
type Txn int

const (
	BusRd Txn = iota
	BusRdX
	BusUpd
	Flush
)

func (t Txn) String() string {
	switch t {
	case BusRd:
		return "BusRd"
	case BusRdX:
		return "BusRdX"
	case BusUpd:
		return "BusUpd"
	case Flush:
		return "Flush"
	default:
		return "Txn(?)"
	}
}

// Response is the snoop-response classification a snooping cache returns
// to the bus (spec §4.1).
type Response int

const (
	NoCopy Response = iota
	SharedCopy
	DirtyCopy
)

func (r Response) String() string {
	switch r {
	case NoCopy:
		return "NoCopy"
	case SharedCopy:
		return "SharedCopy"
	case DirtyCopy:
		return "DirtyCopy"
	default:
		return "Response(?)"
	}
}

// Combine aggregates two snoop responses the way the bus folds responses
// across every snooped cache: DirtyCopy beats SharedCopy beats NoCopy.
func Combine(a, b Response) Response {
	if a == DirtyCopy || b == DirtyCopy {
		return DirtyCopy
	}
	if a == SharedCopy || b == SharedCopy {
		return SharedCopy
	}
	return NoCopy
}

// State is satisfied by MESIState and DragonState, and by nothing else.
// It exists solely as a type-parameter bound for Rules[S] and
// coherence.LRUSet[S]: a cache built for one protocol is instantiated at
// one concrete S, so it can never be handed the other protocol's states.
type State interface {
	comparable
	IsNotPresent() bool
	String() string
}

// Rules is the exhaustive transition table for one protocol, over one
// concrete state type S. Every method corresponds to a rule or table row
// in spec §4.3/§4.4; coherence.LRUSet calls these and nothing else to
// decide what a processor or snoop event does.
type Rules[S State] interface {
	// Name identifies the protocol for diagnostics and reports.
	Name() string
	// NotPresent is the sentinel "no entry with this tag" value for S.
	NotPresent() S

	// Hit classifies a processor access as a cache hit given the
	// pre-transition state of an existing line (spec §4.5).
	Hit(prev S) bool
	// Private and Shared classify the *resulting* state of an access for
	// the profiler's private/shared accounting (spec §4.6).
	Private(s S) bool
	Shared(s S) bool
	// IsDirty reports whether a line in state s must be flushed when
	// evicted or when it supplies data to a requester (spec §4.3/§4.4).
	IsDirty(s S) bool
	// Holds reports whether a present line in state s counts as actively
	// holding the block for cross-cache coherence purposes (spec §8,
	// properties 3/4): true for every Dragon state, false for MESI's
	// Invalid (which occupies a slot but holds nothing).
	Holds(s S) bool

	// ReadHit/WriteHit: tag is present. They report whether a bus
	// transaction must be emitted. When emit is true, the caller first
	// issues txn on the bus; in either case it then calls
	// ReadHitNext/WriteHitNext with the aggregated response (NoCopy when
	// no transaction was issued) to learn the final state.
	ReadHit(cur S) (txn Txn, emit bool)
	ReadHitNext(cur S, resp Response) S
	WriteHit(cur S) (txn Txn, emit bool)
	WriteHitNext(cur S, resp Response) S
	// WriteHitExtraCycles reports cycles a write hit costs beyond the flat
	// CACHE_HIT base (spec §6.3): zero for every MESI write hit and for a
	// Dragon write hit in ExclusiveClean/Dirty, SEND_WORD for a Dragon
	// write hit in SharedClean/SharedModified (the BusUpd's extra word
	// transmit). cur is the pre-transition state passed to WriteHit.
	WriteHitExtraCycles(cur S) int

	// Allocate: tag is absent (miss), after any eviction flush has
	// already happened. AllocateWriteNext's extra return value models
	// the Dragon write-miss's two-step BusRd-then-conditional-BusUpd
	// sequence (spec §9(b)); it is nil for MESI and for the no-sharer
	// Dragon case.
	AllocateReadTxn() Txn
	AllocateReadNext(resp Response) S
	AllocateWriteTxn() Txn
	AllocateWriteNext(resp Response) (next S, extra *Txn)

	// Snoop reacts, on a non-originating cache, to a transaction
	// broadcast by another cache (spec §4.4).
	Snoop(cur S, txn Txn) (next S, resp Response, emitFlush bool)
}
