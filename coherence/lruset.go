package coherence

import (
	"container/list"
	"sync"

	"github.com/coherence-sim/cachesim/cmn/debug"
	"github.com/coherence-sim/cachesim/protocol"
)

// LRUSet is one set of a set-associative cache: a bounded ordered
// collection of at most `associativity` lines, MRU at the front of the
// list, LRU at the back (spec §3). It owns a mutex that is held across an
// entire processor-side operation (Read/Write/Allocate) except while a bus
// transaction is in flight — see the comment on Read for why.
// Snoop-side mutation (protocol.Rules.Snoop) never reorders the list.
type LRUSet[S protocol.State] struct {
	mu    sync.Mutex
	rules protocol.Rules[S]

	maxSize int
	order   *list.List               // MRU at Front, LRU at Back; Value is *entry[S]
	index   map[uint32]*list.Element // tag -> element in order
}

// NewLRUSet builds an empty set of the given associativity.
func NewLRUSet[S protocol.State](associativity int, rules protocol.Rules[S]) *LRUSet[S] {
	return &LRUSet[S]{
		rules:   rules,
		maxSize: associativity,
		order:   list.New(),
		index:   make(map[uint32]*list.Element, associativity),
	}
}

func (s *LRUSet[S]) touch(el *list.Element) {
	s.order.MoveToFront(el)
}

// lookup returns the element for tag, or nil. Caller must hold s.mu.
func (s *LRUSet[S]) lookup(tag uint32) *list.Element {
	return s.index[tag]
}

// Read implements the processor-side read hit path (spec §4.3). If tag is
// absent it returns (NotPresent, NoCopy, NotPresent) and the caller must
// follow up with Allocate.
//
// The set's mutex is released for the duration of the nested bus.Broadcast
// call and reacquired immediately after, per spec §5: this is what lets
// another core's processor op proceed concurrently without this cache
// ever needing to lock its own set from inside a snoop the bus sends it
// (the bus excludes the sender from its own broadcast, so that can't
// happen anyway) while also avoiding the lock-order cycle where cache A
// holds its own set lock and wants the bus lock at the same moment cache
// B holds the bus lock and wants cache A's set lock to snoop it.
func (s *LRUSet[S]) Read(tag uint32, bus protocol.Bus, addr uint32, coreIdx int) (prev S, resp protocol.Response, next S) {
	s.mu.Lock()
	el := s.lookup(tag)
	if el == nil {
		s.mu.Unlock()
		return s.rules.NotPresent(), protocol.NoCopy, s.rules.NotPresent()
	}
	e := el.Value.(*entry[S])
	prev = e.state
	txn, emit := s.rules.ReadHit(prev)
	if emit {
		s.mu.Unlock()
		resp = bus.Broadcast(txn, addr, coreIdx, prev)
		s.mu.Lock()
	}
	next = s.rules.ReadHitNext(prev, resp)
	e.state = next
	s.touch(el)
	s.mu.Unlock()
	return prev, resp, next
}

// Write implements the processor-side write hit path (spec §4.3). See
// Read for the locking discipline around the nested bus call.
func (s *LRUSet[S]) Write(tag uint32, bus protocol.Bus, addr uint32, coreIdx int) (prev S, resp protocol.Response, next S) {
	s.mu.Lock()
	el := s.lookup(tag)
	if el == nil {
		s.mu.Unlock()
		return s.rules.NotPresent(), protocol.NoCopy, s.rules.NotPresent()
	}
	e := el.Value.(*entry[S])
	prev = e.state
	txn, emit := s.rules.WriteHit(prev)
	if emit {
		s.mu.Unlock()
		resp = bus.Broadcast(txn, addr, coreIdx, prev)
		s.mu.Lock()
	}
	next = s.rules.WriteHitNext(prev, resp)
	e.state = next
	s.touch(el)
	s.mu.Unlock()
	return prev, resp, next
}

// Allocate implements the miss path (spec §4.3), invoked after Read or
// Write returned NotPresent. It evicts the LRU line first if the set is
// full — flushing it via the bus if it was dirty — then issues the miss
// request and inserts the new line at MRU.
func (s *LRUSet[S]) Allocate(tag uint32, isWrite bool, bus protocol.Bus, addr uint32, coreIdx int) (resp protocol.Response, next S, evictedDirty bool) {
	s.mu.Lock()
	debug.Assert(s.lookup(tag) == nil, "allocate called on a tag already present: ", tag)

	if s.order.Len() >= s.maxSize {
		back := s.order.Back()
		victim := back.Value.(*entry[S])
		s.order.Remove(back)
		delete(s.index, victim.tag)
		if s.rules.IsDirty(victim.state) {
			evictedDirty = true
			s.mu.Unlock()
			bus.Broadcast(protocol.Flush, addr, coreIdx, victim.state)
			s.mu.Lock()
		}
	}

	var txn protocol.Txn
	if isWrite {
		txn = s.rules.AllocateWriteTxn()
	} else {
		txn = s.rules.AllocateReadTxn()
	}
	s.mu.Unlock()
	resp = bus.Broadcast(txn, addr, coreIdx, s.rules.NotPresent())
	s.mu.Lock()

	var extra *protocol.Txn
	if isWrite {
		next, extra = s.rules.AllocateWriteNext(resp)
	} else {
		next = s.rules.AllocateReadNext(resp)
	}
	if extra != nil {
		s.mu.Unlock()
		bus.Broadcast(*extra, addr, coreIdx, next)
		s.mu.Lock()
	}

	el := s.order.PushFront(&entry[S]{tag: tag, state: next})
	s.index[tag] = el
	s.mu.Unlock()
	return resp, next, evictedDirty
}

// Snoop implements the snoop-side reaction to a bus transaction from
// another cache (spec §4.4). It never reorders the LRU list. If the
// reacting cache must itself supply a write-back, it reports emitFlush;
// the bus — which already holds the lock that serializes this call —
// accounts for that flush directly rather than this method re-entering
// Broadcast (see bus.Bus.broadcastLocked).
func (s *LRUSet[S]) Snoop(tag uint32, txn protocol.Txn) (resp protocol.Response, emitFlush bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el := s.lookup(tag)
	if el == nil {
		return protocol.NoCopy, false
	}
	e := el.Value.(*entry[S])
	next, resp, emitFlush := s.rules.Snoop(e.state, txn)
	e.state = next
	return resp, emitFlush
}

// Len reports the number of lines currently occupying the set (including
// Invalid entries, which still hold a slot per spec §3).
func (s *LRUSet[S]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Lines returns a snapshot of (tag, state) pairs, MRU first. Used by
// invariant checks and tests; not on any hot path.
func (s *LRUSet[S]) Lines() []Line[S] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line[S], 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry[S])
		out = append(out, Line[S]{Tag: e.tag, State: e.state})
	}
	return out
}
