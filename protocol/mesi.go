package protocol

// MESIState is one of the four MESI states, plus the out-of-band
// NotPresent sentinel (spec §3).
type MESIState uint8

const (
	Modified MESIState = iota
	Exclusive
	Shared
	Invalid
	MESINotPresent
)

func (s MESIState) String() string {
	switch s {
	case Modified:
		return "Modified"
	case Exclusive:
		return "Exclusive"
	case Shared:
		return "Shared"
	case Invalid:
		return "Invalid"
	case MESINotPresent:
		return "NotPresent"
	default:
		return "MESIState(?)"
	}
}

func (s MESIState) IsNotPresent() bool { return s == MESINotPresent }

// MESIRules implements Rules[MESIState] (spec §4.3, §4.4).
type MESIRules struct{}

var _ Rules[MESIState] = MESIRules{}

func (MESIRules) Name() string             { return "MESI" }
func (MESIRules) NotPresent() MESIState    { return MESINotPresent }
func (MESIRules) Hit(prev MESIState) bool  { return prev != Invalid && prev != MESINotPresent }
func (MESIRules) Private(s MESIState) bool { return s == Modified || s == Exclusive }
func (MESIRules) Shared(s MESIState) bool  { return s == Shared }
func (MESIRules) IsDirty(s MESIState) bool { return s == Modified }
func (MESIRules) Holds(s MESIState) bool   { return s != Invalid }

func (MESIRules) ReadHit(cur MESIState) (Txn, bool) {
	if cur == Invalid {
		return BusRd, true
	}
	return 0, false
}

func (MESIRules) ReadHitNext(cur MESIState, resp Response) MESIState {
	if cur != Invalid {
		return cur
	}
	if resp == SharedCopy || resp == DirtyCopy {
		return Shared
	}
	return Exclusive
}

func (MESIRules) WriteHit(cur MESIState) (Txn, bool) {
	if cur == Modified || cur == Exclusive {
		return 0, false
	}
	return BusRdX, true
}

func (MESIRules) WriteHitNext(MESIState, Response) MESIState { return Modified }

// WriteHitExtraCycles is always zero: a MESI write hit costs the flat
// CACHE_HIT regardless of whether it emitted BusRdX (spec's worked
// scenario S2 counts the Shared-to-Modified store as CACHE_HIT only).
func (MESIRules) WriteHitExtraCycles(MESIState) int { return 0 }

func (MESIRules) AllocateReadTxn() Txn { return BusRd }

func (MESIRules) AllocateReadNext(resp Response) MESIState {
	if resp == SharedCopy || resp == DirtyCopy {
		return Shared
	}
	return Exclusive
}

func (MESIRules) AllocateWriteTxn() Txn { return BusRdX }

func (MESIRules) AllocateWriteNext(Response) (MESIState, *Txn) { return Modified, nil }

func (MESIRules) Snoop(cur MESIState, txn Txn) (next MESIState, resp Response, emitFlush bool) {
	switch {
	case cur == Modified && txn == BusRd:
		return Shared, DirtyCopy, true
	case cur == Modified && txn == BusRdX:
		return Invalid, DirtyCopy, true
	case cur == Exclusive && txn == BusRd:
		return Shared, SharedCopy, false
	case cur == Exclusive && txn == BusRdX:
		return Invalid, SharedCopy, false
	case cur == Shared && txn == BusRd:
		return Shared, SharedCopy, false
	case cur == Shared && txn == BusRdX:
		return Invalid, SharedCopy, false
	default:
		// Invalid/NotPresent holder, or a transaction (Flush) this table
		// doesn't react to: no change, no copy held.
		return cur, NoCopy, false
	}
}
