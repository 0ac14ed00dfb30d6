package protocol

import "github.com/coherence-sim/cachesim/cmn"

// DragonState is one of the four Dragon states, plus the out-of-band
// NotPresent sentinel (spec §3).
type DragonState uint8

const (
	ExclusiveClean DragonState = iota
	SharedClean
	SharedModified
	Dirty
	DragonNotPresent
)

func (s DragonState) String() string {
	switch s {
	case ExclusiveClean:
		return "ExclusiveClean"
	case SharedClean:
		return "SharedClean"
	case SharedModified:
		return "SharedModified"
	case Dirty:
		return "Dirty"
	case DragonNotPresent:
		return "NotPresent"
	default:
		return "DragonState(?)"
	}
}

func (s DragonState) IsNotPresent() bool { return s == DragonNotPresent }

// DragonRules implements Rules[DragonState] (spec §4.3, §4.4).
type DragonRules struct{}

var _ Rules[DragonState] = DragonRules{}

func (DragonRules) Name() string                  { return "Dragon" }
func (DragonRules) NotPresent() DragonState        { return DragonNotPresent }
func (DragonRules) Hit(prev DragonState) bool      { return prev != DragonNotPresent }
func (DragonRules) Private(s DragonState) bool     { return s == ExclusiveClean || s == Dirty }
func (DragonRules) Shared(s DragonState) bool      { return s == SharedClean || s == SharedModified }
func (DragonRules) IsDirty(s DragonState) bool     { return s == Dirty || s == SharedModified }
func (DragonRules) Holds(DragonState) bool         { return true }

// ReadHit: no processor-read transitions on a present Dragon line (spec
// §4.3) — there is never a bus transaction to emit on a read hit.
func (DragonRules) ReadHit(DragonState) (Txn, bool) { return 0, false }

func (DragonRules) ReadHitNext(cur DragonState, _ Response) DragonState { return cur }

func (DragonRules) WriteHit(cur DragonState) (Txn, bool) {
	switch cur {
	case ExclusiveClean, Dirty:
		return 0, false
	default: // SharedClean, SharedModified
		return BusUpd, true
	}
}

func (DragonRules) WriteHitNext(cur DragonState, resp Response) DragonState {
	switch cur {
	case ExclusiveClean:
		return Dirty
	case Dirty:
		return Dirty
	default: // SharedClean, SharedModified: emitted BusUpd
		if resp == SharedCopy || resp == DirtyCopy {
			return SharedModified
		}
		return Dirty
	}
}

// WriteHitExtraCycles: a write hit in SharedClean/SharedModified emits
// BusUpd and costs one extra SEND_WORD beyond CACHE_HIT for the update's
// word transmit (spec §6.3); ExclusiveClean/Dirty write hits are free of
// bus activity and cost nothing extra.
func (DragonRules) WriteHitExtraCycles(cur DragonState) int {
	switch cur {
	case SharedClean, SharedModified:
		return cmn.SendWord
	default:
		return 0
	}
}

func (DragonRules) AllocateReadTxn() Txn { return BusRd }

func (DragonRules) AllocateReadNext(resp Response) DragonState {
	if resp == SharedCopy || resp == DirtyCopy {
		return SharedClean
	}
	return ExclusiveClean
}

func (DragonRules) AllocateWriteTxn() Txn { return BusRd }

// AllocateWriteNext implements the two-step Dragon write-miss sequence
// (spec §9(b)): BusRd first; if any cache held a copy, a BusUpd follows
// and the line ends in SharedModified, otherwise it ends in Dirty with no
// further bus activity.
func (DragonRules) AllocateWriteNext(resp Response) (DragonState, *Txn) {
	if resp == SharedCopy || resp == DirtyCopy {
		upd := BusUpd
		return SharedModified, &upd
	}
	return Dirty, nil
}

func (DragonRules) Snoop(cur DragonState, txn Txn) (next DragonState, resp Response, emitFlush bool) {
	switch {
	case cur == ExclusiveClean && txn == BusRd:
		return SharedClean, SharedCopy, false
	case cur == Dirty && txn == BusRd:
		return SharedModified, DirtyCopy, true
	case cur == SharedClean && txn == BusRd:
		return SharedClean, SharedCopy, false
	case cur == SharedModified && txn == BusRd:
		return SharedModified, DirtyCopy, true
	case cur == SharedClean && txn == BusUpd:
		return SharedClean, SharedCopy, false
	case cur == SharedModified && txn == BusUpd:
		return SharedClean, DirtyCopy, false
	default:
		return cur, NoCopy, false
	}
}
