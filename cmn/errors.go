package cmn

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError reports a bad CLI argument or an infeasible cache geometry,
// discovered before simulation starts (spec §7.1).
type ConfigError struct {
	cause error
}

func NewConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{cause: errors.Errorf(format, args...)}
}

func WrapConfigError(cause error, format string, args ...interface{}) *ConfigError {
	return &ConfigError{cause: errors.Wrapf(cause, format, args...)}
}

func (e *ConfigError) Error() string { return "config: " + e.cause.Error() }
func (e *ConfigError) Unwrap() error { return e.cause }

// TraceError reports a fatal problem ingesting a core's trace file — only
// a missing trace at core index 0 is fatal (spec §7.2); callers at index
// >= 1 should treat a missing file as end-of-discovery, not a TraceError.
type TraceError struct {
	CoreIdx int
	cause   error
}

func NewTraceError(coreIdx int, cause error) *TraceError {
	return &TraceError{CoreIdx: coreIdx, cause: errors.WithStack(cause)}
}

func (e *TraceError) Error() string {
	return fmt.Sprintf("trace: core %d: %v", e.CoreIdx, e.cause)
}
func (e *TraceError) Unwrap() error { return e.cause }

// InvariantError reports a bug in the coherence engine itself (spec §7.4).
// coherence.CheckInvariants returns it for a duplicate tag within a set, a
// set over its associativity, or a cross-cache coherence violation. Snoops
// do not produce it: a (state, transaction) pair outside a protocol's snoop
// table leaves the line unchanged and answers NoCopy. It carries structured
// fields so callers (and tests) can inspect them without parsing a message
// string.
type InvariantError struct {
	Core     int
	Addr     uint32
	Protocol string
	State1   fmt.Stringer
	State2   fmt.Stringer
	Reason   string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: core=%d addr=%#x protocol=%s state1=%s state2=%s: %s",
		e.Core, e.Addr, e.Protocol, e.State1, e.State2, e.Reason)
}
