// Package findings implements the findings & replay component (C8): a
// monotonically sequenced record of every property_violation,
// discrepancy, crash, and timeout signal a campaign's traversals raise,
// each carrying a replay capsule that can reproduce it deterministically
// on a single thread (§4.8).
package findings

import (
	"github.com/google/uuid"

	"github.com/ajhcs/beacon/coordinator"
)

// Kind discriminates the finding taxonomy (§4.8, §7 "non-fatal findings
// during a campaign"). guard_failure and coverage signals never become
// findings — they feed the coordinator's weight table directly instead.
type Kind string

const (
	KindViolation   Kind = "violation"
	KindDiscrepancy Kind = "discrepancy"
	KindCrash       Kind = "crash"
	KindTimeout     Kind = "timeout"
)

// kindFromSignal maps the subset of coordinator.SignalKind that
// constitute findings; ok is false for signals the store does not record.
func kindFromSignal(k coordinator.SignalKind) (Kind, bool) {
	switch k {
	case coordinator.SignalPropertyViolation:
		return KindViolation, true
	case coordinator.SignalDiscrepancy:
		return KindDiscrepancy, true
	case coordinator.SignalCrash:
		return KindCrash, true
	case coordinator.SignalTimeout:
		return KindTimeout, true
	default:
		return "", false
	}
}

// Finding is one recorded, replayable anomaly (§4.8 "Findings are
// assigned a monotonic sequence number at creation").
type Finding struct {
	ID       string
	Seq      uint64
	Kind     Kind
	Epoch    uint64
	Property string // populated for violation/discrepancy findings
	Message  string

	// ObserverBinding names the observer binding this finding's
	// discrepancy check depends on, empty for non-discrepancy kinds.
	// Used by MarkStaleForObserverSwap (§D.1 open-question decision).
	ObserverBinding string
	Stale           bool

	Capsule ReplayCapsule
}

func newFinding(epoch uint64, s coordinator.Signal) (Finding, bool) {
	kind, ok := kindFromSignal(s.Kind)
	if !ok {
		return Finding{}, false
	}
	f := Finding{
		ID:      uuid.NewString(),
		Kind:    kind,
		Epoch:   epoch,
		Capsule: ReplayCapsule{Steps: append([]coordinator.ReplayStep(nil), s.Trail...)},
	}
	if s.Violation != nil {
		f.Property = s.Violation.Property
		f.Message = s.Violation.Message
	} else {
		f.Message = s.Message
	}
	return f, true
}
