package model

import (
	"fmt"

	"github.com/ajhcs/beacon/spec"
)

// Kernel bundles the pieces of C3 into the single call an action step
// needs: apply the effect, check invariants, check temporal rules,
// append the trace entry, snapshot. It is the orchestration surface C4
// (the verification adapter) and C6 (traversal) drive; none of the
// model sub-pieces (State, Evaluator, TemporalChecker) know about each
// other directly.
type Kernel struct {
	State     *State
	Snapshots *SnapshotStore
	Trace     *Trace
	IR        *spec.CompiledIR
	Observers map[string]ObserverFunc
	temporal  *TemporalChecker
	step      uint64
}

// NewKernel constructs a Kernel over a fresh State for the given
// compiled spec. snapshotCapacity bounds the snapshot store (<=0 means
// unbounded); obs supplies the guest-backed observer functions referenced
// by ir's observer-kind functions.
func NewKernel(ir *spec.CompiledIR, obs map[string]ObserverFunc, snapshotCapacity int) *Kernel {
	return &Kernel{
		State:     NewState(),
		Snapshots: NewSnapshotStore(snapshotCapacity),
		Trace:     NewTrace(),
		IR:        ir,
		Observers: obs,
		temporal:  NewTemporalChecker(ir.Properties),
	}
}

func (k *Kernel) evaluator(s *State) *Evaluator {
	return NewEvaluator(s, k.IR, k.Observers)
}

// StepResult is the outcome of one ApplyAction call: the instance
// created by the action's effect (if any), every violation found, and
// the trace entry appended.
type StepResult struct {
	CreatedID  InstanceID
	Violations []Violation
	Entry      TraceEntry
}

// ApplyAction runs one action's effect against the kernel's state,
// checks invariants and temporal rules, and appends a trace entry
// (§4.3, §4.6 "At a Terminal ... apply the effect, check invariants,
// ... append a trace entry").
//
// If aborted is true (the adapter reported a guest crash or timeout),
// the effect is not applied; the entry is still appended so before/after
// windows over the trace stay contiguous, tagged Aborted so temporal and
// invariant checking both skip it.
func (k *Kernel) ApplyAction(action string, actorID InstanceID, input []Value, response Value, trapped, outOfFuel, aborted bool, epoch int) (StepResult, error) {
	preState := k.State.Fork()
	preEval := k.evaluator(preState)

	var createdID InstanceID
	if !aborted {
		eff, ok := k.IR.Effects[action]
		if !ok {
			return StepResult{}, fmt.Errorf("model: action %q has no compiled effect", action)
		}
		id, err := ApplyEffect(k.evaluator(k.State), eff, actorID)
		if err != nil {
			return StepResult{}, fmt.Errorf("model: applying effect for %q: %w", action, err)
		}
		createdID = id
	}

	postEval := k.evaluator(k.State)

	k.step++
	step := k.step

	var violations []Violation
	if !aborted {
		invViolations, err := CheckInvariants(postEval, k.IR.Properties, step)
		if err != nil {
			return StepResult{}, err
		}
		violations = append(violations, invViolations...)
	}

	snapID := k.Snapshots.Snapshot(k.State)
	entry := TraceEntry{
		Action:     action,
		Actor:      actorID,
		Input:      input,
		Response:   response,
		Trapped:    trapped,
		OutOfFuel:  outOfFuel,
		Aborted:    aborted,
		SnapshotID: snapID,
		Epoch:      epoch,
		Step:       step,
		Tags:       k.IR.Bindings[action].Tags,
	}
	k.Trace.Append(entry)

	temporalViolations, err := k.temporal.CheckAppend(preEval, postEval, entry)
	if err != nil {
		return StepResult{}, err
	}
	violations = append(violations, temporalViolations...)

	return StepResult{CreatedID: createdID, Violations: violations, Entry: entry}, nil
}

// Rollback restores the kernel's state to the given snapshot, e.g. to
// resume a replay capsule from its capture point.
func (k *Kernel) Rollback(id SnapshotID) error {
	return k.Snapshots.Rollback(k.State, id)
}
