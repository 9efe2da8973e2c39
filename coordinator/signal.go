// Package coordinator implements the coordinator & adaptation component
// (C7): the epoch-batched signal processor that folds traversal signals
// into weight-table and strategy directives, tracks coverage floor and
// provable unreachability, and persists cross-campaign memory.
package coordinator

import (
	"sync/atomic"

	"github.com/ajhcs/beacon/model"
)

// SignalKind enumerates the signal vocabulary traversals emit (§4.7).
type SignalKind string

const (
	SignalCoverageDelta     SignalKind = "coverage_delta"
	SignalPropertyViolation SignalKind = "property_violation"
	SignalDiscrepancy       SignalKind = "discrepancy"
	SignalCrash             SignalKind = "crash"
	SignalTimeout           SignalKind = "timeout"
	SignalGuardFailure      SignalKind = "guard_failure"
	SignalCoveragePlateau   SignalKind = "coverage_plateau"
)

// ReplayStep is one captured Terminal call: enough to deterministically
// re-issue the same action against a fresh model/adapter pair (§4.8
// "replay deterministically re-runs the prefix on a single thread").
// ActorID is captured rather than re-derived because the actor chosen
// at traversal time may have been an existing instance selected at
// random, not the next one model.State.Create would mint; input values
// are captured because they came from a solved vector, not from
// anything a replay could regenerate on its own.
type ReplayStep struct {
	Action  string
	ActorID model.InstanceID
	Input   []model.Value
}

// Signal is one event a traversal worker enqueues for the coordinator.
// Seq is assigned at enqueue time by Queue's atomic counter, never by the
// producing worker, so fold-into-directives ordering is well-defined
// regardless of which worker's goroutine actually runs first (§4.7:
// "carry a monotonic sequence number assigned at enqueue").
type Signal struct {
	Seq         uint64
	Kind        SignalKind
	EdgeID      string
	StateID     string
	Target      string       // coverage target name, for coverage_delta/coverage_plateau
	TerminalSeq []string     // terminal trace leading to a violation/discrepancy/crash, for force replay
	Trail       []ReplayStep // same trace, captured as replayable steps, for findings.ReplayCapsule
	Violation   *model.Violation
	Message     string
}

// Queue is the channel traversal workers enqueue signals into and the
// coordinator drains in epoch-sized batches. A buffered channel plus an
// atomic sequence counter is this repo's stand-in for the "lock-free
// queue" the base spec names (§4.7, §5): no lock-free MPMC queue exists
// anywhere in the retrieval pack, and a channel is the idiomatic Go
// primitive for exactly this producer/consumer handoff shape.
type Queue struct {
	ch  chan Signal
	seq atomic.Uint64
}

// NewQueue allocates a queue with the given channel capacity, normally
// config.CoordinatorConfig.SignalQueueCap.
func NewQueue(capacity int) *Queue {
	return &Queue{ch: make(chan Signal, capacity)}
}

// Enqueue stamps s with the next sequence number and pushes it. It
// blocks if the queue is full, applying backpressure to traversal
// workers rather than dropping signals.
func (q *Queue) Enqueue(s Signal) {
	s.Seq = q.seq.Add(1)
	q.ch <- s
}

// Len reports the number of signals currently buffered, for the
// campaign completion check's "no outstanding signals" condition.
func (q *Queue) Len() int { return len(q.ch) }

// Drain collects up to max signals without blocking, for use at the
// start of each coordinator epoch. It returns fewer than max if the
// queue empties first.
func (q *Queue) Drain(max int) []Signal {
	out := make([]Signal, 0, max)
	for len(out) < max {
		select {
		case s := <-q.ch:
			out = append(out, s)
		default:
			return out
		}
	}
	return out
}
