package model

// TraceEntry is one step of a running trace (§3 "Trace"): the action
// taken, who took it, what it was called with, what came back, and
// enough bookkeeping (snapshot, epoch, step) to let a replay capsule
// resume from exactly this point.
//
// Aborted marks a crashed or timed-out action (Open Question decision:
// temporal rules skip aborted actions but the entry is still appended
// so before/after windows stay contiguous over step numbers).
type TraceEntry struct {
	Action     string
	Actor      InstanceID
	Input      []Value
	Response   Value
	Trapped    bool
	OutOfFuel  bool
	Aborted    bool
	SnapshotID SnapshotID
	Epoch      int
	Step       uint64
	Tags       []string
}

// Trace is the ordered sequence of trace entries for one traversal run.
type Trace struct {
	entries []TraceEntry
}

// NewTrace returns an empty trace.
func NewTrace() *Trace { return &Trace{} }

// Append adds entry to the trace. Trace entries are append-only:
// instances are never destroyed and traces are never truncated within a
// run (§3: "garbage is bounded by protocol finiteness").
func (t *Trace) Append(entry TraceEntry) { t.entries = append(t.entries, entry) }

// Entries returns the full trace in step order.
func (t *Trace) Entries() []TraceEntry { return t.entries }

// Len reports how many entries the trace holds.
func (t *Trace) Len() int { return len(t.entries) }

// Last returns the most recently appended entry and true, or the zero
// entry and false if the trace is empty.
func (t *Trace) Last() (TraceEntry, bool) {
	if len(t.entries) == 0 {
		return TraceEntry{}, false
	}
	return t.entries[len(t.entries)-1], true
}
