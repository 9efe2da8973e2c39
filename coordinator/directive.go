package coordinator

// DirectiveKind enumerates the five ways an epoch's folded signals can
// steer subsequent traversal (§4.7).
type DirectiveKind string

const (
	DirectiveAdjustWeight DirectiveKind = "adjust_weight"
	DirectiveForce        DirectiveKind = "force"
	DirectiveSkip         DirectiveKind = "skip"
	DirectiveLoopLimit    DirectiveKind = "loop_limit"
	DirectiveSwapObserver DirectiveKind = "swap_observer"
)

// Directive is one instruction the coordinator emits at the end of an
// epoch for traversal workers to pick up at their next epoch boundary.
type Directive struct {
	Kind DirectiveKind

	// adjust_weight / skip / loop_limit
	EdgeID  string
	StateID string
	Factor  float64 // adjust_weight multiplier
	Loops   int     // loop_limit override for a LoopEntry node

	// force: replay a specific terminal sequence via the Force strategy
	TerminalSeq []string

	// swap_observer: rebind an observer name to a new implementation id
	ObserverName string
	NewObserver  string
}
