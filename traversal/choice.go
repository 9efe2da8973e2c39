package traversal

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/ajhcs/beacon/adapter"
	"github.com/ajhcs/beacon/coordinator"
	"github.com/ajhcs/beacon/model"
	"github.com/ajhcs/beacon/solver"
	"github.com/ajhcs/beacon/spec"
)

// StepOutcome reports what one call to Worker.Step did, for the caller
// (the worker loop) to fold into metrics and campaign-completion
// checks.
type StepOutcome struct {
	Done         bool // cursor reached the protocol's End node
	GuardFailure bool
	Violations   []model.Violation
}

// Worker drives one traversal: a Cursor through a single protocol's
// graph, a Strategy Stack biasing its Branch choices, and a private
// model kernel + adapter pair (§5 "Model state is never shared across
// workers — each worker owns its state and its guest snapshot").
type Worker struct {
	ID            int
	Graph         *spec.Graph
	Cursor        *Cursor
	Stack         *Stack
	Adapter       *adapter.Adapter
	IR            *spec.CompiledIR
	Vectors       *VectorSource
	Pool          *solver.Pool
	Queue         *coordinator.Queue
	Rand          *rand.Rand
	MaxLoopUnwind int

	// SwapObserver resolves a swap_observer directive's replacement name
	// to a live observer function; nil means swap_observer directives are
	// ignored by this worker (no replacement registry configured).
	SwapObserver func(replacement string) (model.ObserverFunc, bool)

	weights  coordinator.Snapshot
	trail    []string                 // edge/terminal ids taken this campaign, for force/investigation replay
	replay   []coordinator.ReplayStep // captured Terminal calls, for findings.ReplayCapsule
	loopCaps map[spec.NodeID]int      // per-node loop_limit overrides from the coordinator
}

// ApplyDirective folds one coordinator directive into this worker's
// local state (§4.7: directives are "for traversal workers to pick up
// at their next epoch boundary"). adjust_weight and skip are already
// reflected in the shared weight table the coordinator itself updates,
// so only the directives with worker-local effect are handled here.
func (w *Worker) ApplyDirective(d coordinator.Directive) {
	switch d.Kind {
	case coordinator.DirectiveForce:
		w.Stack.PushForce(d.TerminalSeq)
	case coordinator.DirectiveLoopLimit:
		if d.Loops > 0 {
			if w.loopCaps == nil {
				w.loopCaps = map[spec.NodeID]int{}
			}
			w.loopCaps[spec.NodeID(d.EdgeID)] = d.Loops
		}
	case coordinator.DirectiveSwapObserver:
		if w.SwapObserver == nil || w.Adapter == nil || w.Adapter.Kernel == nil {
			return
		}
		if fn, ok := w.SwapObserver(d.NewObserver); ok {
			w.Adapter.Kernel.Observers[d.ObserverName] = fn
		}
	}
}

// RefreshWeights installs the weight table snapshot this worker reads
// Branch eligibility and draw weight from until the next epoch boundary
// (§4.7 "read as an immutable snapshot by traversals at epoch start").
func (w *Worker) RefreshWeights(snap coordinator.Snapshot) {
	w.weights = snap
}

func (w *Worker) evaluator() *model.Evaluator {
	return model.NewEvaluator(w.Adapter.Kernel.State, w.IR, w.Adapter.Kernel.Observers)
}

func (w *Worker) evalGuard(g *spec.Expr) (bool, error) {
	if g == nil {
		return true, nil
	}
	v, err := w.evaluator().Eval(g, model.EmptyFrame)
	if err != nil {
		return false, fmt.Errorf("traversal: evaluating guard: %w", err)
	}
	return v.B, nil
}

// Step advances the cursor by exactly one node (§4.6 choice points).
func (w *Worker) Step(ctx context.Context) (StepOutcome, error) {
	node := w.Cursor.At()
	switch node.Kind {
	case spec.KindStart:
		w.Cursor.MoveTo(node.Next)
		return StepOutcome{}, nil
	case spec.KindEnd:
		return StepOutcome{Done: true}, nil
	case spec.KindBranch:
		return w.stepBranch(node)
	case spec.KindLoopEntry:
		return w.stepLoopEntry(node)
	case spec.KindLoopExit:
		return w.stepLoopExit(node)
	case spec.KindTerminal:
		return w.stepTerminal(ctx, node)
	default:
		return StepOutcome{}, fmt.Errorf("traversal: unknown node kind %q", node.Kind)
	}
}

func (w *Worker) stepBranch(node *spec.Node) (StepOutcome, error) {
	stateID := w.Cursor.AbstractStateID()
	var eligible []WeightedEdge
	for _, e := range node.Edges {
		ok, err := w.evalGuard(e.Guard)
		if err != nil {
			return StepOutcome{}, err
		}
		if !ok {
			continue
		}
		weight := w.weights.Weight(e.ID, stateID)
		if weight <= 0 {
			continue
		}
		eligible = append(eligible, WeightedEdge{Edge: e, Weight: weight})
	}
	if len(eligible) == 0 {
		w.Queue.Enqueue(coordinator.Signal{Kind: coordinator.SignalGuardFailure, EdgeID: string(node.ID), StateID: stateID})
		w.Stack.Pop()
		return StepOutcome{GuardFailure: true}, nil
	}
	edge, ok := w.Stack.Top().PickEdge(w.Rand, eligible)
	if !ok {
		// a Force strategy whose next pinned edge is not eligible here
		edge, _ = w.Stack.base.PickEdge(w.Rand, eligible)
	}
	w.trail = append(w.trail, string(node.ID)+"/"+edge.ID)
	w.Cursor.MoveTo(edge.Target)
	return StepOutcome{}, nil
}

func (w *Worker) stepLoopEntry(node *spec.Node) (StepOutcome, error) {
	if _, active := w.Cursor.Loops[node.ID]; !active {
		maxN := node.Max
		if capN, ok := w.loopCaps[node.ID]; ok && maxN > capN {
			maxN = capN
		} else if w.MaxLoopUnwind > 0 && maxN > w.MaxLoopUnwind {
			maxN = w.MaxLoopUnwind
		}
		span := maxN - node.Min
		n := node.Min
		if span > 0 {
			n += w.Rand.Intn(span + 1)
		}
		w.Cursor.Loops[node.ID] = n
	}
	w.Cursor.MoveTo(node.BodyHead)
	return StepOutcome{}, nil
}

func (w *Worker) stepLoopExit(node *spec.Node) (StepOutcome, error) {
	remaining := w.Cursor.Loops[node.LoopEntryID]
	remaining--
	if remaining > 0 {
		w.Cursor.Loops[node.LoopEntryID] = remaining
		entry := w.Graph.Nodes[node.LoopEntryID]
		w.Cursor.MoveTo(entry.BodyHead)
		return StepOutcome{}, nil
	}
	delete(w.Cursor.Loops, node.LoopEntryID)
	w.Cursor.MoveTo(node.Next)
	return StepOutcome{}, nil
}

func (w *Worker) stepTerminal(ctx context.Context, node *spec.Node) (StepOutcome, error) {
	ok, err := w.evalGuard(node.Guard)
	if err != nil {
		return StepOutcome{}, err
	}
	if !ok {
		w.Queue.Enqueue(coordinator.Signal{Kind: coordinator.SignalGuardFailure, EdgeID: node.Action, StateID: w.Cursor.AbstractStateID()})
		w.Cursor.MoveTo(node.Next)
		return StepOutcome{GuardFailure: true}, nil
	}

	binding, ok := w.IR.Bindings[node.Action]
	if !ok {
		return StepOutcome{}, fmt.Errorf("%w: %q", ErrUnboundAction, node.Action)
	}
	eff, ok := w.IR.Effects[node.Action]
	if !ok {
		return StepOutcome{}, fmt.Errorf("%w: %q", ErrUnboundAction, node.Action)
	}

	vec := w.Vectors.Next(w.Rand, w.Pool)
	input := vec.Args(binding.Args)
	actorID := w.actorFor(eff.ActorEntity)

	result, err := w.Adapter.CallAction(ctx, node.Action, actorID, input, 0)
	if err != nil {
		return StepOutcome{}, fmt.Errorf("traversal: calling %q: %w", node.Action, err)
	}
	if w.Pool != nil {
		w.Pool.Offer(vec)
	}
	w.trail = append(w.trail, "terminal/"+node.Action)
	w.replay = append(w.replay, coordinator.ReplayStep{Action: node.Action, ActorID: actorID, Input: input})
	w.Cursor.MoveTo(node.Next)

	trail := append([]string(nil), w.trail...)
	replay := append([]coordinator.ReplayStep(nil), w.replay...)
	switch {
	case result.Entry.OutOfFuel:
		w.Queue.Enqueue(coordinator.Signal{Kind: coordinator.SignalTimeout, EdgeID: node.Action, TerminalSeq: trail, Trail: replay})
	case result.Entry.Trapped:
		w.Queue.Enqueue(coordinator.Signal{Kind: coordinator.SignalCrash, EdgeID: node.Action, TerminalSeq: trail, Trail: replay})
	}
	for i := range result.Violations {
		v := result.Violations[i]
		w.Queue.Enqueue(coordinator.Signal{
			Kind:        coordinator.SignalPropertyViolation,
			TerminalSeq: trail,
			Trail:       replay,
			Violation:   &v,
			Message:     v.Message,
		})
	}
	return StepOutcome{Violations: result.Violations}, nil
}

// actorFor returns an existing instance of entityType if one exists,
// biased toward reusing established instances the way a real workload
// would (most actions act on something already created), falling back
// to minting a fresh one so the very first call to an action with no
// prior instances can still proceed. entityType == "" (an effect with
// no actor) returns the zero instance id.
func (w *Worker) actorFor(entityType string) model.InstanceID {
	if entityType == "" {
		return ""
	}
	existing := w.Adapter.Kernel.State.Instances(entityType)
	if len(existing) > 0 {
		return existing[w.Rand.Intn(len(existing))]
	}
	return w.Adapter.Kernel.State.Create(entityType)
}
