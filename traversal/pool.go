package traversal

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ajhcs/beacon/adapter"
	"github.com/ajhcs/beacon/config"
	"github.com/ajhcs/beacon/coordinator"
	"github.com/ajhcs/beacon/logging"
	"github.com/ajhcs/beacon/model"
	"github.com/ajhcs/beacon/solver"
	"github.com/ajhcs/beacon/spec"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WorkerPool runs a configurable number of Worker goroutines against
// independent model+adapter pairs, each stepping its own Cursor through
// graph until told to stop (§5 "a configurable pool of traversal
// workers (default 4)").
type WorkerPool struct {
	cfg        config.TraversalConfig
	log        logging.Logger
	queue      *coordinator.Queue
	pool       *solver.Pool
	vectors    *VectorSource
	rootSeed   uint64
	directives *coordinator.DirectiveLog
	observers  func(replacement string) (model.ObserverFunc, bool)

	iterations atomic.Uint64
}

// WithDirectives attaches the shared directive log a campaign's epoch
// loop appends to, and the observer-swap resolver every worker consults
// for swap_observer directives. Both are optional; a pool with neither
// set simply never applies force/loop_limit/swap_observer directives,
// which is the pre-campaign-wiring behavior traversal's own tests rely
// on.
func (p *WorkerPool) WithDirectives(log *coordinator.DirectiveLog, observers func(string) (model.ObserverFunc, bool)) *WorkerPool {
	p.directives = log
	p.observers = observers
	return p
}

// NewWorkerPool builds a pool sharing one signal Queue, coverage Pool,
// and VectorSource across every worker, per §5's shared-resource rules
// (the weight table and vector pool are the only state shared across
// workers; model state and guest snapshots are never shared). rootSeed
// is the campaign's root seed (§4.5 "RNG discipline"), from which each
// worker's stream is split by its stage-stack path.
func NewWorkerPool(cfg config.TraversalConfig, log logging.Logger, queue *coordinator.Queue, pool *solver.Pool, vectors *VectorSource, rootSeed uint64) *WorkerPool {
	if log == nil {
		log = logging.NewNop()
	}
	return &WorkerPool{cfg: cfg, log: log, queue: queue, pool: pool, vectors: vectors, rootSeed: rootSeed}
}

// NewWorkerFactory is supplied by the campaign package, which owns
// compiling per-worker adapter/kernel pairs from the shared CompiledIR
// and a fresh Guest instance each (guests cannot be shared across
// workers any more than model state can).
type NewWorkerFactory func(id int) (*adapter.Adapter, error)

// Iterations reports the total number of steps taken across every
// worker, for campaign-completion's "iteration budget met" check.
func (p *WorkerPool) Iterations() uint64 { return p.iterations.Load() }

// Run starts cfg.WorkerCount workers, each walking graph from its start
// node in a loop until ctx is cancelled or stepBudget total steps (0
// means unbounded) have been taken across the whole pool. Cancellation
// is cooperative: a worker finishes its in-flight step (bounded by the
// adapter's fuel budget) before observing ctx.Done (§5 "Suspension
// points").
func (p *WorkerPool) Run(ctx context.Context, ir *spec.CompiledIR, graph *spec.Graph, newWorkerState NewWorkerFactory, weights func() coordinator.Snapshot, stepBudget uint64) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.cfg.WorkerCount; i++ {
		id := i
		g.Go(func() error {
			return p.runWorker(ctx, id, ir, graph, newWorkerState, weights, stepBudget)
		})
	}
	return g.Wait()
}

func (p *WorkerPool) runWorker(ctx context.Context, id int, ir *spec.CompiledIR, graph *spec.Graph, newWorkerState NewWorkerFactory, weights func() coordinator.Snapshot, stepBudget uint64) error {
	ad, err := newWorkerState(id)
	if err != nil {
		return fmt.Errorf("traversal: worker %d: building adapter: %w", id, err)
	}

	w := &Worker{
		ID:            id,
		Graph:         graph,
		Cursor:        NewCursor(graph),
		Stack:         NewStack(p.cfg.StrategyDepth),
		Adapter:       ad,
		IR:            ir,
		Vectors:       p.vectors,
		Pool:          p.pool,
		Queue:         p.queue,
		Rand:          solver.NewRand(solver.SplitSeed(p.rootSeed, fmt.Sprintf("traversal/worker-%d", id))),
		MaxLoopUnwind: p.cfg.MaxLoopUnwind,
		SwapObserver:  p.observers,
	}

	directiveCursor := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if stepBudget > 0 && p.iterations.Load() >= stepBudget {
			return nil
		}
		w.RefreshWeights(weights())
		if p.directives != nil {
			var fresh []coordinator.Directive
			fresh, directiveCursor = p.directives.Since(directiveCursor)
			for _, d := range fresh {
				w.ApplyDirective(d)
			}
		}

		outcome, err := w.Step(ctx)
		if err != nil {
			p.log.Error("traversal step failed", zap.Int("worker", id), zap.Error(err))
			return err
		}
		p.iterations.Add(1)
		if outcome.Done {
			w.Cursor = NewCursor(graph)
			w.trail = nil
			w.replay = nil
		}
	}
}
