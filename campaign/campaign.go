// Package campaign ties the coordinator, traversal, solver, and
// findings components together behind the tool surface a caller drives
// a verification campaign through: compile a document, start it,
// poll status/coverage/findings, and abort it early if needed.
package campaign

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajhcs/beacon/adapter"
	"github.com/ajhcs/beacon/config"
	"github.com/ajhcs/beacon/coordinator"
	"github.com/ajhcs/beacon/findings"
	"github.com/ajhcs/beacon/harnessctx"
	"github.com/ajhcs/beacon/logging"
	"github.com/ajhcs/beacon/metrics"
	"github.com/ajhcs/beacon/model"
	"github.com/ajhcs/beacon/solver"
	"github.com/ajhcs/beacon/spec"
	"github.com/ajhcs/beacon/traversal"
)

const (
	defaultFuelBudget       = uint64(1_000_000)
	defaultSnapshotCapacity = 256
	epochInterval           = 50 * time.Millisecond
)

// errComplete is the sentinel epochLoop returns once checkComplete is
// satisfied, so the errgroup it runs under cancels every worker pool
// cooperatively without treating completion as a failure.
var errComplete = errors.New("campaign: complete")

// State is a campaign's position in the Compiled -> Running ->
// (Complete | Aborted) lifecycle (§6).
type State int

const (
	StateCompiled State = iota
	StateRunning
	StateComplete
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateCompiled:
		return "compiled"
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// GuestFactory builds a fresh isolation-host guest for one traversal
// worker or replay run. The isolation host itself is out of scope for
// this repo (§1 Non-goals); the caller supplies however it loads and
// instantiates guest modules.
type GuestFactory func(workerID int) (adapter.Guest, error)

// ObserverResolver looks up a guest-backed observer implementation by
// binding name, for both initial wiring of observer-kind functions and
// resolving a swap_observer directive's replacement at runtime.
type ObserverResolver func(binding string) (model.ObserverFunc, bool)

// Options configures a single Compile call.
type Options struct {
	Config           config.Host
	Guests           GuestFactory
	Observers        ObserverResolver
	FuelBudget       uint64
	SnapshotCapacity int
	Registry         prometheus.Registerer
	Log              logging.Logger
}

// Campaign is one compiled specification's run: its compiled IR, the
// coordinator/traversal/solver/findings state it owns, and the
// lifecycle state machine a caller drives through Start/Abort.
type Campaign struct {
	ID          string
	ContentHash [32]byte
	Budget      int

	ir               *spec.CompiledIR
	cfg              config.Host
	guests           GuestFactory
	observers        map[string]model.ObserverFunc
	fuelBudget       uint64
	snapshotCapacity int
	log              logging.Logger
	metrics          *metrics.Campaign

	coord      *coordinator.Coordinator
	memory     *coordinator.Memory
	store      *findings.Store
	directives *coordinator.DirectiveLog
	pool       *solver.Pool
	vectors    *traversal.VectorSource
	pools      map[string]*traversal.WorkerPool
	rootSeed   uint64

	regressionCapsules   []findings.ReplayCapsule
	regressionKinds      []findings.Kind
	regressionProperties []string

	mu         sync.Mutex
	state      State
	startedAt  time.Time
	finishedAt time.Time
	cancel     context.CancelFunc
	done       chan struct{}
	runErr     error
}

// Manager is a registry of compiled campaigns, the entry point a caller
// drives the §6 tool surface through.
type Manager struct {
	mu        sync.Mutex
	campaigns map[string]*Campaign
}

// NewManager returns an empty registry.
func NewManager() *Manager {
	return &Manager{campaigns: map[string]*Campaign{}}
}

func (m *Manager) get(id string) (*Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCampaignNotFound, id)
	}
	return c, nil
}

// Compile type-checks doc, lowers it to a CompiledIR, builds every
// per-campaign component (coordinator, solver artifacts, worker pools),
// loads any cross-campaign memory persisted for the same content hash,
// and registers the resulting Campaign under a fresh id (tool surface
// "compile(spec) returning a campaign id and budget").
func (m *Manager) Compile(doc *spec.Document, opts Options) (*Campaign, error) {
	if opts.Guests == nil {
		return nil, ErrGuestFactoryRequired
	}
	if err := opts.Config.Verify(); err != nil {
		return nil, fmt.Errorf("campaign: invalid host config: %w", err)
	}
	if opts.Log == nil {
		opts.Log = logging.NewNop()
	}
	if opts.FuelBudget == 0 {
		opts.FuelBudget = defaultFuelBudget
	}
	if opts.SnapshotCapacity == 0 {
		opts.SnapshotCapacity = defaultSnapshotCapacity
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	ir, err := spec.Compile(doc)
	if err != nil {
		return nil, fmt.Errorf("campaign: compiling document: %w", err)
	}

	id := uuid.NewString()
	rootSeed := solver.RootSeed(ir.ContentHash, id)
	if ir.Exploration.Seed != 0 {
		// A spec author who pins exploration.seed wants reproducible
		// traversal across repeated compiles of the same document,
		// which a fresh uuid-derived campaign id would otherwise
		// prevent; mixing the declared seed in as an extra split stage
		// keeps §4.5's "RootSeed(content_hash, campaign_id)" derivation
		// intact while still honoring that request.
		rootSeed = solver.SplitSeed(rootSeed, fmt.Sprintf("exploration-seed/%d", ir.Exploration.Seed))
	}

	m1 := metrics.NewCampaign(opts.Registry)
	coord := coordinator.New(opts.Config.Coordinator, opts.Log, m1)
	store := findings.New(m1)
	coord.Recorder = store
	directiveLog := coordinator.NewDirectiveLog()

	artifacts, err := buildSolverArtifacts(context.Background(), ir, solverConfig{
		MaxSubspaceDepth:  opts.Config.Solver.MaxSubspaceDepth,
		ModelsPerSubspace: opts.Config.Solver.ModelsPerSubspace,
		ParallelSubspaces: opts.Config.Solver.ParallelSubspaces,
	}, rootSeed)
	if err != nil {
		return nil, err
	}

	observers := resolveObservers(ir, opts.Observers)

	c := &Campaign{
		ID:               id,
		ContentHash:      ir.ContentHash,
		Budget:           ir.Exploration.IterationBudget,
		ir:               ir,
		cfg:              opts.Config,
		guests:           opts.Guests,
		observers:        observers,
		fuelBudget:       opts.FuelBudget,
		snapshotCapacity: opts.SnapshotCapacity,
		log:              opts.Log,
		metrics:          m1,
		coord:            coord,
		store:            store,
		directives:       directiveLog,
		pool:             artifacts.pool,
		vectors:          artifacts.vectors,
		rootSeed:         rootSeed,
		pools:            map[string]*traversal.WorkerPool{},
		memory: &coordinator.Memory{
			Weights:     coord.Weights,
			Unreachable: coord.Unreach,
			HotRegions:  map[string]int{},
		},
		state: StateCompiled,
	}

	for name := range ir.Graphs {
		c.pools[name] = traversal.NewWorkerPool(opts.Config.Traversal, opts.Log, coord.Queue, artifacts.pool, artifacts.vectors, rootSeed).
			WithDirectives(directiveLog, opts.Observers)
	}

	if err := c.loadPersisted(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.campaigns[id] = c
	m.mu.Unlock()
	return c, nil
}

// newAdapter builds a fresh guest + model kernel pair, the unit of
// per-worker (and per-replay-run) state that cannot be shared.
func (c *Campaign) newAdapter(workerID int) (*adapter.Adapter, error) {
	guest, err := c.guests(workerID)
	if err != nil {
		return nil, fmt.Errorf("campaign: building guest: %w", err)
	}
	kernel := model.NewKernel(c.ir, c.observers, c.snapshotCapacity)
	return adapter.New(c.ir, kernel, guest, c.fuelBudget, c.log)
}

// Start transitions a compiled campaign to running and launches its
// epoch loop and per-protocol worker pools in the background.
func (c *Campaign) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateCompiled {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.state = StateRunning
	c.startedAt = time.Now()
	c.cancel = cancel
	c.done = make(chan struct{})
	c.mu.Unlock()

	hctx := harnessctx.With(runCtx, &harnessctx.Harness{
		CampaignID: c.ID,
		Log:        c.log,
		Metrics:    c.metrics,
		RootSeed:   c.rootSeed,
	})
	go c.run(hctx)
	return nil
}

func (c *Campaign) run(ctx context.Context) {
	defer close(c.done)

	c.runRegressionChecks(ctx)

	g, gctx := errgroup.WithContext(ctx)
	for name, graph := range c.ir.Graphs {
		name, graph := name, graph
		pool := c.pools[name]
		g.Go(func() error {
			return pool.Run(gctx, c.ir, graph, c.newAdapter, c.coord.Weights.Snapshot, 0)
		})
	}
	g.Go(func() error { return c.epochLoop(gctx) })

	err := g.Wait()

	c.mu.Lock()
	switch {
	case errors.Is(err, errComplete):
		c.state = StateComplete
	default:
		c.state = StateAborted
		if err != nil && !errors.Is(err, context.Canceled) {
			c.runErr = err
		}
	}
	c.finishedAt = time.Now()
	c.mu.Unlock()

	if err := c.persist(); err != nil {
		c.log.Error("campaign: failed to persist cross-campaign state", zap.Error(err))
	}
}

// runRegressionChecks replays every capsule persisted by a prior
// campaign against the same content hash before any fresh traversal
// starts, re-recording still-reproducing ones as fresh, high-priority
// findings (§4.7 "replay capsules for regression priority at the next
// campaign's start"). Capsules that no longer reproduce are simply
// dropped — they are not retained as stale findings since they were
// never findings of this campaign to begin with.
func (c *Campaign) runRegressionChecks(ctx context.Context) {
	for i, capsule := range c.regressionCapsules {
		kind := c.regressionKinds[i]
		property := c.regressionProperties[i]
		result, err := findings.Replay(ctx, capsule, kind, property, func() (*adapter.Adapter, error) {
			return c.newAdapter(0)
		})
		if err != nil {
			c.log.Warn("campaign: regression capsule replay failed", zap.Error(err))
			continue
		}
		if !result.Reproduced {
			continue
		}
		sig := coordinator.Signal{Kind: signalKindFor(kind), Trail: capsule.Steps}
		switch kind {
		case findings.KindViolation, findings.KindDiscrepancy:
			sig.Violation = &model.Violation{Property: property, Message: "regression: reproduced from a prior campaign's capsule"}
		default:
			sig.Message = "regression: reproduced from a prior campaign's capsule"
		}
		c.store.Record(0, sig)
	}
}

func (c *Campaign) epochLoop(ctx context.Context) error {
	ticker := time.NewTicker(epochInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			directives := c.coord.ProcessEpoch(c.pool)
			c.directives.Append(directives)
			if c.metrics != nil {
				c.metrics.EpochDuration.Observe(time.Since(start).Seconds())
				c.metrics.CoveragePercent.Set(c.pool.CoveragePercent())
			}
			if c.checkComplete() {
				return errComplete
			}
		}
	}
}

func (c *Campaign) totalIterations() uint64 {
	var total uint64
	for _, p := range c.pools {
		total += p.Iterations()
	}
	return total
}

// checkComplete reports whether this campaign has met its iteration
// budget (if any), has no signals left queued for the coordinator to
// fold, and has reached the configured coverage floor on every target
// not already proven unreachable (§6 "Running -> Complete").
func (c *Campaign) checkComplete() bool {
	if budget := c.ir.Exploration.IterationBudget; budget > 0 && c.totalIterations() < uint64(budget) {
		return false
	}
	if c.coord.Queue.Len() > 0 {
		return false
	}
	floor := c.ir.Exploration.CoverageFloor
	if floor <= 0 {
		floor = c.cfg.Coordinator.CoverageFloor
	}
	for _, name := range c.pool.TargetNames() {
		if c.coord.Unreach.IsProven(name) {
			continue
		}
		cov, ok := c.pool.TargetCoverage(name)
		if !ok || cov < floor {
			return false
		}
	}
	return true
}

// Abort cancels a running campaign and waits for its worker pools and
// epoch loop to unwind. It is a no-op for a campaign already in a
// terminal state, and returns ErrInvalidTransition for one not yet
// started (partial results remain queryable either way).
func (c *Campaign) Abort() error {
	c.mu.Lock()
	state := c.state
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	switch state {
	case StateRunning:
		cancel()
		<-done
		return nil
	case StateComplete, StateAborted:
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Err returns the error that aborted this campaign, if any. It is nil
// while running, on a clean Abort, and once Complete.
func (c *Campaign) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runErr
}

// StatusView answers the tool surface's status() query.
type StatusView struct {
	State           string
	IterationsDone  uint64
	IterationsTotal int
	CoveragePercent float64
	FindingsCount   int
}

func (c *Campaign) Status() StatusView {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	return StatusView{
		State:           state.String(),
		IterationsDone:  c.totalIterations(),
		IterationsTotal: c.ir.Exploration.IterationBudget,
		CoveragePercent: c.pool.CoveragePercent(),
		FindingsCount:   c.store.Count(),
	}
}

// CoverageView answers the tool surface's coverage() query.
type CoverageView struct {
	Hit         []string
	Pending     []string
	Unreachable []string
}

func (c *Campaign) Coverage() CoverageView {
	var v CoverageView
	for _, name := range c.pool.TargetNames() {
		switch {
		case c.coord.Unreach.IsProven(name):
			v.Unreachable = append(v.Unreachable, name)
		case c.pool.TargetComplete(name):
			v.Hit = append(v.Hit, name)
		default:
			v.Pending = append(v.Pending, name)
		}
	}
	return v
}

// FindingsPage answers the tool surface's findings(since_seqno) query.
type FindingsPage struct {
	Items     []findings.Finding
	NextSeqno uint64
}

func (c *Campaign) Findings(sinceSeqno uint64) FindingsPage {
	items, next := c.store.Query(sinceSeqno)
	return FindingsPage{Items: items, NextSeqno: next}
}

// AnalyticsView answers the tool surface's opaque analytics() query
// with the cross-cutting counters a caller would want to chart over a
// campaign's lifetime.
type AnalyticsView struct {
	Epoch              uint64
	WeightEvictions    uint64
	UnreachableTargets int
	DirectivesIssued   int
	FindingsByKind     map[string]int
}

func (c *Campaign) Analytics() AnalyticsView {
	items, _ := c.store.Query(0)
	byKind := map[string]int{}
	for _, f := range items {
		byKind[string(f.Kind)]++
	}
	issued, _ := c.directives.Since(0)
	return AnalyticsView{
		Epoch:              c.coord.Epoch(),
		WeightEvictions:    c.coord.Weights.Evictions(),
		UnreachableTargets: len(c.coord.Unreach.Proofs()),
		DirectivesIssued:   len(issued),
		FindingsByKind:     byKind,
	}
}

// Start looks up id and starts it.
func (m *Manager) Start(ctx context.Context, id string) error {
	c, err := m.get(id)
	if err != nil {
		return err
	}
	return c.Start(ctx)
}

// Status looks up id and returns its status view.
func (m *Manager) Status(id string) (StatusView, error) {
	c, err := m.get(id)
	if err != nil {
		return StatusView{}, err
	}
	return c.Status(), nil
}

// Coverage looks up id and returns its coverage view.
func (m *Manager) Coverage(id string) (CoverageView, error) {
	c, err := m.get(id)
	if err != nil {
		return CoverageView{}, err
	}
	return c.Coverage(), nil
}

// Findings looks up id and returns findings since sinceSeqno.
func (m *Manager) Findings(id string, sinceSeqno uint64) (FindingsPage, error) {
	c, err := m.get(id)
	if err != nil {
		return FindingsPage{}, err
	}
	return c.Findings(sinceSeqno), nil
}

// Abort looks up id and aborts it.
func (m *Manager) Abort(id string) error {
	c, err := m.get(id)
	if err != nil {
		return err
	}
	return c.Abort()
}

// Analytics looks up id and returns its analytics view.
func (m *Manager) Analytics(id string) (AnalyticsView, error) {
	c, err := m.get(id)
	if err != nil {
		return AnalyticsView{}, err
	}
	return c.Analytics(), nil
}
