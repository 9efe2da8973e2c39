package coordinator

import (
	"github.com/ajhcs/beacon/config"
	"github.com/ajhcs/beacon/logging"
	"github.com/ajhcs/beacon/metrics"
	"github.com/ajhcs/beacon/solver"
)

// Recorder observes every signal an epoch drains, independently of how
// the coordinator folds that signal into a directive. The findings
// package implements this to turn property_violation/discrepancy/
// crash/timeout signals into persisted findings without the
// coordinator importing findings (findings already imports coordinator
// for Signal/SignalKind; the reverse would cycle).
type Recorder interface {
	Record(epoch uint64, s Signal)
}

// Coordinator owns the single-threaded epoch loop that drains a
// traversal campaign's signal Queue, folds the batch into a sorted-by-
// sequence-number view, and emits directives (§4.7). Exactly one
// goroutine calls ProcessEpoch per campaign: the weight table and
// plateau detector are not safe for concurrent epoch processing, only
// for the concurrent Snapshot reads traversal workers perform.
type Coordinator struct {
	Queue    *Queue
	Weights  *WeightTable
	Unreach  *UnreachableTracker
	Recorder Recorder
	cfg      config.CoordinatorConfig
	log      logging.Logger
	metrics  *metrics.Campaign
	plateau  *plateauDetector

	epoch uint64
}

// New builds a Coordinator from host configuration.
func New(cfg config.CoordinatorConfig, log logging.Logger, m *metrics.Campaign) *Coordinator {
	weights := NewWeightTable(cfg.WeightTableSize, cfg.MaxWeight)
	return &Coordinator{
		Queue:   NewQueue(cfg.SignalQueueCap),
		Weights: weights,
		Unreach: NewUnreachableTracker(weights),
		cfg:     cfg,
		log:     log,
		metrics: m,
		plateau: newPlateauDetector(cfg.PlateauBeta),
	}
}

// Epoch reports how many epochs ProcessEpoch has completed, for
// diagnostics/analytics surfaces.
func (c *Coordinator) Epoch() uint64 { return c.epoch }

// ProcessEpoch drains up to one epoch's worth of signals, folds them
// into directives in ascending sequence-number order, decays the
// weight table, and consults pool for a coverage-floor boost. pool may
// be nil if no coverage generators are declared.
func (c *Coordinator) ProcessEpoch(pool *solver.Pool) []Directive {
	c.epoch++
	batch := c.Queue.Drain(c.cfg.EpochSize)
	sortSignalsBySeq(batch)

	var directives []Directive
	advancedTargets := map[string]bool{}

	for _, s := range batch {
		if c.Recorder != nil {
			c.Recorder.Record(c.epoch, s)
		}
		switch s.Kind {
		case SignalCoverageDelta:
			advancedTargets[s.Target] = true
			c.Weights.Adjust(s.EdgeID, s.StateID, 1.0/c.cfg.WeightDecayFactor)
			directives = append(directives, Directive{Kind: DirectiveAdjustWeight, EdgeID: s.EdgeID, StateID: s.StateID, Factor: 1.0 / c.cfg.WeightDecayFactor})
		case SignalGuardFailure:
			c.Weights.Adjust(s.EdgeID, s.StateID, c.cfg.WeightDecayFactor)
			directives = append(directives, Directive{Kind: DirectiveAdjustWeight, EdgeID: s.EdgeID, StateID: s.StateID, Factor: c.cfg.WeightDecayFactor})
		case SignalPropertyViolation, SignalDiscrepancy, SignalCrash:
			directives = append(directives, Directive{
				Kind:        DirectiveForce,
				TerminalSeq: s.TerminalSeq,
			})
		case SignalTimeout:
			directives = append(directives, Directive{Kind: DirectiveLoopLimit, EdgeID: s.EdgeID, StateID: s.StateID, Loops: 0})
		case SignalCoveragePlateau:
			// enqueued by this coordinator's own detectPlateaus; it reaches
			// the Recorder above but is not folded into any directive.
		}
		if c.metrics != nil {
			c.metrics.SignalsProcessed.WithLabelValues(string(s.Kind)).Inc()
		}
	}

	c.Weights.Decay(c.cfg.WeightDecayFactor)

	if pool != nil {
		directives = append(directives, c.boostBelowFloor(pool)...)
		c.detectPlateaus(pool, advancedTargets)
	}

	if c.metrics != nil {
		for _, d := range directives {
			c.metrics.DirectivesIssued.WithLabelValues(string(d.Kind)).Inc()
		}
		c.metrics.WeightEvictions.Add(float64(c.Weights.Evictions()))
	}
	return directives
}

// boostBelowFloor emits at most one adjust_weight directive: when the
// pool's overall coverage fraction is below the configured floor, it
// boosts the target pool.Pending returns (the uncovered target with the
// lowest estimated reachability, named in EdgeID), unless that target
// has already been proven unreachable (§4.5 "Coverage floor").
func (c *Coordinator) boostBelowFloor(pool *solver.Pool) []Directive {
	if pool.CoveragePercent() >= c.cfg.CoverageFloor {
		return nil
	}
	name, ok := pool.Pending()
	if !ok || c.Unreach.IsProven(name) {
		return nil
	}
	return []Directive{{Kind: DirectiveAdjustWeight, EdgeID: name, Factor: 1.0 / c.cfg.WeightDecayFactor}}
}

// detectPlateaus feeds this epoch's per-target progress into the
// plateau detector, over every declared target (not just ones that
// advanced this epoch — a target needs its lack of progress recorded
// too), and turns a first-time plateau into a coverage_plateau signal
// the next epoch's batch will carry (§4.9 "emit coverage_plateau once
// beta consecutive plateaued epochs is reached").
func (c *Coordinator) detectPlateaus(pool *solver.Pool, advanced map[string]bool) {
	for _, name := range pool.TargetNames() {
		if c.plateau.Observe(name, advanced[name]) {
			c.Queue.Enqueue(Signal{Kind: SignalCoveragePlateau, Target: name})
		}
	}
}

func sortSignalsBySeq(s []Signal) {
	// small batches (EpochSize, typically in the hundreds): insertion
	// sort is simpler than pulling in sort.Slice's reflection overhead
	// and plenty fast at this size.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1].Seq > s[j].Seq; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
