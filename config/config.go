// Package config loads host-level harness configuration: worker pool
// size, epoch size, weight table shape, and persistence location. This is
// distinct from the compiled specification document (see package spec),
// which is the verified artifact and is never touched by this package.
//
// Precedence follows the pack's specmcp convention: environment variables
// override the config file, which overrides the built-in defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Host holds the settings that govern how a campaign is run, as opposed
// to what is being verified.
type Host struct {
	Traversal  TraversalConfig  `toml:"traversal"`
	Coordinator CoordinatorConfig `toml:"coordinator"`
	Solver     SolverConfig     `toml:"solver"`
	Persist    PersistConfig    `toml:"persist"`
	LogLevel   string           `toml:"log_level"`
}

// TraversalConfig governs the traversal worker pool (§5).
type TraversalConfig struct {
	WorkerCount    int `toml:"worker_count"`
	StrategyDepth  int `toml:"strategy_depth"`
	MaxLoopUnwind  int `toml:"max_loop_unwind"`
}

// CoordinatorConfig governs epoch batching and the weight table (§4.7, §9).
type CoordinatorConfig struct {
	EpochSize          int     `toml:"epoch_size"`
	SignalQueueCap     int     `toml:"signal_queue_capacity"`
	WeightTableSize    int     `toml:"weight_table_size"`
	WeightDecayFactor  float64 `toml:"weight_decay_factor"`
	MaxWeight          float64 `toml:"max_weight"`
	CoverageFloor      float64 `toml:"coverage_floor"`
	PlateauBeta        int     `toml:"plateau_beta"`
}

// SolverConfig governs the fracture/solve/abort driver (§4.5).
type SolverConfig struct {
	MaxSubspaceDepth   int `toml:"max_subspace_depth"`
	ModelsPerSubspace  int `toml:"models_per_subspace"`
	ParallelSubspaces  int `toml:"parallel_subspaces"`
}

// PersistConfig governs cross-campaign memory (§4.7, §6).
type PersistConfig struct {
	Directory string `toml:"directory"`
}

var (
	ErrInvalidWorkerCount   = fmt.Errorf("invalid worker_count")
	ErrInvalidStrategyDepth = fmt.Errorf("invalid strategy_depth")
	ErrInvalidEpochSize     = fmt.Errorf("invalid epoch_size")
	ErrInvalidWeightTable   = fmt.Errorf("invalid weight_table_size")
	ErrInvalidDecayFactor   = fmt.Errorf("invalid weight_decay_factor")
	ErrInvalidMaxWeight     = fmt.Errorf("invalid max_weight")
	ErrInvalidCoverageFloor = fmt.Errorf("invalid coverage_floor")
	ErrInvalidSubspaceDepth = fmt.Errorf("invalid max_subspace_depth")
)

// Default returns the built-in baseline configuration.
func Default() Host {
	return Host{
		Traversal: TraversalConfig{
			WorkerCount:   4,
			StrategyDepth: 8,
			MaxLoopUnwind: 64,
		},
		Coordinator: CoordinatorConfig{
			EpochSize:         256,
			SignalQueueCap:    4096,
			WeightTableSize:   1 << 16,
			WeightDecayFactor: 0.95,
			MaxWeight:         1000,
			CoverageFloor:     0.0,
			PlateauBeta:       3,
		},
		Solver: SolverConfig{
			MaxSubspaceDepth:  32,
			ModelsPerSubspace: 4,
			ParallelSubspaces: 4,
		},
		Persist: PersistConfig{
			Directory: "./.harness-state",
		},
		LogLevel: "info",
	}
}

// Load reads a TOML config file at path (if non-empty and present),
// applies it over Default(), then applies environment variable overrides,
// and validates the result.
func Load(path string) (Host, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Host{}, fmt.Errorf("decode config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Host{}, fmt.Errorf("stat config %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Verify(); err != nil {
		return Host{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Host) {
	if v := os.Getenv("HARNESS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HARNESS_STATE_DIR"); v != "" {
		cfg.Persist.Directory = v
	}
}

// Verify range-checks worker_count, strategy_depth, epoch_size,
// weight_table_size, weight_decay_factor, max_weight, coverage_floor and
// max_subspace_depth, following the teacher's sampling.Parameters.Verify
// convention of one wrapped sentinel per offending field, and returns the
// first violation found. signal_queue_capacity, max_loop_unwind,
// plateau_beta, models_per_subspace and parallel_subspaces are not
// checked.
func (h Host) Verify() error {
	if h.Traversal.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count=%d", ErrInvalidWorkerCount, h.Traversal.WorkerCount)
	}
	if h.Traversal.StrategyDepth <= 0 {
		return fmt.Errorf("%w: strategy_depth=%d", ErrInvalidStrategyDepth, h.Traversal.StrategyDepth)
	}
	if h.Coordinator.EpochSize <= 0 {
		return fmt.Errorf("%w: epoch_size=%d", ErrInvalidEpochSize, h.Coordinator.EpochSize)
	}
	if h.Coordinator.WeightTableSize <= 0 {
		return fmt.Errorf("%w: weight_table_size=%d", ErrInvalidWeightTable, h.Coordinator.WeightTableSize)
	}
	if h.Coordinator.WeightDecayFactor <= 0 || h.Coordinator.WeightDecayFactor > 1 {
		return fmt.Errorf("%w: weight_decay_factor=%v", ErrInvalidDecayFactor, h.Coordinator.WeightDecayFactor)
	}
	if h.Coordinator.MaxWeight <= 0 {
		return fmt.Errorf("%w: max_weight=%v", ErrInvalidMaxWeight, h.Coordinator.MaxWeight)
	}
	if h.Coordinator.CoverageFloor < 0 || h.Coordinator.CoverageFloor > 1 {
		return fmt.Errorf("%w: coverage_floor=%v", ErrInvalidCoverageFloor, h.Coordinator.CoverageFloor)
	}
	if h.Solver.MaxSubspaceDepth <= 0 {
		return fmt.Errorf("%w: max_subspace_depth=%d", ErrInvalidSubspaceDepth, h.Solver.MaxSubspaceDepth)
	}
	return nil
}
