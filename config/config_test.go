package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultVerifies(t *testing.T) {
	require.NoError(t, Default().Verify())
}

func TestVerifyRejectsBadFields(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Host)
		wantErr error
	}{
		{"worker count", func(h *Host) { h.Traversal.WorkerCount = 0 }, ErrInvalidWorkerCount},
		{"strategy depth", func(h *Host) { h.Traversal.StrategyDepth = -1 }, ErrInvalidStrategyDepth},
		{"epoch size", func(h *Host) { h.Coordinator.EpochSize = 0 }, ErrInvalidEpochSize},
		{"weight table", func(h *Host) { h.Coordinator.WeightTableSize = 0 }, ErrInvalidWeightTable},
		{"decay factor", func(h *Host) { h.Coordinator.WeightDecayFactor = 1.5 }, ErrInvalidDecayFactor},
		{"max weight", func(h *Host) { h.Coordinator.MaxWeight = 0 }, ErrInvalidMaxWeight},
		{"coverage floor", func(h *Host) { h.Coordinator.CoverageFloor = 1.1 }, ErrInvalidCoverageFloor},
		{"subspace depth", func(h *Host) { h.Solver.MaxSubspaceDepth = 0 }, ErrInvalidSubspaceDepth},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := Default()
			tc.mutate(&h)
			err := h.Verify()
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "harness.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[traversal]
worker_count = 8
strategy_depth = 8
max_loop_unwind = 64

[coordinator]
epoch_size = 512
signal_queue_capacity = 4096
weight_table_size = 65536
weight_decay_factor = 0.9
max_weight = 1000
coverage_floor = 0.0
plateau_beta = 3

[solver]
max_subspace_depth = 16
models_per_subspace = 4
parallel_subspaces = 2
`), 0o600))

	t.Setenv("HARNESS_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Traversal.WorkerCount)
	require.Equal(t, 512, cfg.Coordinator.EpochSize)
	require.Equal(t, "warn", cfg.LogLevel, "env var must override file value")
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, Default().Traversal.WorkerCount, cfg.Traversal.WorkerCount)
}
