// Package harnessctx carries cross-cutting campaign state — logger,
// campaign metrics, and the RNG root seed — through traversal and
// coordinator calls, using a struct with accessor functions layered
// over context.Value rather than scattering package-level globals.
package harnessctx

import (
	"context"

	"github.com/ajhcs/beacon/logging"
	"github.com/ajhcs/beacon/metrics"
)

type key struct{}

// Harness is the per-campaign cross-cutting state a campaign run attaches
// to the context its traversal and coordinator goroutines run under.
type Harness struct {
	CampaignID string
	Log        logging.Logger
	Metrics    *metrics.Campaign
	RootSeed   uint64
}

// With returns a child context carrying h.
func With(ctx context.Context, h *Harness) context.Context {
	return context.WithValue(ctx, key{}, h)
}

// From extracts the Harness from ctx, or nil if none was set.
func From(ctx context.Context) *Harness {
	h, _ := ctx.Value(key{}).(*Harness)
	return h
}

// Logger returns ctx's logger, or a no-op logger if none was set.
func Logger(ctx context.Context) logging.Logger {
	if h := From(ctx); h != nil && h.Log != nil {
		return h.Log
	}
	return logging.NewNop()
}
