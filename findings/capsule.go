package findings

import (
	"context"
	"fmt"

	"github.com/ajhcs/beacon/adapter"
	"github.com/ajhcs/beacon/coordinator"
)

// ReplayCapsule is the minimal state needed to deterministically
// re-issue the Terminal calls that led to a finding against a fresh
// model/adapter pair (§4.8 "Each finding embeds a replay capsule").
// Actor instance ids created along the way are not stored: model.State
// mints them deterministically from (entity type, creation order)
// (model.State.Create), so a fresh kernel replaying the same call
// sequence produces byte-identical ids without the capsule needing to
// carry them.
type ReplayCapsule struct {
	Steps []coordinator.ReplayStep
}

// Factory builds a fresh adapter (and its backing model kernel) for one
// replay run. The campaign package supplies this from the same
// CompiledIR and guest construction it uses for live traversal workers.
type Factory func() (*adapter.Adapter, error)

// Result reports whether a replay reproduced the finding it came from.
type Result struct {
	Reproduced bool
	Steps      int // steps actually executed before reproduction or exhaustion
}

// Replay deterministically re-runs capsule's steps on a single thread
// against a freshly built adapter and reports whether the final step
// still yields the same class of outcome the finding kind expects
// (§4.8 "verifies the finding reproduces, and fails the capsule if it
// does not — used to detect stale findings after a code change").
func Replay(ctx context.Context, capsule ReplayCapsule, kind Kind, property string, newAdapter Factory) (Result, error) {
	if len(capsule.Steps) == 0 {
		return Result{}, ErrEmptyCapsule
	}
	a, err := newAdapter()
	if err != nil {
		return Result{}, fmt.Errorf("findings: building replay adapter: %w", err)
	}

	for i, step := range capsule.Steps {
		result, err := a.CallAction(ctx, step.Action, step.ActorID, step.Input, 0)
		if err != nil {
			return Result{Steps: i + 1}, fmt.Errorf("findings: replaying step %d (%s): %w", i, step.Action, err)
		}
		isLast := i == len(capsule.Steps)-1
		if !isLast {
			continue
		}
		switch kind {
		case KindCrash:
			return Result{Reproduced: result.Entry.Trapped, Steps: i + 1}, nil
		case KindTimeout:
			return Result{Reproduced: result.Entry.OutOfFuel, Steps: i + 1}, nil
		case KindViolation, KindDiscrepancy:
			hit := false
			for _, v := range result.Violations {
				if v.Property == property {
					hit = true
					break
				}
			}
			return Result{Reproduced: hit, Steps: i + 1}, nil
		}
	}
	return Result{Steps: len(capsule.Steps)}, nil
}
