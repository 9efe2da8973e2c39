package adapter

import (
	"context"
	"fmt"

	"github.com/ajhcs/beacon/logging"
	"github.com/ajhcs/beacon/model"
	"github.com/ajhcs/beacon/spec"
	"go.uber.org/zap"
)

// PairedSnapshotID atomically identifies a model+guest snapshot pair
// (§4.4: "neither is snapshot-observable without the other").
type PairedSnapshotID struct {
	Model model.SnapshotID
	Guest GuestSnapshotID
}

// Adapter translates abstract actions into guest calls and keeps the
// model kernel's state in lockstep with the guest's (C4).
type Adapter struct {
	Kernel      *model.Kernel
	Guest       Guest
	Descriptors map[string]CallDescriptor
	FuelBudget  uint64
	log         logging.Logger
}

// New builds an Adapter over ir and guest, verifying at construction
// time that guest exports every binding with a compatible signature
// (§4.4: "missing or mismatched exports are fatal").
func New(ir *spec.CompiledIR, kernel *model.Kernel, guest Guest, fuelBudget uint64, log logging.Logger) (*Adapter, error) {
	if log == nil {
		log = logging.NewNop()
	}
	descriptors := BuildDescriptors(ir)
	if err := VerifyExports(guest, descriptors); err != nil {
		return nil, fmt.Errorf("adapter: load-time export verification failed: %w", err)
	}
	log.Info("adapter ready", zap.Int("actions", len(descriptors)))
	return &Adapter{Kernel: kernel, Guest: guest, Descriptors: descriptors, FuelBudget: fuelBudget, log: log}, nil
}

// CallAction serializes input, invokes the guest under the adapter's
// fuel budget, and applies the resulting effect to the model kernel
// (§4.4, §4.6 "call the adapter, apply the effect, check invariants").
func (a *Adapter) CallAction(ctx context.Context, action string, actorID model.InstanceID, input []model.Value, epoch int) (model.StepResult, error) {
	desc, ok := a.Descriptors[action]
	if !ok {
		return model.StepResult{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	resp, err := a.Guest.Call(ctx, desc.Export, input, a.FuelBudget)
	if err != nil {
		a.log.Warn("guest call failed", zap.String("action", action), zap.Error(err))
		return a.Kernel.ApplyAction(action, actorID, input, model.Value{}, false, false, true, epoch)
	}

	aborted := resp.Trap != "" || resp.OutOfFuel
	if aborted {
		a.log.Info("action aborted", zap.String("action", action), zap.String("trap", resp.Trap), zap.Bool("outOfFuel", resp.OutOfFuel))
	}
	return a.Kernel.ApplyAction(action, actorID, input, resp.Value, resp.Trap != "", resp.OutOfFuel, aborted, epoch)
}

// Snapshot atomically captures both the model and the guest.
func (a *Adapter) Snapshot(ctx context.Context) (PairedSnapshotID, error) {
	gs, err := a.Guest.Snapshot(ctx)
	if err != nil {
		return PairedSnapshotID{}, fmt.Errorf("adapter: guest snapshot: %w", err)
	}
	ms := a.Kernel.Snapshots.Snapshot(a.Kernel.State)
	return PairedSnapshotID{Model: ms, Guest: gs}, nil
}

// Restore atomically resets both the model and the guest to a
// previously captured pair.
func (a *Adapter) Restore(ctx context.Context, id PairedSnapshotID) error {
	if err := a.Guest.Restore(ctx, id.Guest); err != nil {
		return fmt.Errorf("adapter: guest restore: %w", err)
	}
	if err := a.Kernel.Rollback(id.Model); err != nil {
		return fmt.Errorf("adapter: model rollback: %w", err)
	}
	return nil
}
