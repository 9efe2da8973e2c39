package adapter

import (
	"context"

	"github.com/ajhcs/beacon/model"
)

// GuestSnapshotID names a guest-side snapshot, opaque to the adapter.
type GuestSnapshotID string

// Signature is the exported shape of one guest function, used at load
// time to verify the guest implements every action binding it claims to
// (§4.4: "At load it verifies the guest exports every required name
// with a compatible signature; missing or mismatched exports are
// fatal").
type Signature struct {
	ArgCount   int
	ReturnType model.ValueType
}

// Response is the result of one guest call (§4.4 `Response = { value |
// trap | out-of-fuel }`). Exactly one of Trap/OutOfFuel is set on a
// non-value outcome; Value is the zero Value otherwise.
type Response struct {
	Value     model.Value
	Trap      string
	OutOfFuel bool
}

// Guest is the black-box callable the base spec treats as an external
// collaborator (§1: "the isolation host ... is out of scope"); this
// interface is the adapter's side of that boundary. Implementations are
// stepped, snapshotted, restored, and fuel-metered as described in §4.4
// and §6.
type Guest interface {
	// Exports reports every function the guest makes available, keyed by
	// export name, for load-time signature verification.
	Exports() map[string]Signature

	// Call invokes the named export with args under a fuel budget. A
	// guest-side trap or fuel exhaustion is reported via Response, not
	// as a Go error; a Go error indicates a transport/host failure
	// unrelated to the guest's own execution (e.g. the process died).
	Call(ctx context.Context, export string, args []model.Value, fuel uint64) (Response, error)

	// Snapshot captures the guest's current internal state.
	Snapshot(ctx context.Context) (GuestSnapshotID, error)

	// Restore resets the guest to a previously captured snapshot.
	Restore(ctx context.Context, id GuestSnapshotID) error
}
