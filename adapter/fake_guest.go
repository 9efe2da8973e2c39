package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/ajhcs/beacon/model"
)

// ExportFunc is one in-process guest export. Guest-side state mutation
// is modeled by closures capturing a *FakeGuest's internal map (see
// Internal), so tests can exercise effect/observer interaction without
// an isolation host.
type ExportFunc func(state map[string]model.Value, args []model.Value) (Response, error)

// FakeGuest is the in-process reference Guest implementation used by
// every test in this repo, since the isolation host itself is out of
// scope (§1). It snapshots/restores by deep-copying its internal state
// map, the simplest correct implementation of the paired snapshot
// contract for a guest with no real external process to fork.
type FakeGuest struct {
	mu        sync.Mutex
	exports   map[string]ExportFunc
	signature map[string]Signature
	state     map[string]model.Value
	snapshots map[GuestSnapshotID]map[string]model.Value
	seq       uint64
}

// NewFakeGuest returns an empty FakeGuest with no registered exports.
func NewFakeGuest() *FakeGuest {
	return &FakeGuest{
		exports:   map[string]ExportFunc{},
		signature: map[string]Signature{},
		state:     map[string]model.Value{},
		snapshots: map[GuestSnapshotID]map[string]model.Value{},
	}
}

// Register adds export under name with the given declared signature.
func (g *FakeGuest) Register(name string, sig Signature, fn ExportFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.exports[name] = fn
	g.signature[name] = sig
}

func (g *FakeGuest) Exports() map[string]Signature {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]Signature, len(g.signature))
	for k, v := range g.signature {
		out[k] = v
	}
	return out
}

func (g *FakeGuest) Call(_ context.Context, export string, args []model.Value, _ uint64) (Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn, ok := g.exports[export]
	if !ok {
		return Response{}, fmt.Errorf("%w: %q", ErrMissingExport, export)
	}
	return fn(g.state, args)
}

func (g *FakeGuest) Snapshot(_ context.Context) (GuestSnapshotID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	id := GuestSnapshotID(fmt.Sprintf("fake-snap-%d", g.seq))
	copied := make(map[string]model.Value, len(g.state))
	for k, v := range g.state {
		copied[k] = v
	}
	g.snapshots[id] = copied
	return id, nil
}

func (g *FakeGuest) Restore(_ context.Context, id GuestSnapshotID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	snap, ok := g.snapshots[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSnapshotUnsupported, id)
	}
	restored := make(map[string]model.Value, len(snap))
	for k, v := range snap {
		restored[k] = v
	}
	g.state = restored
	return nil
}
