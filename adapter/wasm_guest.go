package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ajhcs/beacon/model"
	"github.com/wasmerio/wasmer-go/wasmer"
)

// wireValue is the JSON wire shape passed across the wasm boundary,
// since wasmer-go exported functions here are invoked the same way the
// pack's wasm.Execute calls them: with a single []byte argument and a
// single []byte result, not typed wasm primitives per field.
type wireValue struct {
	Type model.ValueType `json:"type"`
	B    bool            `json:"b,omitempty"`
	I    int64           `json:"i,omitempty"`
	S    string          `json:"s,omitempty"`
	Ref  string          `json:"ref,omitempty"`
}

type wireResponse struct {
	Value     wireValue `json:"value"`
	Trap      string    `json:"trap,omitempty"`
	OutOfFuel bool      `json:"outOfFuel,omitempty"`
}

func toWire(v model.Value) wireValue {
	return wireValue{Type: v.Type, B: v.B, I: v.I, S: v.S, Ref: string(v.Ref)}
}

func fromWire(w wireValue) model.Value {
	return model.Value{Type: w.Type, B: w.B, I: w.I, S: w.S, Ref: model.InstanceID(w.Ref)}
}

// WasmGuest executes a WASM module's exports as the guest under test,
// grounded on the pack's wasm.Execute helper (engine → store → module →
// instance → Exports.GetFunction → call): one long-lived instance is
// created at Load time rather than one per call, since the adapter
// needs to call many different exports against the same guest state
// over a campaign's lifetime.
type WasmGuest struct {
	instance  *wasmer.Instance
	exports   map[string]Signature
	snapState map[GuestSnapshotID][]byte
	seq       uint64
}

// LoadWasmGuest compiles and instantiates wasmBytes, declaring exports
// with the given signatures (the wasm module itself carries no typed
// metadata the adapter can introspect for argument count/return type,
// so the caller supplies the expected shape alongside the binary).
func LoadWasmGuest(wasmBytes []byte, exports map[string]Signature) (*WasmGuest, error) {
	engine := wasmer.NewEngine()
	store := wasmer.NewStore(engine)
	module, err := wasmer.NewModule(store, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("adapter: compiling wasm module: %w", err)
	}
	instance, err := wasmer.NewInstance(module, wasmer.NewImportObject())
	if err != nil {
		return nil, fmt.Errorf("adapter: instantiating wasm module: %w", err)
	}
	for name := range exports {
		if _, err := instance.Exports.GetFunction(name); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMissingExport, name, err)
		}
	}
	return &WasmGuest{instance: instance, exports: exports, snapState: map[GuestSnapshotID][]byte{}}, nil
}

func (g *WasmGuest) Exports() map[string]Signature {
	out := make(map[string]Signature, len(g.exports))
	for k, v := range g.exports {
		out[k] = v
	}
	return out
}

func (g *WasmGuest) Call(_ context.Context, export string, args []model.Value, fuel uint64) (Response, error) {
	fn, err := g.instance.Exports.GetFunction(export)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %q", ErrMissingExport, export)
	}
	wire := make([]wireValue, len(args))
	for i, a := range args {
		wire[i] = toWire(a)
	}
	input, err := json.Marshal(struct {
		Args []wireValue `json:"args"`
		Fuel uint64      `json:"fuel"`
	}{Args: wire, Fuel: fuel})
	if err != nil {
		return Response{}, fmt.Errorf("adapter: encoding call input: %w", err)
	}
	raw, err := fn(input)
	if err != nil {
		return Response{}, fmt.Errorf("adapter: guest call %q trapped at the host boundary: %w", export, err)
	}
	out, ok := raw.([]byte)
	if !ok {
		return Response{}, fmt.Errorf("adapter: guest export %q did not return bytes", export)
	}
	var resp wireResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return Response{}, fmt.Errorf("adapter: decoding call output: %w", err)
	}
	return Response{Value: fromWire(resp.Value), Trap: resp.Trap, OutOfFuel: resp.OutOfFuel}, nil
}

func (g *WasmGuest) Snapshot(_ context.Context) (GuestSnapshotID, error) {
	fn, err := g.instance.Exports.GetFunction("__snapshot")
	if err != nil {
		return "", fmt.Errorf("%w: guest does not export __snapshot", ErrSnapshotUnsupported)
	}
	raw, err := fn()
	if err != nil {
		return "", fmt.Errorf("adapter: guest snapshot call: %w", err)
	}
	bytes, ok := raw.([]byte)
	if !ok {
		return "", fmt.Errorf("adapter: __snapshot did not return bytes")
	}
	g.seq++
	id := GuestSnapshotID(fmt.Sprintf("wasm-snap-%d", g.seq))
	g.snapState[id] = bytes
	return id, nil
}

func (g *WasmGuest) Restore(_ context.Context, id GuestSnapshotID) error {
	bytes, ok := g.snapState[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSnapshotUnsupported, id)
	}
	fn, err := g.instance.Exports.GetFunction("__restore")
	if err != nil {
		return fmt.Errorf("%w: guest does not export __restore", ErrSnapshotUnsupported)
	}
	_, err = fn(bytes)
	if err != nil {
		return fmt.Errorf("adapter: guest restore call: %w", err)
	}
	return nil
}
