package adapter

import (
	"fmt"

	"github.com/ajhcs/beacon/model"
	"github.com/ajhcs/beacon/spec"
)

// CallDescriptor is the mapping from one abstract action name to its
// concrete guest call shape (§4.4: "exported name, argument order,
// return type, mutates flag, idempotent flag, read set, write set").
type CallDescriptor struct {
	Action     string
	Export     string
	ArgDomains []string
	ReturnType model.ValueType
	Mutates    bool
	Idempotent bool
	ReadSet    []string
	WriteSet   []string
	Tags       []string
}

// BuildDescriptors derives one CallDescriptor per action binding in ir.
func BuildDescriptors(ir *spec.CompiledIR) map[string]CallDescriptor {
	out := make(map[string]CallDescriptor, len(ir.Bindings))
	for action, b := range ir.Bindings {
		returnType := model.TBool
		if b.ReturnType != "" {
			returnType = spec.ValueTypeOf(spec.FieldKind(b.ReturnType))
		}
		out[action] = CallDescriptor{
			Action:     action,
			Export:     b.Export,
			ArgDomains: b.Args,
			ReturnType: returnType,
			Mutates:    b.Mutates,
			Idempotent: b.Idempotent,
			ReadSet:    b.ReadSet,
			WriteSet:   b.WriteSet,
			Tags:       b.Tags,
		}
	}
	return out
}

// VerifyExports checks that guest implements every descriptor's export
// with a compatible signature, collecting every mismatch instead of
// stopping at the first (mirroring spec.CompileErrors' accumulation
// discipline for a load-time check with the same "never stop at the
// first problem" spirit).
func VerifyExports(guest Guest, descriptors map[string]CallDescriptor) error {
	exports := guest.Exports()
	var errs []error
	for action, d := range descriptors {
		sig, ok := exports[d.Export]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: action %q wants export %q", ErrMissingExport, action, d.Export))
			continue
		}
		if sig.ArgCount != len(d.ArgDomains) {
			errs = append(errs, fmt.Errorf("%w: export %q wants %d args, guest declares %d", ErrSignatureMismatch, d.Export, len(d.ArgDomains), sig.ArgCount))
		}
		if sig.ReturnType != d.ReturnType {
			errs = append(errs, fmt.Errorf("%w: export %q return type %s != declared %s", ErrSignatureMismatch, d.Export, sig.ReturnType, d.ReturnType))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	joined := errs[0]
	for _, e := range errs[1:] {
		joined = fmt.Errorf("%w; %w", joined, e)
	}
	return joined
}
