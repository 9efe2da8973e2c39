package solver

import (
	"fmt"
	"math/bits"

	"github.com/ajhcs/beacon/model"
	"github.com/ajhcs/beacon/spec"
)

// DomainEncoding is the boolean-variable encoding of one input domain
// (§4.5 "Domain encoding"). Exactly one of Bool/EnumLits/IntBits is
// populated, selected by Kind. The encoding is round-trippable: Decode
// maps any satisfying assignment back to exactly one concrete value.
type DomainEncoding struct {
	Kind InputDomainKind

	Bool Lit // DomainBool

	Values   []string     // DomainEnum, in declaration order
	EnumLits map[string]Lit

	Min, Max int64 // DomainInt
	IntBits  []Lit // little-endian bits of (value - Min)
}

// InputDomainKind re-exports spec.InputDomainKind so callers need not
// import spec directly just to branch on it.
type InputDomainKind = spec.InputDomainKind

const (
	DomainBool = spec.DomainBool
	DomainEnum = spec.DomainEnum
	DomainInt  = spec.DomainInt
)

// intWidth returns the number of bits needed to represent every integer
// in [0, span] inclusive.
func intWidth(span int64) int {
	if span <= 0 {
		return 1
	}
	return bits.Len64(uint64(span))
}

// EncodeDomain allocates the boolean variables for one compiled input
// domain, asserts its shape constraints (one-hot for enums, range bound
// for bounded ints), and asserts its declared `constraints` predicates
// (each scoped to the domain's own pseudo-frame, so no other domain
// needs to be encoded first).
func EncodeDomain(f *Formula, d *spec.CompiledInputDomain) (*DomainEncoding, error) {
	enc := &DomainEncoding{Kind: d.Kind}
	switch d.Kind {
	case DomainBool:
		enc.Bool = f.NewVar()
	case DomainEnum:
		if len(d.Values) == 0 {
			return nil, fmt.Errorf("%w: enum domain has no values", ErrUnsupportedValue)
		}
		enc.Values = d.Values
		enc.EnumLits = make(map[string]Lit, len(d.Values))
		lits := make([]Lit, len(d.Values))
		for i, v := range d.Values {
			l := f.NewVar()
			enc.EnumLits[v] = l
			lits[i] = l
		}
		// at-least-one
		f.Assert(f.OrAll(lits))
		// at-most-one, pairwise
		for i := 0; i < len(lits); i++ {
			for j := i + 1; j < len(lits); j++ {
				f.AddClause(lits[i].Neg(), lits[j].Neg())
			}
		}
	case DomainInt:
		enc.Min, enc.Max = d.Min, d.Max
		span := d.Max - d.Min
		width := intWidth(span)
		enc.IntBits = make([]Lit, width)
		for i := range enc.IntBits {
			enc.IntBits[i] = f.NewVar()
		}
		// range assertion: biased value (0-based) <= span
		upper := constBits(f, span, width)
		gt, _ := compareBits(f, enc.IntBits, upper)
		f.Assert(f.Not(gt))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDomain, d.Kind)
	}
	for _, c := range d.Constraints {
		lit, err := encodeExpr(f, enc, c)
		if err != nil {
			return nil, fmt.Errorf("asserting declared constraint: %w", err)
		}
		f.Assert(lit)
	}
	return enc, nil
}

// EncodeDomains encodes every domain in inputs, keyed by name.
func EncodeDomains(f *Formula, inputs map[string]*spec.CompiledInputDomain) (map[string]*DomainEncoding, error) {
	out := make(map[string]*DomainEncoding, len(inputs))
	for name, d := range inputs {
		enc, err := EncodeDomain(f, d)
		if err != nil {
			return nil, fmt.Errorf("solver: domain %q: %w", name, err)
		}
		out[name] = enc
	}
	return out, nil
}

// constBits returns a fixed-width little-endian bit vector of literals
// hardwired to the bits of v (v must fit in width bits, unsigned).
func constBits(f *Formula, v int64, width int) []Lit {
	out := make([]Lit, width)
	for i := 0; i < width; i++ {
		if (v>>uint(i))&1 == 1 {
			out[i] = f.True
		} else {
			out[i] = f.True.Neg()
		}
	}
	return out
}

// compareBits returns (gt, eq): literals for "a > b" and "a == b" over
// two equal-width little-endian unsigned bit vectors, built by folding
// from the most significant bit down (§4.5 Tseitin CNF for variadic
// connectives — comparators are built the same way, one gate per bit).
func compareBits(f *Formula, a, b []Lit) (gt, eq Lit) {
	gt = f.True.Neg()
	eq = f.True
	for i := len(a) - 1; i >= 0; i-- {
		bitGT := f.And(a[i], b[i].Neg())
		bitEQ := f.Not(f.Xor(a[i], b[i]))
		gt = f.Or(gt, f.And(eq, bitGT))
		eq = f.And(eq, bitEQ)
	}
	return gt, eq
}

// Decode reads a satisfying Assignment back into a concrete model.Value
// for every domain in encs, producing one Vector.
func Decode(encs map[string]*DomainEncoding, assign Assignment) Vector {
	out := make(Vector, len(encs))
	for name, enc := range encs {
		out[name] = enc.decodeOne(assign)
	}
	return out
}

func (enc *DomainEncoding) decodeOne(assign Assignment) model.Value {
	switch enc.Kind {
	case DomainBool:
		return model.BoolValue(assign.True(enc.Bool))
	case DomainEnum:
		for _, v := range enc.Values {
			if assign.True(enc.EnumLits[v]) {
				return model.StringValue(v)
			}
		}
		return model.StringValue(enc.Values[0])
	case DomainInt:
		var biased int64
		for i, l := range enc.IntBits {
			if assign.True(l) {
				biased |= 1 << uint(i)
			}
		}
		return model.IntValue(enc.Min + biased)
	default:
		return model.Value{}
	}
}
