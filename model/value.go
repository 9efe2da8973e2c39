package model

import (
	"fmt"

	"github.com/ajhcs/beacon/spec"
)

// InstanceID is an opaque entity-instance identifier (§3 "model state").
// Instances are created only by effects and never destroyed within a run.
type InstanceID string

// Value is a runtime field or expression value, tagged with the
// ValueType it was produced as so eval can type-check without a
// separate pass.
type Value struct {
	Type ValueType
	B    bool
	I    int64
	S    string
	Ref  InstanceID
}

// ValueType mirrors spec.ValueType at runtime; kept as a distinct type
// so the model package does not leak compile-time AST types into its
// public Value surface.
type ValueType = spec.ValueType

const (
	TBool   = spec.TBool
	TInt    = spec.TInt
	TString = spec.TString
	TRef    = spec.TRef
)

func BoolValue(b bool) Value     { return Value{Type: TBool, B: b} }
func IntValue(i int64) Value     { return Value{Type: TInt, I: i} }
func StringValue(s string) Value { return Value{Type: TString, S: s} }
func RefValue(id InstanceID) Value { return Value{Type: TRef, Ref: id} }

// Equal compares two values of the same type. Comparing values of
// different types always reports false rather than panicking, since a
// well-typed expression never compares across types (the compiler
// rejects that at OpEq/OpNeq compile time).
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TBool:
		return v.B == other.B
	case TInt:
		return v.I == other.I
	case TString:
		return v.S == other.S
	case TRef:
		return v.Ref == other.Ref
	default:
		return false
	}
}

// Compare orders two int values; it panics if either is not TInt, since
// ordering comparisons are only legal on ints post type-check.
func (v Value) Compare(other Value) int {
	if v.Type != TInt || other.Type != TInt {
		panic(fmt.Sprintf("model: Compare called on non-int values %s/%s", v.Type, other.Type))
	}
	switch {
	case v.I < other.I:
		return -1
	case v.I > other.I:
		return 1
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.Type {
	case TBool:
		return fmt.Sprintf("%t", v.B)
	case TInt:
		return fmt.Sprintf("%d", v.I)
	case TString:
		return v.S
	case TRef:
		return string(v.Ref)
	default:
		return "<invalid>"
	}
}
