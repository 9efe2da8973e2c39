package solver

import "errors"

// Sentinel errors for the constraint solver pipeline (C5).
var (
	ErrUnsat             = errors.New("subspace is unsatisfiable")
	ErrUnknownDomain     = errors.New("unknown input domain")
	ErrUnsupportedValue  = errors.New("domain constraint value has no boolean encoding")
	ErrUnknownGenerator  = errors.New("unknown coverage generator kind")
	ErrBudgetExhausted   = errors.New("fracture budget exhausted before every subspace resolved")
)
