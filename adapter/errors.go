package adapter

import "errors"

// Sentinel errors for the verification adapter (C4).
var (
	ErrMissingExport       = errors.New("guest missing required export")
	ErrSignatureMismatch   = errors.New("guest export signature mismatch")
	ErrUnknownAction       = errors.New("action has no call descriptor")
	ErrFuelExhausted       = errors.New("guest call exhausted its fuel budget")
	ErrSnapshotUnsupported = errors.New("guest does not support snapshot/restore")
)
