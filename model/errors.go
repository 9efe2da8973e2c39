package model

import "errors"

// Sentinel errors for the model kernel (C3).
var (
	ErrUnknownInstance  = errors.New("unknown instance")
	ErrUnknownEntity    = errors.New("unknown entity type")
	ErrUnknownSnapshot  = errors.New("unknown snapshot id")
	ErrUnboundVariable  = errors.New("unbound variable in frame")
	ErrReservedName     = errors.New("reserved name cannot be rebound")
	ErrWrongValueType   = errors.New("value does not match field type")
	ErrUnknownFunction  = errors.New("function not registered with kernel")
	ErrObserverRequired = errors.New("observer function requires a guest callback")
)
