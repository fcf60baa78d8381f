// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"errors"

	"github.com/luxfi/amm/fixedpoint"
)

// Kind classifies a failure so callers can tell a bad request from a pool
// that is unsafe in its current state.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindLookup: unknown pool or hook type, missing hook state, token not
	// in pool.
	KindLookup
	// KindCallerError: the request is invalid for this pool.
	KindCallerError
	// KindPoolUnsafe: the curve rejects the resulting state.
	KindPoolUnsafe
	// KindHookVeto: a hook callback reported failure.
	KindHookVeto
	// KindUnsupported: the operation is not available for this pool.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindLookup:
		return "lookup"
	case KindCallerError:
		return "caller error"
	case KindPoolUnsafe:
		return "pool unsafe"
	case KindHookVeto:
		return "hook veto"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Error is a classified domain failure. Sentinels of this type are
// compared by identity with errors.Is.
type Error struct {
	Kind   Kind
	Reason string
}

// NewError returns a classified error.
func NewError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func (e *Error) Error() string {
	return e.Reason
}

// KindOf returns the classification of err. Arithmetic failures from
// fixedpoint count as pool unsafe.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, fixedpoint.ErrMathOverflow) || errors.Is(err, fixedpoint.ErrZeroDivision) {
		return KindPoolUnsafe
	}
	return KindUnknown
}

var (
	ErrInvalidTokenIndex = NewError(KindCallerError, "invalid token index")
	ErrSameToken         = NewError(KindCallerError, "token in and token out are the same")
	ErrInvalidPoolState  = NewError(KindCallerError, "invalid pool state")
	ErrInvalidAmount     = NewError(KindCallerError, "invalid amount")
	ErrTokenNotFound     = NewError(KindLookup, "token not found in pool")
)
