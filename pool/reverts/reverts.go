// Copyright (c) 2026 The Liquefy developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind is the machine-readable class of a revert.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindValidation     Kind = "validation"
	KindCapacity       Kind = "capacity"
	KindState          Kind = "state"
	KindOperational    Kind = "operational"
)

// ErrRevert aborts an operation with no state mutation. It carries a
// machine-readable kind plus a human-readable reason string.
type ErrRevert struct {
	kind   Kind
	reason string
}

func New(kind Kind, reason string) *ErrRevert {
	return &ErrRevert{
		kind:   kind,
		reason: reason,
	}
}

func (e *ErrRevert) Error() string {
	return e.reason
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// IsRevert reports whether err is (or wraps) a revert.
func IsRevert(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the revert kind of err, if it is a revert.
func KindOf(err error) (Kind, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind, true
	}
	return "", false
}

// Canonical failure conditions of the pool surface.
var (
	ErrAuthenticationFailed = New(KindAuthentication, "authentication failed")
	ErrActionPaused         = New(KindState, "action paused")
	ErrInvalidStakeAmount   = New(KindValidation, "invalid stake amount")
	ErrDepositCapExceeded   = New(KindCapacity, "deposit cap exceeded")
	ErrInsufficientBalance  = New(KindCapacity, "insufficient share balance")
	ErrInvalidInput         = New(KindValidation, "invalid input")
	ErrInvalidRescueAmount  = New(KindValidation, "invalid rescue amount: nothing to rescue")
	ErrRepriceOutOfBand     = New(KindOperational, "reprice failed: rate outside deviation band")
)
