package model

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates engine errors so callers can show asset-specific
// messages.
type ErrorKind string

const (
	KindMissingAssetSelection     ErrorKind = "missing_asset_selection"
	KindMissingAmount             ErrorKind = "missing_amount"
	KindInvalidAmount             ErrorKind = "invalid_amount"
	KindEmptyOffer                ErrorKind = "empty_offer"
	KindDuplicateAssetAcrossSides ErrorKind = "duplicate_asset_across_sides"
	KindDuplicateNFTUsage         ErrorKind = "duplicate_nft_usage"
	KindInvalidNFTID              ErrorKind = "invalid_nft_id"
	KindUnknownAsset              ErrorKind = "unknown_asset"
	KindNoStandardWallet          ErrorKind = "no_standard_wallet"
	KindInsufficientTotalBalance  ErrorKind = "insufficient_total_balance"
	KindBalanceUnavailable        ErrorKind = "balance_unavailable"
	KindNFTDriverError            ErrorKind = "nft_driver_error"
)

// ErrorClass groups error kinds by who can fix them.
type ErrorClass string

const (
	ClassInput        ErrorClass = "input"
	ClassState        ErrorClass = "state"
	ClassCollaborator ErrorClass = "collaborator"
)

// Class returns the taxonomy group of the kind.
func (k ErrorKind) Class() ErrorClass {
	switch k {
	case KindInsufficientTotalBalance, KindBalanceUnavailable:
		return ClassState
	case KindNFTDriverError:
		return ClassCollaborator
	default:
		return ClassInput
	}
}

// Error is a typed engine error. Asset names the asset the error is about,
// when there is one.
type Error struct {
	Kind  ErrorKind
	Asset string
	err   error
}

// NewError builds an Error. format may contain a %w verb to wrap a cause.
func NewError(kind ErrorKind, asset string, format string, a ...any) *Error {
	return &Error{
		Kind:  kind,
		Asset: asset,
		err:   fmt.Errorf(format, a...),
	}
}

// Error returns the error string. Satisfies the error interface.
func (e *Error) Error() string {
	return e.err.Error()
}

// Unwrap returns the underlying wrapped error.
func (e *Error) Unwrap() error {
	return e.err
}

// Is matches another *Error of the same kind. A target without an asset
// matches any asset.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Asset == "" || t.Asset == e.Asset)
}

func sentinel(kind ErrorKind) *Error {
	return &Error{Kind: kind, err: errors.New(string(kind))}
}

// Sentinels for errors.Is.
var (
	ErrMissingAssetSelection     = sentinel(KindMissingAssetSelection)
	ErrMissingAmount             = sentinel(KindMissingAmount)
	ErrInvalidAmount             = sentinel(KindInvalidAmount)
	ErrEmptyOffer                = sentinel(KindEmptyOffer)
	ErrDuplicateAssetAcrossSides = sentinel(KindDuplicateAssetAcrossSides)
	ErrDuplicateNFTUsage         = sentinel(KindDuplicateNFTUsage)
	ErrInvalidNFTID              = sentinel(KindInvalidNFTID)
	ErrUnknownAsset              = sentinel(KindUnknownAsset)
	ErrNoStandardWallet          = sentinel(KindNoStandardWallet)
	ErrInsufficientTotalBalance  = sentinel(KindInsufficientTotalBalance)
	ErrBalanceUnavailable        = sentinel(KindBalanceUnavailable)
	ErrNFTDriverError            = sentinel(KindNFTDriverError)
)

// Errors flattens err (which may be an errors.Join tree) into its *Error
// leaves, in order.
func Errors(err error) []*Error {
	var out []*Error
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if me, ok := e.(*Error); ok {
			out = append(out, me)
			return
		}
		if j, ok := e.(interface{ Unwrap() []error }); ok {
			for _, c := range j.Unwrap() {
				walk(c)
			}
			return
		}
		walk(errors.Unwrap(e))
	}
	walk(err)
	return out
}
