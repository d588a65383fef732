package ir

import (
	"errors"

	"anvil/diag"
	"anvil/types"
)

// Classify maps a construction error to its diagnostic code. Unrecognized
// errors map to UnknownCode.
func Classify(err error) diag.Code {
	switch {
	case errors.Is(err, types.ErrInvalidTypeSpec):
		return diag.TypeInvalidSpec
	case errors.Is(err, ErrTypeMismatch):
		return diag.BuildTypeMismatch
	case errors.Is(err, ErrDuplicateSymbol):
		return diag.BuildDuplicateSymbol
	case errors.Is(err, ErrUseAfterDispose):
		return diag.BuildUseAfterDispose
	case errors.Is(err, ErrIllTypedOperation):
		return diag.BuildIllTypedOperation
	case errors.Is(err, ErrInvalidInsertionPoint):
		return diag.BuildInvalidInsertionPoint
	case errors.Is(err, ErrCrossContext):
		return diag.BuildCrossContext
	default:
		return diag.UnknownCode
	}
}

// Collect appends a construction failure to bag as an error diagnostic and
// reports whether err was non-nil. Frontends that keep lowering past the
// first failure use it to accumulate builder errors the same way verifier
// findings accumulate.
func Collect(bag *diag.Bag, loc diag.Loc, err error) bool {
	if err == nil {
		return false
	}
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     Classify(err),
		Message:  err.Error(),
		Primary:  loc,
	})
	return true
}
