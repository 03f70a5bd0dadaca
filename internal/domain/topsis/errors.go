package topsis

import "errors"

// Sentinel error kinds for scoring. Callers match them with errors.Is.
var (
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrMalformedInput    = errors.New("malformed input")
	ErrEmptyTable        = errors.New("empty table")
)
