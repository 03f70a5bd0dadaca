package topsis

import (
	"fmt"
	"strings"
)

// DivisionPolicy decides what happens when a computation would divide by zero:
// a criterion column whose values are all zero, or a row whose distances to
// both ideals are zero (every row identical).
type DivisionPolicy string

const (
	// DivisionZero treats 0/0 as 0.
	DivisionZero DivisionPolicy = "zero"
	// DivisionError fails the run with ErrDivisionByZero.
	DivisionError DivisionPolicy = "error"
)

// ParseDivisionPolicy maps a config string to a DivisionPolicy.
func ParseDivisionPolicy(s string) (DivisionPolicy, error) {
	switch DivisionPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DivisionZero:
		return DivisionZero, nil
	case DivisionError:
		return DivisionError, nil
	default:
		return "", fmt.Errorf("unknown division policy %q", s)
	}
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithDivisionPolicy sets the division-by-zero policy. Unknown values are ignored.
func WithDivisionPolicy(p DivisionPolicy) Option {
	return func(s *Scorer) {
		if p == DivisionZero || p == DivisionError {
			s.policy = p
		}
	}
}
