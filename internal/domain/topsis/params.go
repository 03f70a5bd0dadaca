package topsis

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const listSeparator = ","

// ParseWeights parses a comma separated list of positive numbers, e.g. "1,1,2".
func ParseWeights(s string) ([]float64, error) {
	tokens, err := splitList(s, "weights")
	if err != nil {
		return nil, err
	}
	weights := make([]float64, len(tokens))
	for i, tok := range tokens {
		w, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: weight %d %q is not a number", ErrMalformedInput, i+1, tok)
		}
		if w <= 0 {
			return nil, fmt.Errorf("%w: weight %d must be positive, got %v", ErrMalformedInput, i+1, w)
		}
		weights[i] = w
	}
	return weights, nil
}

// ParseImpacts parses a comma separated list of "+" (benefit) and "-" (cost).
func ParseImpacts(s string) ([]Impact, error) {
	tokens, err := splitList(s, "impacts")
	if err != nil {
		return nil, err
	}
	impacts := make([]Impact, len(tokens))
	for i, tok := range tokens {
		switch tok {
		case "+":
			impacts[i] = Benefit
		case "-":
			impacts[i] = Cost
		default:
			return nil, fmt.Errorf("%w: impact %d %q must be + or -", ErrMalformedInput, i+1, tok)
		}
	}
	return impacts, nil
}

func splitList(s, what string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("%w: %s list is empty", ErrMalformedInput, what)
	}
	tokens := strings.Split(s, listSeparator)
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	return tokens, nil
}
