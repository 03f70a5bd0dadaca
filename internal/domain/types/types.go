// Package types contains common types used across the application
package types

import (
	"fmt"
	"strconv"
)

// Entry is one alternative's place in a ranking.
type Entry struct {
	Rank  float64 `json:"rank"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// String renders the entry as "rank. label (score)", e.g. "2.5. B (0.641729)".
func (e Entry) String() string {
	return fmt.Sprintf("%s. %s (%.6f)", strconv.FormatFloat(e.Rank, 'f', -1, 64), e.Label, e.Score)
}
