package topsis

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/okian/topsis/internal/domain/types"
)

// Impact is the direction of a criterion.
type Impact int8

const (
	// Cost criteria prefer lower raw values.
	Cost Impact = -1
	// Benefit criteria prefer higher raw values.
	Benefit Impact = 1
)

// Sign returns +1 for Benefit and -1 for Cost.
func (i Impact) Sign() float64 {
	if i == Cost {
		return -1
	}
	return 1
}

func (i Impact) String() string {
	if i == Cost {
		return "-"
	}
	return "+"
}

// Row is a single alternative.
type Row struct {
	Label  string
	Values []float64
	// Cells holds the textual form of Values as read from the source, echoed
	// back unchanged on write.
	Cells []string
}

// Table is an ordered set of alternatives scored on named criteria.
type Table struct {
	LabelHeader string
	Criteria    []string
	Rows        []Row
}

// NewTable creates an empty table with the given header.
func NewTable(labelHeader string, criteria ...string) *Table {
	return &Table{
		LabelHeader: labelHeader,
		Criteria:    append([]string(nil), criteria...),
	}
}

// AddRow appends an alternative. values must have one entry per criterion.
func (t *Table) AddRow(label string, values ...float64) error {
	if len(values) != len(t.Criteria) {
		return fmt.Errorf("%w: row %q has %d values, want %d", ErrMalformedInput, label, len(values), len(t.Criteria))
	}
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	t.Rows = append(t.Rows, Row{
		Label:  label,
		Values: append([]float64(nil), values...),
		Cells:  cells,
	})
	return nil
}

// Len returns the number of alternatives.
func (t *Table) Len() int { return len(t.Rows) }

// Validate checks the table shape.
func (t *Table) Validate() error {
	if t == nil || len(t.Rows) == 0 {
		return ErrEmptyTable
	}
	if len(t.Criteria) == 0 {
		return fmt.Errorf("%w: no criterion columns", ErrMalformedInput)
	}
	for i, r := range t.Rows {
		if len(r.Values) != len(t.Criteria) {
			return fmt.Errorf("%w: row %d (%q) has %d values, want %d", ErrMalformedInput, i+1, r.Label, len(r.Values), len(t.Criteria))
		}
	}
	return nil
}

// ScoredTable is a Table with the derived Score and Rank columns.
type ScoredTable struct {
	*Table

	Scores []float64
	// Ranks are 1-based; tied scores share the average of their positions.
	Ranks []float64

	IdealBest  []float64
	IdealWorst []float64
	DistBest   []float64
	DistWorst  []float64
}

// Entries returns the ranking ordered from best to worst. Ties keep input order.
func (s *ScoredTable) Entries() []types.Entry {
	out := make([]types.Entry, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = types.Entry{Rank: s.Ranks[i], Label: r.Label, Score: s.Scores[i]}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Rank < out[b].Rank })
	return out
}
