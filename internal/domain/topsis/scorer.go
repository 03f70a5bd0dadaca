// Package topsis ranks alternatives with the Technique for Order Preference
// by Similarity to Ideal Solution.
//
// The pipeline is fixed: vector-normalize every criterion column, multiply it
// by its signed weight, take the per-column max and min as the ideal best and
// worst rows, measure each alternative's Euclidean distance to both, and score
// it as distWorst / (distBest + distWorst). Folding the impact sign into the
// weight means the ideals are always a plain max and min.
package topsis

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Scorer computes TOPSIS scores. It holds configuration only and is safe for
// concurrent use.
type Scorer struct {
	policy DivisionPolicy
}

// NewScorer creates a Scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{policy: DivisionZero}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the configured division-by-zero policy.
func (s *Scorer) Policy() DivisionPolicy { return s.policy }

// Score ranks the alternatives of t. weights and impacts must have one entry
// per criterion column, otherwise ErrDimensionMismatch is returned. t is not
// modified.
func (s *Scorer) Score(t *Table, weights []float64, impacts []Impact) (*ScoredTable, error) {
	if t == nil {
		return nil, ErrEmptyTable
	}
	cols := len(t.Criteria)
	if len(weights) != cols || len(impacts) != cols {
		return nil, fmt.Errorf("%w: got %d weights and %d impacts for %d criteria",
			ErrDimensionMismatch, len(weights), len(impacts), cols)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	rows := t.Len()
	m := mat.NewDense(rows, cols, nil)
	for i, r := range t.Rows {
		m.SetRow(i, r.Values)
	}

	best := make([]float64, cols)
	worst := make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, m)
		norm := floats.Norm(col, 2)
		if norm == 0 {
			if s.policy == DivisionError {
				return nil, fmt.Errorf("%w: criterion %q has zero norm", ErrDivisionByZero, t.Criteria[j])
			}
			// every value is already zero
		} else {
			floats.Scale(1/norm, col)
			floats.Scale(weights[j]*impacts[j].Sign(), col)
		}
		best[j] = floats.Max(col)
		worst[j] = floats.Min(col)
		m.SetCol(j, col)
	}

	distBest := make([]float64, rows)
	distWorst := make([]float64, rows)
	scores := make([]float64, rows)
	for i := 0; i < rows; i++ {
		row := m.RawRowView(i)
		distBest[i] = floats.Distance(row, best, 2)
		distWorst[i] = floats.Distance(row, worst, 2)

		denom := distBest[i] + distWorst[i]
		if denom == 0 {
			if s.policy == DivisionError {
				return nil, fmt.Errorf("%w: row %q coincides with both ideals", ErrDivisionByZero, t.Rows[i].Label)
			}
			continue
		}
		scores[i] = distWorst[i] / denom
	}

	return &ScoredTable{
		Table:      t,
		Scores:     scores,
		Ranks:      averageRanks(scores),
		IdealBest:  best,
		IdealWorst: worst,
		DistBest:   distBest,
		DistWorst:  distWorst,
	}, nil
}
