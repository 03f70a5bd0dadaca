// Package table reads and writes delimited score tables.
package table

// Default column names and formatting.
const (
	DefaultDelimiter   = ','
	DefaultScoreColumn = "Score"
	DefaultRankColumn  = "Rank"
	DefaultPrecision   = -1
)

type settings struct {
	delimiter   rune
	scoreColumn string
	rankColumn  string
	precision   int
}

func newSettings(opts []Option) settings {
	s := settings{
		delimiter:   DefaultDelimiter,
		scoreColumn: DefaultScoreColumn,
		rankColumn:  DefaultRankColumn,
		precision:   DefaultPrecision,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures reading or writing.
type Option func(*settings)

// WithDelimiter sets the field separator, e.g. ';' or '\t'.
func WithDelimiter(d rune) Option {
	return func(s *settings) {
		if d != 0 {
			s.delimiter = d
		}
	}
}

// WithColumnNames sets the header names of the derived columns.
func WithColumnNames(score, rank string) Option {
	return func(s *settings) {
		if score != "" {
			s.scoreColumn = score
		}
		if rank != "" {
			s.rankColumn = rank
		}
	}
}

// WithPrecision sets the number of decimals written for scores.
// A negative value uses the shortest exact representation.
func WithPrecision(p int) Option {
	return func(s *settings) {
		s.precision = p
	}
}
