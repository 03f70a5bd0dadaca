// Package service runs one scoring job: read a table, score it, write the
// result. It is the only place that ties the domain to I/O, logging and
// metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/topsis/internal/adapters/table"
	"github.com/okian/topsis/internal/domain/topsis"
	"github.com/okian/topsis/internal/domain/types"
	"github.com/okian/topsis/pkg/logger"
	"github.com/okian/topsis/pkg/metrics"
)

// Scorer is the scoring dependency of the Service.
type Scorer interface {
	Score(t *topsis.Table, weights []float64, impacts []topsis.Impact) (*topsis.ScoredTable, error)
}

// Request describes one run. Weights and Impacts are the raw comma separated
// arguments, e.g. "1,1,2" and "+,-,+".
type Request struct {
	Input   string
	Weights string
	Impacts string
	Output  string
}

// Report summarises a successful run.
type Report struct {
	RunID    string
	Output   string
	Rows     int
	Criteria int
	Duration time.Duration
	// Ranking is ordered from best to worst.
	Ranking []types.Entry
}

// Service runs scoring jobs.
type Service struct {
	scorer  Scorer
	metrics *metrics.Manager
	logger  logger.Logger
	now     func() time.Time
	newID   func() string

	tableOpts []table.Option
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScorer replaces the default scorer.
func WithScorer(sc Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithMetrics sets the metrics manager. Defaults to metrics.Default().
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTableOptions sets the reader and writer options, e.g. delimiter and
// column names.
func WithTableOptions(opts ...table.Option) Option {
	return func(s *Service) {
		s.tableOpts = append(s.tableOpts, opts...)
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		scorer:  topsis.NewScorer(),
		metrics: metrics.Default(),
		logger:  logger.Nop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes req. On any error no output file is written.
func (s *Service) Run(ctx context.Context, req Request) (Report, error) {
	runID := s.newID()
	log := s.logger.With(logger.String("run_id", runID))
	start := s.now()
	s.metrics.RecordRun()
	defer func() {
		s.metrics.ObserveDuration(s.now().Sub(start).Seconds())
	}()

	log.Debug(ctx, "run started",
		logger.String("input", req.Input),
		logger.String("output", req.Output),
		logger.String("weights", req.Weights),
		logger.String("impacts", req.Impacts),
	)

	report, err := s.run(ctx, log, req)
	if err != nil {
		kind := failureKind(err)
		s.metrics.RecordFailure(kind)
		log.Error(ctx, "run failed", logger.String("kind", kind), logger.Error(err))
		return Report{}, err
	}

	report.RunID = runID
	report.Duration = s.now().Sub(start)
	best := 0.0
	if len(report.Ranking) > 0 {
		best = report.Ranking[0].Score
	}
	s.metrics.RecordSuccess(report.Rows, report.Criteria, tiedRows(report.Ranking), best, float64(s.now().Unix()))
	log.Info(ctx, "run finished",
		logger.String("output", report.Output),
		logger.Int("rows", report.Rows),
		logger.Int("criteria", report.Criteria),
		logger.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *Service) run(ctx context.Context, log logger.Logger, req Request) (Report, error) {
	weights, err := topsis.ParseWeights(req.Weights)
	if err != nil {
		return Report{}, err
	}
	impacts, err := topsis.ParseImpacts(req.Impacts)
	if err != nil {
		return Report{}, err
	}

	tbl, err := table.Read(ctx, req.Input, s.tableOpts...)
	if err != nil {
		return Report{}, err
	}
	log.Debug(ctx, "table loaded", logger.Int("rows", tbl.Len()), logger.Any("criteria", tbl.Criteria))

	scored, err := s.scorer.Score(tbl, weights, impacts)
	if err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	if err := table.Write(ctx, req.Output, scored, s.tableOpts...); err != nil {
		return Report{}, fmt.Errorf("write %s: %w", req.Output, err)
	}

	return Report{
		Output:   req.Output,
		Rows:     tbl.Len(),
		Criteria: len(tbl.Criteria),
		Ranking:  scored.Entries(),
	}, nil
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, topsis.ErrDimensionMismatch):
		return metrics.KindDimensionMismatch
	case errors.Is(err, topsis.ErrDivisionByZero):
		return metrics.KindDivisionByZero
	case errors.Is(err, topsis.ErrMalformedInput), errors.Is(err, topsis.ErrEmptyTable):
		return metrics.KindMalformedInput
	case errors.Is(err, table.ErrOpen), errors.Is(err, table.ErrWrite):
		return metrics.KindIO
	default:
		return metrics.KindOther
	}
}

// tiedRows counts entries whose rank is shared with at least one other entry.
// ranking must be ordered by rank.
func tiedRows(ranking []types.Entry) int {
	n := 0
	for i := range ranking {
		if (i > 0 && ranking[i-1].Rank == ranking[i].Rank) ||
			(i+1 < len(ranking) && ranking[i+1].Rank == ranking[i].Rank) {
			n++
		}
	}
	return n
}
