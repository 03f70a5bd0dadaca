package service_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/topsis/internal/adapters/table"
	service "github.com/okian/topsis/internal/app"
	"github.com/okian/topsis/internal/domain/topsis"
	"github.com/okian/topsis/pkg/logger"
	"github.com/okian/topsis/pkg/metrics"
)

const phones = "Model,Storage,Price\nM1,250,16\nM2,200,16\nM3,300,32\n"

const (
	runsHelp     = "# HELP topsis_runs_total Total number of scoring runs started\n# TYPE topsis_runs_total counter\n"
	failuresHelp = "# HELP topsis_run_failures_total Total number of failed scoring runs by failure kind\n# TYPE topsis_run_failures_total counter\n"
)

// failureExposition is the text format of a single failure counted under kind.
func failureExposition(kind string) string {
	return failuresHelp + "topsis_run_failures_total{kind=\"" + kind + "\"} 1\n"
}

type failingScorer struct{ err error }

func (f failingScorer) Score(*topsis.Table, []float64, []topsis.Impact) (*topsis.ScoredTable, error) {
	return nil, f.err
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
		})
	})
}

func TestService_Run(t *testing.T) {
	Convey("Given a service with a private metrics registry", t, func() {
		dir := t.TempDir()
		input := filepath.Join(dir, "in.csv")
		So(os.WriteFile(input, []byte(phones), 0o600), ShouldBeNil)
		output := filepath.Join(dir, "out.csv")

		var logs bytes.Buffer
		So(logger.Init(logger.WithOutput(&logs)), ShouldBeNil)
		m := metrics.NewManager()
		svc := service.New(
			service.WithLogger(logger.Get()),
			service.WithMetrics(m),
			service.WithTableOptions(table.WithPrecision(6)),
		)
		ctx := context.Background()

		Convey("When the request is valid", func() {
			report, err := svc.Run(ctx, service.Request{Input: input, Weights: "1,1", Impacts: "+,-", Output: output})

			Convey("Then the output table is written with score and rank", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(output)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldEqual, "Model,Storage,Price,Score,Rank\n"+
					"M1,250,16,0.788105,1\n"+
					"M2,200,16,0.641729,2\n"+
					"M3,300,32,0.358271,3\n")
			})

			Convey("And the report describes the run", func() {
				So(err, ShouldBeNil)
				So(report.RunID, ShouldNotBeEmpty)
				So(report.Output, ShouldEqual, output)
				So(report.Rows, ShouldEqual, 3)
				So(report.Criteria, ShouldEqual, 2)
				So(report.Ranking[0].Label, ShouldEqual, "M1")
				So(report.Ranking[2].Label, ShouldEqual, "M3")
			})

			Convey("And the run is counted and logged with its id", func() {
				So(testutil.GatherAndCompare(m.Registry(), strings.NewReader(runsHelp+"topsis_runs_total 1\n"), "topsis_runs_total"), ShouldBeNil)
				So(logs.String(), ShouldContainSubstring, "run_id="+report.RunID)
				So(logs.String(), ShouldContainSubstring, "run finished")
			})
		})

		Convey("When the weights do not match the criteria", func() {
			_, err := svc.Run(ctx, service.Request{Input: input, Weights: "1,1,1", Impacts: "+,-,+", Output: output})

			Convey("Then it fails with a dimension mismatch and writes nothing", func() {
				So(errors.Is(err, topsis.ErrDimensionMismatch), ShouldBeTrue)
				_, statErr := os.Stat(output)
				So(errors.Is(statErr, os.ErrNotExist), ShouldBeTrue)
				So(testutil.GatherAndCompare(m.Registry(), strings.NewReader(failureExposition(metrics.KindDimensionMismatch)), "topsis_run_failures_total"), ShouldBeNil)
			})
		})

		Convey("When the impacts are unparsable", func() {
			_, err := svc.Run(ctx, service.Request{Input: input, Weights: "1,1", Impacts: "+,?", Output: output})

			Convey("Then it fails as malformed input before reading the table", func() {
				So(errors.Is(err, topsis.ErrMalformedInput), ShouldBeTrue)
				So(testutil.GatherAndCompare(m.Registry(), strings.NewReader(failureExposition(metrics.KindMalformedInput)), "topsis_run_failures_total"), ShouldBeNil)
				_, statErr := os.Stat(output)
				So(errors.Is(statErr, os.ErrNotExist), ShouldBeTrue)
			})
		})

		Convey("When the input file is missing", func() {
			_, err := svc.Run(ctx, service.Request{Input: filepath.Join(dir, "nope.csv"), Weights: "1,1", Impacts: "+,-", Output: output})

			Convey("Then it fails as an I/O error", func() {
				So(errors.Is(err, table.ErrOpen), ShouldBeTrue)
				So(testutil.GatherAndCompare(m.Registry(), strings.NewReader(failureExposition(metrics.KindIO)), "topsis_run_failures_total"), ShouldBeNil)
			})
		})

		Convey("When the scorer fails on division by zero", func() {
			failing := service.New(
				service.WithMetrics(m),
				service.WithScorer(failingScorer{err: topsis.ErrDivisionByZero}),
			)
			_, err := failing.Run(ctx, service.Request{Input: input, Weights: "1,1", Impacts: "+,-", Output: output})

			Convey("Then the error is returned and classified", func() {
				So(errors.Is(err, topsis.ErrDivisionByZero), ShouldBeTrue)
				So(testutil.GatherAndCompare(m.Registry(), strings.NewReader(failureExposition(metrics.KindDivisionByZero)), "topsis_run_failures_total"), ShouldBeNil)
			})
		})

		Convey("When two rows tie", func() {
			tied := filepath.Join(dir, "tied.csv")
			So(os.WriteFile(tied, []byte("Name,A,B\nx,1,1\ny,1,1\nz,2,2\n"), 0o600), ShouldBeNil)
			report, err := svc.Run(ctx, service.Request{Input: tied, Weights: "1,1", Impacts: "+,+", Output: output})

			Convey("Then the tied rows share the average rank", func() {
				So(err, ShouldBeNil)
				So(report.Ranking[0].Label, ShouldEqual, "z")
				So(report.Ranking[1].Rank, ShouldEqual, 2.5)
				So(report.Ranking[2].Rank, ShouldEqual, 2.5)
				data, _ := os.ReadFile(output)
				So(strings.Contains(string(data), "x,1,1,0.000000,2.5"), ShouldBeTrue)
			})
		})
	})
}
