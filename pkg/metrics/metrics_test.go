package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager()

			Convey("Then it gets its own registry", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Registry(), ShouldNotBeNil)
				So(manager.Registry(), ShouldNotEqual, GetRegistry())
			})
		})

		Convey("When creating two managers on separate registries", func() {
			Convey("Then registration does not collide", func() {
				So(func() {
					NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
					NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
				}, ShouldNotPanic)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{0.1, 1}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.RecordRun()

			Convey("Then metric names carry the namespace and subsystem", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_runs_total"], ShouldBeTrue)
			})
		})
	})
}

func TestManagerRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When runs and failures are recorded", func() {
			m.RecordRun()
			m.RecordRun()
			m.RecordFailure(KindDimensionMismatch)

			Convey("Then the counters reflect them", func() {
				So(testutil.ToFloat64(m.runs), ShouldEqual, 2.0)
				So(testutil.ToFloat64(m.failures.WithLabelValues(KindDimensionMismatch)), ShouldEqual, 1.0)
				So(testutil.ToFloat64(m.failures.WithLabelValues(KindIO)), ShouldEqual, 0.0)
			})
		})

		Convey("When a success is recorded", func() {
			m.RecordSuccess(3, 2, 0, 0.788, 1700000000)
			m.ObserveDuration(0.002)

			Convey("Then the gauges hold the run shape", func() {
				So(testutil.ToFloat64(m.rowsScored), ShouldEqual, 3.0)
				So(testutil.ToFloat64(m.criteria), ShouldEqual, 2.0)
				So(testutil.ToFloat64(m.bestScore), ShouldEqual, 0.788)
				So(testutil.ToFloat64(m.lastSuccess), ShouldEqual, 1700000000.0)
				So(testutil.CollectAndCount(m.runDuration), ShouldEqual, 1)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a manager with recorded runs", t, func() {
		m := NewManager()
		m.RecordRun()

		Convey("When exporting to a textfile", func() {
			path := filepath.Join(t.TempDir(), "topsis.prom")
			err := m.WriteTextfile(path)

			Convey("Then the file holds the exposition format", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "topsis_runs_total 1")
			})
		})

		Convey("When the target directory does not exist", func() {
			err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "topsis.prom"))

			Convey("Then it reports an export failure", func() {
				So(errors.Is(err, ErrExportFailed), ShouldBeTrue)
			})
		})
	})
}

func TestDefaultManager(t *testing.T) {
	Convey("Given the process-wide manager", t, func() {
		Convey("Then it is registered on the custom registry", func() {
			So(Default(), ShouldNotBeNil)
			So(Default().Registry(), ShouldEqual, GetRegistry())
		})
	})
}
