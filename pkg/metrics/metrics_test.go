package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors are registered there", func() {
				So(m, ShouldNotBeNil)
				m.RecordStage("round", "", 1)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_stage_runs_total")
				So(names, ShouldContain, "test_unit_stage_latency_milliseconds")
			})
		})
	})
}

func TestRecordStage(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

		Convey("When a stage succeeds and another fails", func() {
			m.RecordStage("best", "", 2)
			m.RecordStage("round", "not_numeric", 3)

			Convey("Then outcomes and kinds are counted separately", func() {
				So(testutil.ToFloat64(m.stageRuns.WithLabelValues("best", "ok")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.stageRuns.WithLabelValues("round", "error")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.stageErrors.WithLabelValues("round", "not_numeric")), ShouldEqual, 1)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Then recorders do not panic", func() {
			So(func() {
				RecordStage("best", "", 1)
				AddRowsProcessed(10)
				RecordJob("ok")
				UpdateQueueSize(1)
				UpdateQueueCapacity(8)
				RecordEnqueueError("full")
				UpdateWorkerCount(2)
				WorkerBusy(1)
				WorkerBusy(-1)
				RecordHTTPRequest("transform", "POST", "200")
				RecordHTTPRequestDuration("transform", "POST", "200", 1.5)
			}, ShouldNotPanic)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
