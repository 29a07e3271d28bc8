package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRegistry(registry))
			manager.optimizations.WithLabelValues("ok").Inc()

			Convey("Then metrics should be registered under the namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "fplsquad_optimizations_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithLatencyBuckets([]float64{0.1, 0.5, 1.0}),
				WithUpstreamBuckets([]float64{100, 1000}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithRegistry(registry),
			)
			manager.squadSpend.Set(99.5)
			manager.upstreamDuration.WithLabelValues("fixtures").Observe(250)

			Convey("Then names and labels should follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var spend, upstream bool
				for _, f := range families {
					switch f.GetName() {
					case "test_squad_spend":
						spend = true
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
						So(f.GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 99.5)
					case "test_upstream_request_duration_milliseconds":
						upstream = true
						So(f.GetMetric()[0].GetHistogram().GetBucket(), ShouldHaveLength, 2)
					}
				}
				So(spend, ShouldBeTrue)
				So(upstream, ShouldBeTrue)
			})
		})

		Convey("When empty options are given", func() {
			manager := NewManager(WithNamespace(""), WithLatencyBuckets(nil), WithUpstreamBuckets(nil), WithConstLabels(nil), WithRegistry(prometheus.NewRegistry()))

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "fplsquad")
				So(manager.latencyBuckets, ShouldNotBeEmpty)
				So(manager.upstreamBuckets[len(manager.upstreamBuckets)-1], ShouldEqual, 20000.0)
				So(manager.constLabels, ShouldBeEmpty)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording optimizer outcomes", func() {
			before := testutil.ToFloat64(globalManager.optimizations.WithLabelValues("incomplete"))
			RecordOptimization("incomplete")
			RecordOptimization("incomplete")
			UpdateSquadSpend(98.5)
			UpdateEligibleCandidates(412)

			Convey("Then the collectors should reflect them", func() {
				So(testutil.ToFloat64(globalManager.optimizations.WithLabelValues("incomplete")), ShouldEqual, before+2)
				So(testutil.ToFloat64(globalManager.squadSpend), ShouldEqual, 98.5)
				So(testutil.ToFloat64(globalManager.eligibleCandidates), ShouldEqual, 412.0)
			})
		})

		Convey("When recording catalog and upstream activity", func() {
			before := testutil.ToFloat64(globalManager.rejectedCandidates)
			RecordRejectedCandidates(3)
			RecordRejectedCandidates(0)
			RecordCatalogRefresh("ok")
			UpdateCatalogPlayers(600)
			RecordUpstreamRequest("bootstrap-static", "200", 120)
			UpdateBreakerState("fpl", 2)

			Convey("Then the counters should move", func() {
				So(testutil.ToFloat64(globalManager.rejectedCandidates), ShouldEqual, before+3)
				So(testutil.ToFloat64(globalManager.catalogPlayers), ShouldEqual, 600.0)
				So(testutil.ToFloat64(globalManager.breakerState.WithLabelValues("fpl")), ShouldEqual, 2.0)
			})
		})

		Convey("When recording with edge values", func() {
			So(func() {
				RecordHTTPRequest("", "", "200")
				RecordHTTPRequestDuration("/squad", "POST", "409", 0)
				RecordErrorByComponent("", "")
				RecordRepositoryQueryLatency(0)
				UpdateRankedPlayers(-1)
				RecordRelaxation()
				RecordOptimizationDuration(30000)
			}, ShouldNotPanic)
		})

		Convey("When metrics are disabled", func() {
			previous := globalManager
			globalManager = NewManager(Disabled(), WithRegistry(prometheus.NewRegistry()))
			Reset(func() { globalManager = previous })

			RecordOptimization("ok")

			Convey("Then nothing should be recorded", func() {
				So(testutil.ToFloat64(globalManager.optimizations.WithLabelValues("ok")), ShouldEqual, 0.0)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						RecordOptimization("ok")
						RecordHTTPRequest("/squad", "GET", "200")
						UpdateRankedPlayers(j)
					}
					done <- true
				}()
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(GetRegistry(), ShouldNotBeNil)
			})
		})
	})
}
