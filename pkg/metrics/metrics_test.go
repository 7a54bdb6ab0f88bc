package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func gathered(reg prometheus.Gatherer) map[string]*dto.MetricFamily {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestManagerOptions(t *testing.T) {
	Convey("Given a manager on its own registry", t, func() {
		reg := prometheus.NewRegistry()
		m := NewManager(
			WithRegistry(reg),
			WithNamespace("test"),
			WithSubsystem("unit"),
			WithMetricPrefix("x"),
			WithConstLabels(map[string]string{"env": "test"}),
			WithLatencyBuckets([]float64{1, 10}),
			WithMetricsEnabled(false),
			WithSampleInterval(time.Second),
		)
		So(m.Enabled(), ShouldBeFalse)

		m.summariesBuilt.Inc()
		m.rankingOffers.WithLabelValues(OfferTied).Add(2)

		Convey("Names carry namespace, subsystem and prefix", func() {
			fams := gathered(reg)
			built, ok := fams["test_unit_x_summaries_built_total"]
			So(ok, ShouldBeTrue)
			So(built.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 1.0)

			offers := fams["test_unit_x_ranking_offers_total"]
			So(offers, ShouldNotBeNil)
			labels := map[string]string{}
			for _, lp := range offers.GetMetric()[0].GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			So(labels["env"], ShouldEqual, "test")
			So(labels["outcome"], ShouldEqual, OfferTied)
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global recorders", t, func() {
		So(func() {
			RecordPeriodSubmitted()
			RecordPeriodDuplicate()
			RecordSummaryBuilt()
			RecordSummaryError("build")
			RecordSummaryLatency(12)
			UpdateSummariesStored(3)
			RecordCategoryComputed("teams")
			RecordRankingOffers(OfferPlaced, 4)
			RecordRankingOffers(OfferRejected, 0)
			RecordRankingEvictions(2)
			RecordLineupPruned(7)
			RecordLineupEvaluated(100)
			RecordLineupSearchLatency(3.5)
			UpdateLineupCoOptimal(2)
			RecordHTTPRequest("/periods", "POST", "202")
			RecordHTTPRequestDuration("/periods", "POST", "202", 1.5)
			UpdateQueueSize(1)
			UpdateQueueCapacity(10)
			UpdateQueueUtilization(0.1)
			RecordQueueEnqueue()
			RecordQueueDequeue()
			RecordQueueEnqueueError()
			UpdateWorkerCount(2)
			UpdateWorkerActiveCount(1)
			RecordWorkerProcessingLatency(8)
			RecordWorkerError()
			RecordErrorByComponent("lineup", "insufficient_pool")
			RecordErrorByEndpoint("/periods", "POST", "bad_request")
			SampleSystem()
		}, ShouldNotPanic)

		Convey("They land on the private registry", func() {
			fams := gathered(GetRegistry())
			So(fams, ShouldContainKey, "rd2_weekly_periods_submitted_total")
			So(fams, ShouldContainKey, "rd2_weekly_lineup_evaluated_total")
			So(fams, ShouldContainKey, "rd2_weekly_system_goroutine_count")
			So(fams["rd2_weekly_lineup_co_optimal"].GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 2.0)
		})
	})
}

func counterValue(name string) float64 {
	f, ok := gathered(GetRegistry())[name]
	if !ok {
		return 0
	}
	return f.GetMetric()[0].GetCounter().GetValue()
}

func TestSetEnabled(t *testing.T) {
	Convey("Given recording is switched off", t, func() {
		const name = "rd2_weekly_periods_duplicate_total"
		RecordPeriodDuplicate()
		before := counterValue(name)
		SetEnabled(false)
		Reset(func() { SetEnabled(true) })

		Convey("Recorders leave their series untouched", func() {
			RecordPeriodDuplicate()
			RecordRankingEvictions(3)
			So(counterValue(name), ShouldEqual, before)
			So(globalManager.Enabled(), ShouldBeFalse)
		})

		Convey("Switching it back on records again", func() {
			SetEnabled(true)
			RecordPeriodDuplicate()
			So(counterValue(name), ShouldEqual, before+1)
		})
	})
}

func TestLatencyBuckets(t *testing.T) {
	Convey("Buckets must increase", t, func() {
		m := NewManager(WithRegistry(prometheus.NewRegistry()), WithLatencyBuckets([]float64{5, 1}))
		So(m.latencyBuckets, ShouldResemble, defaultLatencyBuckets)
		m = NewManager(WithRegistry(prometheus.NewRegistry()), WithSampleInterval(time.Second))
		So(m.sampleInterval, ShouldEqual, time.Second)
	})
}

func TestRunSystemSampler(t *testing.T) {
	Convey("The sampler stops when its context is cancelled", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			RunSystemSampler(ctx, 5*time.Millisecond)
			close(done)
		}()
		time.Sleep(20 * time.Millisecond)
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("sampler did not stop")
		}
	})
}
