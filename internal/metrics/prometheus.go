package metrics

import (
	"DipSentinel/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes screening pass metrics to Prometheus.
type Recorder struct {
	passes      *prometheus.CounterVec
	duration    prometheus.Histogram
	symbols     *prometheus.GaugeVec
	tiers       *prometheus.GaugeVec
	trendBelow  prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// New registers the screener metrics on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		passes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dipsentinel_passes_total",
				Help: "Screening passes by outcome",
			},
			[]string{"outcome"},
		),
		duration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dipsentinel_pass_duration_seconds",
				Help:    "Duration of screening passes in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		symbols: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dipsentinel_symbols",
				Help: "Symbols in the last pass by status",
			},
			[]string{"status"},
		),
		tiers: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dipsentinel_tier_symbols",
				Help: "Scored symbols in the last pass by tier",
			},
			[]string{"tier"},
		),
		trendBelow: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "dipsentinel_trend_below_ema",
				Help: "1 when the trend symbol closed below its EMA in the last pass",
			},
		),
		lastSuccess: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "dipsentinel_last_success_timestamp_seconds",
				Help: "Unix time of the last completed pass",
			},
		),
	}
}

// RecordPass updates every metric from a published snapshot.
func (r *Recorder) RecordPass(snap *model.Snapshot) {
	r.duration.Observe(snap.FinishedAt.Sub(snap.StartedAt).Seconds())
	if snap.Failed() {
		r.passes.WithLabelValues("failed").Inc()
		return
	}
	r.passes.WithLabelValues("ok").Inc()
	r.lastSuccess.Set(float64(snap.FinishedAt.Unix()))

	report := snap.Report
	r.symbols.WithLabelValues("scored").Set(float64(len(report.Results)))
	r.symbols.WithLabelValues("unavailable").Set(float64(len(report.Unavailable)))

	counts := map[model.Tier]int{
		model.TierFullPreDip: 0,
		model.TierNearDip:    0,
		model.TierWarmDip:    0,
		model.TierNone:       0,
	}
	for _, res := range report.Results {
		counts[res.Tier]++
	}
	for tier, n := range counts {
		r.tiers.WithLabelValues(string(tier)).Set(float64(n))
	}

	if report.Trend.Below {
		r.trendBelow.Set(1)
	} else {
		r.trendBelow.Set(0)
	}
}
