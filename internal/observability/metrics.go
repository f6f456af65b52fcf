package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// prediction engine.
type Metrics struct {
	PredictionsTotal *prometheus.CounterVec // labels: model, outcome={ok,validation_error,model_error}
	SamplesDropped   *prometheus.CounterVec // labels: signal, reason
	FeatureQuality   prometheus.Histogram
	StageDuration    *prometheus.HistogramVec // labels: stage={clean,aggregate,adjust,normalize,predict}
	TrainingDuration *prometheus.HistogramVec // labels: model
	RateLimited      prometheus.Counter

	// Batch scoring pipeline metrics.
	PipelineRunning  prometheus.Gauge
	RequestsConsumed prometheus.Counter
	ResultsProduced  prometheus.Counter
	ScoringErrors    prometheus.Counter
	BatchSize        prometheus.Histogram

	// Upstream sample source metrics.
	UpstreamRequests *prometheus.CounterVec // labels: signal, outcome={success,error}
	UpstreamCache    *prometheus.CounterVec // labels: result={hit,miss}
}

func newMetrics() *Metrics {
	return &Metrics{
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_risk",
			Name:      "predictions_total",
			Help:      "Prediction requests by model and outcome.",
		}, []string{"model", "outcome"}),
		SamplesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_risk",
			Name:      "samples_dropped_total",
			Help:      "Raw samples discarded during cleaning, by signal and reason.",
		}, []string{"signal", "reason"}),
		FeatureQuality: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_risk",
			Name:      "feature_quality",
			Help:      "Data-quality score of preprocessed feature vectors.",
			Buckets:   []float64{0.1, 0.25, 0.5, 0.75, 0.9, 1},
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "climate_risk",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each prediction pipeline stage.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1},
		}, []string{"stage"}),
		TrainingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "climate_risk",
			Name:      "training_duration_seconds",
			Help:      "Wall time of first-use model training.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"model"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_risk",
			Name:      "rate_limited_total",
			Help:      "HTTP prediction requests rejected by the rate limiter.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_risk",
			Name:      "pipeline_running",
			Help:      "1 when the batch scoring pipeline is active, 0 when shut down.",
		}),
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_risk",
			Name:      "scoring_requests_consumed_total",
			Help:      "Scoring requests read from the source topic.",
		}),
		ResultsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_risk",
			Name:      "scoring_results_produced_total",
			Help:      "Prediction results written to the sink topic.",
		}),
		ScoringErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "climate_risk",
			Name:      "scoring_errors_total",
			Help:      "Scoring requests that failed validation or prediction.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_risk",
			Name:      "scoring_batch_size",
			Help:      "Number of scoring requests per consumed batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_risk",
			Name:      "upstream_requests_total",
			Help:      "Upstream sample-source requests by signal and outcome.",
		}, []string{"signal", "outcome"}),
		UpstreamCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_risk",
			Name:      "upstream_cache_total",
			Help:      "Upstream sample cache lookups by result.",
		}, []string{"result"}),
	}
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PredictionsTotal,
		m.SamplesDropped,
		m.FeatureQuality,
		m.StageDuration,
		m.TrainingDuration,
		m.RateLimited,
		m.PipelineRunning,
		m.RequestsConsumed,
		m.ResultsProduced,
		m.ScoringErrors,
		m.BatchSize,
		m.UpstreamRequests,
		m.UpstreamCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
