package preprocess

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/feature"
	"github.com/couchcryptid/climate-risk-engine/internal/georegion"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/stats"
)

// Basic is the 5-feature pipeline: one outlier-resistant level per signal,
// clamped in physical units, then min-max normalized.
type Basic struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewBasic creates the basic preprocessor.
func NewBasic(logger *slog.Logger, metrics *observability.Metrics) *Basic {
	return &Basic{logger: logger, metrics: metrics}
}

// richnessTarget is the total clean sample count at which the basic
// pipeline considers the request fully data-rich.
const richnessTarget = 50

// Process runs clean → aggregate → adjust → normalize for the basic path.
func (p *Basic) Process(batch domain.SampleBatch, loc domain.Location) NormalizedFeatures {
	start := time.Now()
	c := cleanBatch(batch, false, p.logger, p.metrics)
	p.metrics.StageDuration.WithLabelValues("clean").Observe(time.Since(start).Seconds())

	start = time.Now()
	levels := feature.BuildBasic(
		c.values[domain.SignalSoilMoisture],
		c.values[domain.SignalTemperature],
		c.values[domain.SignalFireIndex],
		c.values[domain.SignalSeaLevel],
		c.values[domain.SignalGlacierMelt],
	)
	p.metrics.StageDuration.WithLabelValues("aggregate").Observe(time.Since(start).Seconds())
	p.logger.Debug("aggregated basic levels", "levels", levels)

	richness := float64(c.totalKept()) / richnessTarget
	if richness > 1 {
		richness = 1
	}
	quality := stats.Clamp01(0.6*c.consistency() + 0.4*richness)
	completeness := stats.Clamp01(c.completeness())

	start = time.Now()
	regions := georegion.AdjustRaw(levels, loc.Latitude, loc.Longitude)
	p.metrics.StageDuration.WithLabelValues("adjust").Observe(time.Since(start).Seconds())
	if len(regions) > 0 {
		p.logger.Debug("applied geographic adjustment",
			"regions", regions,
			"adjusted_levels", levels,
		)
	}

	start = time.Now()
	normalized := feature.NormalizeBasic(levels)
	p.metrics.StageDuration.WithLabelValues("normalize").Observe(time.Since(start).Seconds())

	p.metrics.FeatureQuality.Observe(quality)
	p.logger.Debug("preprocessed basic features",
		"features", normalized,
		"quality", quality,
		"completeness", completeness,
	)

	return NormalizedFeatures{
		Values:       normalized,
		Quality:      quality,
		Completeness: completeness,
		Enhanced:     false,
		Regions:      regions,
		SignalMeans:  c.signalMeans(),
		SlotStats:    degenerateStats(normalized),
	}
}
