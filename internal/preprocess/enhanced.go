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

// Enhanced is the 25-feature pipeline: level, trend, volatility,
// interaction, seasonality, and extreme-value groups, normalized per slot
// and then clamped on the normalized scale by geographic region.
type Enhanced struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewEnhanced creates the enhanced preprocessor.
func NewEnhanced(logger *slog.Logger, metrics *observability.Metrics) *Enhanced {
	return &Enhanced{logger: logger, metrics: metrics}
}

// enhancedRichnessTarget is the total clean sample count at which the
// enhanced pipeline considers the request fully data-rich.
const enhancedRichnessTarget = 250

// Process runs clean → aggregate → normalize → adjust for the enhanced
// path. The geographic clamp table for this path is expressed on the
// normalized scale, so adjustment follows normalization; the clamp still
// happens exactly once, on the level group only.
func (p *Enhanced) Process(batch domain.SampleBatch, loc domain.Location) NormalizedFeatures {
	start := time.Now()
	c := cleanBatch(batch, true, p.logger, p.metrics)
	p.metrics.StageDuration.WithLabelValues("clean").Observe(time.Since(start).Seconds())

	start = time.Now()
	raw := feature.BuildEnhanced(
		c.values[domain.SignalSoilMoisture],
		c.values[domain.SignalTemperature],
		c.values[domain.SignalFireIndex],
		c.values[domain.SignalSeaLevel],
		c.values[domain.SignalGlacierMelt],
	)
	p.metrics.StageDuration.WithLabelValues("aggregate").Observe(time.Since(start).Seconds())

	completeness := stats.Clamp01(c.completeness())
	quality := stats.Clamp01(0.6*c.consistency() + 0.4*completeness)
	richness := float64(c.totalKept()) / enhancedRichnessTarget
	if richness > 1 {
		richness = 1
	}

	start = time.Now()
	normalized := feature.NormalizeEnhanced(raw)
	p.metrics.StageDuration.WithLabelValues("normalize").Observe(time.Since(start).Seconds())

	start = time.Now()
	regions := georegion.AdjustNormalized(normalized, loc.Latitude, loc.Longitude)
	p.metrics.StageDuration.WithLabelValues("adjust").Observe(time.Since(start).Seconds())
	if len(regions) > 0 {
		p.logger.Debug("applied geographic adjustment",
			"regions", regions,
			"adjusted_levels", normalized[:feature.BasicSize],
		)
	}

	p.metrics.FeatureQuality.Observe(quality)
	p.logger.Debug("preprocessed enhanced features",
		"quality", quality,
		"completeness", completeness,
		"data_richness", richness,
		"regions", regions,
	)

	return NormalizedFeatures{
		Values:       normalized,
		Quality:      quality,
		Completeness: completeness,
		DataRichness: richness,
		Enhanced:     true,
		Regions:      regions,
		SignalMeans:  c.signalMeans(),
		SlotStats:    degenerateStats(normalized),
	}
}
