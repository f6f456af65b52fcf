// Package preprocess turns raw per-signal sample batches into normalized
// feature vectors through a fixed stage order: clean, aggregate, adjust,
// normalize. Two variants exist: the basic 5-feature pipeline and the
// enhanced 25-feature pipeline.
//
// Sparsity never fails a prediction here. An empty or fully-discarded
// signal contributes neutral zero features and drags the quality and
// completeness scores down instead.
package preprocess

import (
	"log/slog"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/georegion"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/stats"
)

// SlotStat carries degenerate descriptive statistics for one feature slot.
// No per-slot variance survives aggregation, so mean, min, and max all
// collapse to the slot value.
type SlotStat struct {
	Mean float64 `json:"mean"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// NormalizedFeatures is the preprocessor's product: a feature vector with
// every slot in [0,1] plus the data-quality scores the orchestrator uses to
// dampen model confidence. Produced once per prediction and discarded after.
type NormalizedFeatures struct {
	Values []float64

	Quality      float64
	Completeness float64
	// DataRichness is computed by the enhanced pipeline only; zero otherwise.
	DataRichness float64

	Enhanced bool
	Regions  []georegion.Region

	// SignalMeans holds the raw (physical-unit) mean per signal for display.
	SignalMeans map[domain.Signal]float64

	SlotStats []SlotStat
}

// Processor converts a raw sample batch for one location into
// NormalizedFeatures.
type Processor interface {
	Process(batch domain.SampleBatch, loc domain.Location) NormalizedFeatures
}

// cleaned holds the per-signal outcome of the cleaning stage.
type cleaned struct {
	values map[domain.Signal][]float64
	kept   map[domain.Signal]int
	total  map[domain.Signal]int
}

// cleanBatch validates every sample of every signal, keeping only usable
// values. Staleness is enforced only when strict is set (enhanced pipeline).
func cleanBatch(batch domain.SampleBatch, strict bool, logger *slog.Logger, metrics *observability.Metrics) cleaned {
	c := cleaned{
		values: make(map[domain.Signal][]float64, 5),
		kept:   make(map[domain.Signal]int, 5),
		total:  make(map[domain.Signal]int, 5),
	}

	for _, signal := range domain.Signals() {
		series := batch.Series(signal)
		c.total[signal] = len(series)

		values := make([]float64, 0, len(series))
		for _, s := range series {
			if reason := domain.CheckSample(s, strict); reason != domain.DropNone {
				metrics.SamplesDropped.WithLabelValues(string(signal), string(reason)).Inc()
				continue
			}
			values = append(values, s.Value)
		}
		c.values[signal] = values
		c.kept[signal] = len(values)

		if len(values) < len(series) {
			logger.Debug("dropped samples during cleaning",
				"signal", signal,
				"kept", len(values),
				"total", len(series),
			)
		}
	}

	return c
}

// consistency is the ratio of the sparsest to the densest cleaned signal.
// Zero when no signal has any data.
func (c cleaned) consistency() float64 {
	minCount, maxCount := -1, 0
	for _, signal := range domain.Signals() {
		n := c.kept[signal]
		if minCount < 0 || n < minCount {
			minCount = n
		}
		if n > maxCount {
			maxCount = n
		}
	}
	if maxCount == 0 {
		return 0
	}
	return float64(minCount) / float64(maxCount)
}

// totalKept is the number of clean samples across all signals.
func (c cleaned) totalKept() int {
	total := 0
	for _, n := range c.kept {
		total += n
	}
	return total
}

// expectedMinimum is the per-signal sample count considered sufficient for
// the completeness score.
const expectedMinimum = 10

// completeness is the mean of the five per-signal sufficiency scores
// min(1, count/expectedMinimum).
func (c cleaned) completeness() float64 {
	var sum float64
	for _, signal := range domain.Signals() {
		score := float64(c.kept[signal]) / expectedMinimum
		if score > 1 {
			score = 1
		}
		sum += score
	}
	return sum / 5
}

// signalMeans returns the raw-unit mean per signal, for display only.
func (c cleaned) signalMeans() map[domain.Signal]float64 {
	means := make(map[domain.Signal]float64, 5)
	for _, signal := range domain.Signals() {
		means[signal] = stats.Mean(c.values[signal])
	}
	return means
}

// degenerateStats produces the per-slot descriptive statistics for an
// aggregated vector.
func degenerateStats(values []float64) []SlotStat {
	out := make([]SlotStat, len(values))
	for i, v := range values {
		out[i] = SlotStat{Mean: v, Min: v, Max: v}
	}
	return out
}
