package feature

import "github.com/couchcryptid/climate-risk-engine/internal/stats"

// Range is a fixed (min,max) rescaling interval for one feature slot.
type Range struct {
	Min float64
	Max float64
}

// Scale rescales v into [0,1], clamping values outside the declared range.
// A temperature of 100°C still normalizes to 1.0, never above.
func (r Range) Scale(v float64) float64 {
	span := r.Max - r.Min
	if span == 0 {
		return 0
	}
	return stats.Clamp01((v - r.Min) / span)
}

// Physical-unit ranges for the five signal levels. These are documented
// contract values; changing them shifts every normalized threshold.
var levelRanges = [BasicSize]Range{
	{0, 100},  // soil moisture, percent
	{-50, 60}, // surface temperature, °C
	{0, 100},  // fire danger index
	{0, 1},    // sea level, m
	{0, 20},   // glacier melt rate, mm/yr
}

// enhancedRanges extends the level ranges with fixed spans for the trend,
// volatility, interaction, seasonality, and extreme-value groups. Trend and
// volatility spans were sized from the synthetic persistence process (per-step
// drift of ±0.05 of the level scale) plus generous headroom for real data.
var enhancedRanges = [EnhancedSize]Range{
	// Level group.
	SlotLevelSoil:    levelRanges[0],
	SlotLevelTemp:    levelRanges[1],
	SlotLevelFire:    levelRanges[2],
	SlotLevelSea:     levelRanges[3],
	SlotLevelGlacier: levelRanges[4],

	// Trend group, units per sample step.
	SlotTrendSoil:    {-5, 5},
	SlotTrendTemp:    {-3, 3},
	SlotTrendFire:    {-5, 5},
	SlotTrendSea:     {-0.1, 0.1},
	SlotTrendGlacier: {-2, 2},

	// Volatility group.
	SlotVolSoil:    {0, 30},
	SlotVolTemp:    {0, 15},
	SlotVolFire:    {0, 30},
	SlotVolSea:     {0, 0.3},
	SlotVolGlacier: {0, 5},

	// Interaction group: products of level means.
	SlotInterSoilTemp:   {-5000, 6000},
	SlotInterTempFire:   {-5000, 6000},
	SlotInterSoilSea:    {0, 100},
	SlotInterGlacierSea: {0, 20},

	// Seasonality group: max-min bucket spread.
	SlotSeasonSoil: {0, 50},
	SlotSeasonTemp: {0, 40},
	SlotSeasonFire: {0, 60},

	// Extreme-value group: already a ratio.
	SlotExtremeSoil: {0, 1},
	SlotExtremeTemp: {0, 1},
	SlotExtremeFire: {0, 1},
}

// NormalizeBasic rescales a 5-slot level vector into [0,1] in place order,
// returning a new slice.
func NormalizeBasic(v []float64) []float64 {
	out := make([]float64, BasicSize)
	for i := 0; i < BasicSize && i < len(v); i++ {
		out[i] = levelRanges[i].Scale(v[i])
	}
	return out
}

// NormalizeEnhanced rescales a 25-slot vector into [0,1], returning a new slice.
func NormalizeEnhanced(v []float64) []float64 {
	out := make([]float64, EnhancedSize)
	for i := 0; i < EnhancedSize && i < len(v); i++ {
		out[i] = enhancedRanges[i].Scale(v[i])
	}
	return out
}

// LevelRange exposes the physical-unit range for a level slot, used by the
// basic pipeline's raw-unit geographic clamps.
func LevelRange(slot int) Range {
	return levelRanges[slot]
}
