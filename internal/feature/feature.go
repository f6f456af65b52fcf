// Package feature assembles fixed-layout feature vectors from per-signal
// time series and rescales them into [0,1] with a per-slot range table.
//
// The slot order is load-bearing: normalization ranges, geographic clamps,
// and model input shapes are all keyed to slot position. Changing the layout
// is a breaking change for every trained model.
package feature

import (
	"github.com/couchcryptid/climate-risk-engine/internal/stats"
)

// Enhanced vector layout. Slots 0-4 follow the canonical signal order
// (soil moisture, temperature, fire index, sea level, glacier melt) and the
// remaining groups repeat it.
const (
	// Level group: per-signal mean.
	SlotLevelSoil = iota
	SlotLevelTemp
	SlotLevelFire
	SlotLevelSea
	SlotLevelGlacier

	// Trend group: per-signal least-squares slope.
	SlotTrendSoil
	SlotTrendTemp
	SlotTrendFire
	SlotTrendSea
	SlotTrendGlacier

	// Volatility group: per-signal population std-dev.
	SlotVolSoil
	SlotVolTemp
	SlotVolFire
	SlotVolSea
	SlotVolGlacier

	// Interaction group: pairwise products of level means.
	SlotInterSoilTemp
	SlotInterTempFire
	SlotInterSoilSea
	SlotInterGlacierSea

	// Seasonality group (soil, temperature, fire only).
	SlotSeasonSoil
	SlotSeasonTemp
	SlotSeasonFire

	// Extreme-value group (soil, temperature, fire only).
	SlotExtremeSoil
	SlotExtremeTemp
	SlotExtremeFire

	// EnhancedSize is the total number of enhanced slots.
	EnhancedSize
)

// BasicSize is the length of the basic (level-only) feature vector.
const BasicSize = 5

// BuildEnhanced assembles the 25-slot feature vector from the five cleaned
// per-signal series. Empty series contribute neutral zeros in every group.
func BuildEnhanced(soil, temp, fire, sea, glacier []float64) []float64 {
	v := make([]float64, EnhancedSize)

	v[SlotLevelSoil] = stats.Mean(soil)
	v[SlotLevelTemp] = stats.Mean(temp)
	v[SlotLevelFire] = stats.Mean(fire)
	v[SlotLevelSea] = stats.Mean(sea)
	v[SlotLevelGlacier] = stats.Mean(glacier)

	v[SlotTrendSoil] = stats.Trend(soil)
	v[SlotTrendTemp] = stats.Trend(temp)
	v[SlotTrendFire] = stats.Trend(fire)
	v[SlotTrendSea] = stats.Trend(sea)
	v[SlotTrendGlacier] = stats.Trend(glacier)

	v[SlotVolSoil] = stats.Volatility(soil)
	v[SlotVolTemp] = stats.Volatility(temp)
	v[SlotVolFire] = stats.Volatility(fire)
	v[SlotVolSea] = stats.Volatility(sea)
	v[SlotVolGlacier] = stats.Volatility(glacier)

	v[SlotInterSoilTemp] = v[SlotLevelSoil] * v[SlotLevelTemp]
	v[SlotInterTempFire] = v[SlotLevelTemp] * v[SlotLevelFire]
	v[SlotInterSoilSea] = v[SlotLevelSoil] * v[SlotLevelSea]
	v[SlotInterGlacierSea] = v[SlotLevelGlacier] * v[SlotLevelSea]

	v[SlotSeasonSoil] = stats.Seasonality(soil)
	v[SlotSeasonTemp] = stats.Seasonality(temp)
	v[SlotSeasonFire] = stats.Seasonality(fire)

	v[SlotExtremeSoil] = stats.ExtremeRatio(soil)
	v[SlotExtremeTemp] = stats.ExtremeRatio(temp)
	v[SlotExtremeFire] = stats.ExtremeRatio(fire)

	return v
}

// BuildBasic assembles the 5-slot vector of outlier-resistant per-signal
// levels used by the basic pipeline.
func BuildBasic(soil, temp, fire, sea, glacier []float64) []float64 {
	return []float64{
		stats.RobustMean(soil),
		stats.RobustMean(temp),
		stats.RobustMean(fire),
		stats.RobustMean(sea),
		stats.RobustMean(glacier),
	}
}
