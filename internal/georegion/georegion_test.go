package georegion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     []Region
	}{
		{"sahara interior", 20, 10, []Region{Desert, Tropical}},
		{"gobi", 45, 110, []Region{Desert}},
		{"atacama away from the andes", -25, -77, []Region{Desert}},
		{"atacama inside the andes box", -25, -72, []Region{Desert, Mountainous}},
		{"kalahari", -25, 20, []Region{Desert}},
		{"australian desert", -25, 130, []Region{Desert}},
		{"north pole side", 70, 0, []Region{Polar}},
		{"antarctic", -78, 45, []Region{Polar}},
		{"pacific northwest coast", 45, -122, []Region{Coastal}},
		{"colorado rockies", 39, -106, []Region{Mountainous}},
		{"equatorial ocean", 0, -30, []Region{Tropical}},
		{"himalaya", 30, 85, []Region{Mountainous}},
		{"alps", 46, 10, []Region{Mountainous}},
		{"temperate interior", 52, 40, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.lat, tt.lon))
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsDesert(20, 10))
	assert.False(t, IsDesert(20, 50))
	assert.True(t, IsPolar(-67, 100))
	assert.False(t, IsPolar(66.5, 100))
	assert.True(t, IsTropical(-23.5, 0))
	assert.False(t, IsTropical(23.6, 0))
	assert.True(t, IsCoastal(40, -70))
	assert.True(t, IsMountainous(-30, -70))
}

func TestAdjustRaw_Desert(t *testing.T) {
	// Wet, cold, low-fire inputs in the Sahara get pushed to desert bounds.
	levels := []float64{80, 10, 20, 0.5, 10}
	regions := AdjustRaw(levels, 20, 10)

	assert.Contains(t, regions, Desert)
	assert.LessOrEqual(t, levels[slotSoil], 15.0)
	assert.GreaterOrEqual(t, levels[slotTemp], 25.0)
	assert.GreaterOrEqual(t, levels[slotFire], 60.0)
	assert.Equal(t, 0.0, levels[slotSea])
	assert.Equal(t, 0.0, levels[slotGlacier])
}

func TestAdjustRaw_DesertTropicalOrdering(t *testing.T) {
	// The Sahara box at lat 20 is also tropical. Tropical comes later in
	// the fixed order, so its soil floor of 60 overrides the desert cap.
	levels := []float64{80, 30, 70, 0, 0}
	AdjustRaw(levels, 20, 10)
	assert.Equal(t, 60.0, levels[slotSoil])
	// Fire: desert raises to >=60, tropical caps at <=60; later wins.
	assert.Equal(t, 60.0, levels[slotFire])
}

func TestAdjustNormalized_Polar(t *testing.T) {
	levels := []float64{0.9, 0.8, 0.7, 0.6, 0.0}
	regions := AdjustNormalized(levels, 75, 20)

	assert.Equal(t, []Region{Polar}, regions)
	assert.LessOrEqual(t, levels[slotSoil], 0.4)
	assert.LessOrEqual(t, levels[slotTemp], 0.15)
	assert.LessOrEqual(t, levels[slotFire], 0.3)
	assert.Equal(t, 0.0, levels[slotSea])
	assert.GreaterOrEqual(t, levels[slotGlacier], 0.05)
}

func TestAdjustNormalized_DeterministicClamp(t *testing.T) {
	// Regardless of input magnitude, a pure-desert point always yields a
	// soil level at or below the desert cap.
	for _, soil := range []float64{0, 0.1, 0.5, 1.0} {
		levels := []float64{soil, 0.5, 0.5, 0.5, 0.5}
		AdjustNormalized(levels, 45, 110) // Gobi: desert only
		assert.LessOrEqual(t, levels[slotSoil], 0.15)
	}
}

func TestAdjustNormalized_NoRegionNoChange(t *testing.T) {
	levels := []float64{0.9, 0.8, 0.7, 0.6, 0.5}
	want := append([]float64(nil), levels...)
	regions := AdjustNormalized(levels, 52, 40)
	assert.Empty(t, regions)
	assert.Equal(t, want, levels)
}

func TestAdjustNormalized_CoastalOnlyTouchesSeaLevel(t *testing.T) {
	levels := []float64{0.3, 0.3, 0.3, 0.0, 0.3}
	AdjustNormalized(levels, 40, -70) // NA east coast, non-tropical
	assert.Equal(t, []float64{0.3, 0.3, 0.3, 0.05, 0.3}, levels)
}
