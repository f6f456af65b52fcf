package georegion

// Level-slot indices within the level feature group. These mirror the
// canonical signal order used by the feature package.
const (
	slotSoil = iota
	slotTemp
	slotFire
	slotSea
	slotGlacier
)

// clampOp bounds or pins one level slot.
type clampOp struct {
	slot int
	kind clampKind
	val  float64
}

type clampKind int

const (
	clampAtMost clampKind = iota // value = min(value, val)
	clampAtLeast                 // value = max(value, val)
	clampExact                   // value = val
)

func (c clampOp) apply(levels []float64) {
	if c.slot >= len(levels) {
		return
	}
	switch c.kind {
	case clampAtMost:
		if levels[c.slot] > c.val {
			levels[c.slot] = c.val
		}
	case clampAtLeast:
		if levels[c.slot] < c.val {
			levels[c.slot] = c.val
		}
	case clampExact:
		levels[c.slot] = c.val
	}
}

// normalizedPolicy holds the per-region clamps on the normalized [0,1]
// scale used by the enhanced pipeline.
var normalizedPolicy = map[Region][]clampOp{
	Desert: {
		{slotSoil, clampAtMost, 0.15},
		{slotTemp, clampAtLeast, 0.25},
		{slotFire, clampAtLeast, 0.6},
		{slotSea, clampExact, 0},
		{slotGlacier, clampExact, 0},
	},
	Polar: {
		{slotSoil, clampAtMost, 0.4},
		{slotTemp, clampAtMost, 0.15},
		{slotFire, clampAtMost, 0.3},
		{slotSea, clampExact, 0},
		{slotGlacier, clampAtLeast, 0.05},
	},
	Coastal: {
		{slotSea, clampAtLeast, 0.05},
	},
	Tropical: {
		{slotSoil, clampAtLeast, 0.6},
		{slotTemp, clampAtLeast, 0.2},
		{slotFire, clampAtMost, 0.6},
	},
	Mountainous: {
		{slotTemp, clampAtMost, 0.3},
		{slotGlacier, clampAtLeast, 0.02},
	},
}

// rawPolicy holds the equivalent clamps in physical units for the basic
// pipeline, which adjusts before normalization.
var rawPolicy = map[Region][]clampOp{
	Desert: {
		{slotSoil, clampAtMost, 15},    // percent
		{slotTemp, clampAtLeast, 25},   // °C
		{slotFire, clampAtLeast, 60},   // index
		{slotSea, clampExact, 0},       // m
		{slotGlacier, clampExact, 0},   // mm/yr
	},
	Polar: {
		{slotSoil, clampAtMost, 40},
		{slotTemp, clampAtMost, -10},
		{slotFire, clampAtMost, 30},
		{slotSea, clampExact, 0},
		{slotGlacier, clampAtLeast, 5},
	},
	Coastal: {
		{slotSea, clampAtLeast, 0.05},
	},
	Tropical: {
		{slotSoil, clampAtLeast, 60},
		{slotTemp, clampAtLeast, 20},
		{slotFire, clampAtMost, 60},
	},
	Mountainous: {
		{slotTemp, clampAtMost, 10},
		{slotGlacier, clampAtLeast, 2},
	},
}

// adjust applies the policy for every matching region, in classification
// order, mutating the first five slots of levels in place.
func adjust(policy map[Region][]clampOp, levels []float64, lat, lon float64) []Region {
	regions := Classify(lat, lon)
	for _, r := range regions {
		for _, op := range policy[r] {
			op.apply(levels)
		}
	}
	return regions
}

// AdjustRaw clamps physical-unit level features in place (basic pipeline)
// and returns the regions that applied.
func AdjustRaw(levels []float64, lat, lon float64) []Region {
	return adjust(rawPolicy, levels, lat, lon)
}

// AdjustNormalized clamps normalized [0,1] level features in place
// (enhanced pipeline) and returns the regions that applied. Only the level
// group is touched; trend, volatility, interaction, seasonal, and extreme
// slots pass through untouched.
func AdjustNormalized(levels []float64, lat, lon float64) []Region {
	return adjust(normalizedPolicy, levels, lat, lon)
}
