package synthetic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/feature"
)

func TestGenerator_Examples_Shape(t *testing.T) {
	examples := NewGenerator(1).Examples()

	require.GreaterOrEqual(t, len(examples), 1000)

	counts := map[Archetype]int{}
	for _, ex := range examples {
		counts[ex.Archetype]++

		require.Len(t, ex.Features, feature.EnhancedSize)
		for i, v := range ex.Features {
			assert.GreaterOrEqualf(t, v, 0.0, "slot %d", i)
			assert.LessOrEqualf(t, v, 1.0, "slot %d", i)
		}
		assert.GreaterOrEqual(t, ex.DroughtRisk, 0.0)
		assert.LessOrEqual(t, ex.DroughtRisk, 1.0)
		assert.GreaterOrEqual(t, ex.FloodRisk, 0.0)
		assert.LessOrEqual(t, ex.FloodRisk, 1.0)
	}

	for _, a := range Archetypes() {
		assert.GreaterOrEqualf(t, counts[a], 200, "archetype %s", a)
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(42).Examples()
	b := NewGenerator(42).Examples()
	require.Equal(t, len(a), len(b))
	assert.Equal(t, a[0], b[0])
	assert.Equal(t, a[len(a)-1], b[len(b)-1])

	c := NewGenerator(43).Examples()
	assert.NotEqual(t, a[0].Features, c[0].Features)
}

func TestGenerator_LabelsFollowArchetypes(t *testing.T) {
	examples := NewGenerator(7).Examples()

	meanRisk := func(a Archetype) (drought, flood float64) {
		var n int
		for _, ex := range examples {
			if ex.Archetype != a {
				continue
			}
			drought += ex.DroughtRisk
			flood += ex.FloodRisk
			n++
		}
		return drought / float64(n), flood / float64(n)
	}

	desertD, desertF := meanRisk(ArchetypeDesert)
	assert.Greater(t, desertD, desertF)
	assert.Greater(t, desertD, 0.6)

	basinD, basinF := meanRisk(ArchetypeRiverBasin)
	assert.Greater(t, basinF, basinD)
	assert.Greater(t, basinF, 0.6)
}

func TestGenerator_SeriesWithinPlausibleRange(t *testing.T) {
	g := NewGenerator(3)
	p := profiles[ArchetypePolar]

	// Polar temperatures must be able to stay below zero; the unit-scale
	// walk maps into the physical span rather than flooring at 0°C.
	sawNegative := false
	for i := 0; i < 20; i++ {
		for _, v := range g.series(p.temp) {
			if v < 0 {
				sawNegative = true
			}
		}
	}
	assert.True(t, sawNegative)
}
