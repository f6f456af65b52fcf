// Package synthetic generates labeled training examples for the model
// layer. Examples are drawn per geographic archetype from hand-tuned base
// rates and physical-unit signal ranges, run through the same feature and
// normalization code the live pipeline uses, and labeled with mild noise so
// the training set correlates with, but never equals, the archetype rates.
package synthetic

import (
	"math"
	"math/rand"

	"github.com/couchcryptid/climate-risk-engine/internal/feature"
	"github.com/couchcryptid/climate-risk-engine/internal/stats"
)

// Archetype is a geographic category used only for training-data
// generation. It is distinct from the runtime region classifier.
type Archetype string

const (
	ArchetypeDesert     Archetype = "desert"
	ArchetypeCoastal    Archetype = "coastal"
	ArchetypeTropical   Archetype = "tropical"
	ArchetypePolar      Archetype = "polar"
	ArchetypeRiverBasin Archetype = "river_basin"
)

// Archetypes returns all archetypes in generation order.
func Archetypes() [5]Archetype {
	return [5]Archetype{
		ArchetypeDesert,
		ArchetypeCoastal,
		ArchetypeTropical,
		ArchetypePolar,
		ArchetypeRiverBasin,
	}
}

// Example is one labeled training row: a normalized enhanced feature vector
// with drought and flood risk targets in [0,1].
type Example struct {
	Features    []float64
	DroughtRisk float64
	FloodRisk   float64
	Archetype   Archetype
}

// span is a closed physical-unit interval samples are drawn from.
type span struct {
	min, max float64
}

func (s span) width() float64 { return s.max - s.min }

// profile holds one archetype's label base rates, label variation widths,
// and per-signal physical-unit ranges. The numbers are hand-tuned contracts:
// they shape what every model learns, so they stay verbatim.
type profile struct {
	droughtBase, droughtVar float64
	floodBase, floodVar     float64

	soil, temp, fire, sea, glacier span
}

var profiles = map[Archetype]profile{
	ArchetypeDesert: {
		droughtBase: 0.80, droughtVar: 0.20,
		floodBase: 0.10, floodVar: 0.10,
		soil: span{0, 20}, temp: span{25, 50}, fire: span{60, 100},
		sea: span{0, 0.05}, glacier: span{0, 0.5},
	},
	ArchetypeCoastal: {
		droughtBase: 0.30, droughtVar: 0.20,
		floodBase: 0.60, floodVar: 0.30,
		soil: span{40, 80}, temp: span{10, 25}, fire: span{10, 40},
		sea: span{0.1, 0.8}, glacier: span{0, 2},
	},
	ArchetypeTropical: {
		droughtBase: 0.25, droughtVar: 0.20,
		floodBase: 0.70, floodVar: 0.25,
		soil: span{60, 100}, temp: span{22, 35}, fire: span{20, 60},
		sea: span{0.05, 0.5}, glacier: span{0, 0.5},
	},
	ArchetypePolar: {
		droughtBase: 0.15, droughtVar: 0.10,
		floodBase: 0.20, floodVar: 0.15,
		soil: span{20, 40}, temp: span{-40, -5}, fire: span{0, 20},
		sea: span{0, 0.1}, glacier: span{5, 20},
	},
	ArchetypeRiverBasin: {
		droughtBase: 0.20, droughtVar: 0.15,
		floodBase: 0.75, floodVar: 0.20,
		soil: span{50, 90}, temp: span{5, 25}, fire: span{5, 30},
		sea: span{0.2, 1}, glacier: span{0, 3},
	},
}

const (
	// examplesPerArchetype is the generation floor per archetype.
	examplesPerArchetype = 200
	// seriesLength is the number of synthetic time-series points per signal.
	seriesLength = 24
)

// Generator produces deterministic training sets from a seed.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator. The same seed always yields the same
// training set.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Examples generates the full training set: examplesPerArchetype rows for
// each archetype, in archetype order.
func (g *Generator) Examples() []Example {
	out := make([]Example, 0, examplesPerArchetype*len(profiles))
	for _, a := range Archetypes() {
		p := profiles[a]
		for i := 0; i < examplesPerArchetype; i++ {
			out = append(out, g.example(a, p))
		}
	}
	return out
}

func (g *Generator) example(a Archetype, p profile) Example {
	soil := g.series(p.soil)
	temp := g.series(p.temp)
	fire := g.series(p.fire)
	sea := g.series(p.sea)
	glacier := g.series(p.glacier)

	raw := feature.BuildEnhanced(soil, temp, fire, sea, glacier)
	normalized := feature.NormalizeEnhanced(raw)

	// Risk adjustment reads the normalized level slots so its contribution
	// stays small relative to the base rate regardless of physical units.
	droughtAdj := 0.1 * (0.3*normalized[feature.SlotLevelTemp] + 0.2*normalized[feature.SlotLevelFire])
	floodAdj := 0.1 * (0.3*normalized[feature.SlotLevelSoil] + 0.4*normalized[feature.SlotLevelSea])

	return Example{
		Features:    normalized,
		DroughtRisk: stats.Clamp01(p.droughtBase + g.uniform(-p.droughtVar/2, p.droughtVar/2) + droughtAdj),
		FloodRisk:   stats.Clamp01(p.floodBase + g.uniform(-p.floodVar/2, p.floodVar/2) + floodAdj),
		Archetype:   a,
	}
}

// SignalSeries synthesizes one physical-unit series per signal for the
// archetype, in canonical slot order (soil, temperature, fire, sea, glacier).
// Used by fixture generation; training goes through Examples.
func (g *Generator) SignalSeries(a Archetype) [5][]float64 {
	p := profiles[a]
	return [5][]float64{
		g.series(p.soil),
		g.series(p.temp),
		g.series(p.fire),
		g.series(p.sea),
		g.series(p.glacier),
	}
}

// series synthesizes a persistence time series for one signal. The walk
// runs on the unit scale (base level uniform in [0,1], floored at 0) and
// each point maps into the signal's physical range, so the same process
// works for signals whose range spans negative values.
func (g *Generator) series(s span) []float64 {
	values := make([]float64, seriesLength)
	prev := g.rng.Float64()
	trend := g.uniform(-0.05, 0.05)
	for i := 0; i < seriesLength; i++ {
		seasonal := 0.2 * math.Sin(float64(i)*math.Pi/6)
		noise := g.uniform(-0.15, 0.15)
		prev = math.Max(0, prev+trend+seasonal+noise)
		values[i] = s.min + prev*s.width()
	}
	return values
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}
