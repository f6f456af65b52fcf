// Command genmock generates scoring-request JSON fixtures for load testing
// and for seeding the Kafka request topic. It draws sample series from the
// same synthetic archetype profiles the training generator uses, so fixture
// traffic exercises the models on data shaped like their training set.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/scoring_requests.json -per-archetype 4 -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/model"
	"github.com/couchcryptid/climate-risk-engine/internal/synthetic"
)

// fixtureClock pins sample timestamps so regenerated fixtures diff cleanly.
var fixtureClock = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

// locations holds one representative coordinate per archetype.
var locations = map[synthetic.Archetype]domain.Location{
	synthetic.ArchetypeDesert:     {Latitude: 23.4, Longitude: 12.9},
	synthetic.ArchetypeCoastal:    {Latitude: 40.7, Longitude: -74.0},
	synthetic.ArchetypeTropical:   {Latitude: -3.1, Longitude: -60.0},
	synthetic.ArchetypePolar:      {Latitude: 74.5, Longitude: -40.2},
	synthetic.ArchetypeRiverBasin: {Latitude: 23.7, Longitude: 90.4},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the scoring-request JSON fixture")
	perArchetype := flag.Int("per-archetype", 4, "requests to generate per archetype")
	seed := flag.Int64("seed", 42, "generator seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	gen := synthetic.NewGenerator(*seed)
	models := []string{model.IDLinear, model.IDNeural, model.IDForest, model.IDEnsemble}

	var requests []domain.ScoringRequest
	modelCounts := map[string]int{}
	for _, a := range synthetic.Archetypes() {
		for i := 0; i < *perArchetype; i++ {
			m := models[len(requests)%len(models)]
			requests = append(requests, makeRequest(gen, a, m))
			modelCounts[m]++
		}
		log.Printf("%s: %d requests", a, *perArchetype)
	}

	if err := writeJSON(*out, requests); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s", *out)

	fmt.Printf("\nTotal: %d requests\n", len(requests))
	fmt.Printf("By model: linear=%d, neural=%d, random_forest=%d, ensemble=%d\n",
		modelCounts[model.IDLinear], modelCounts[model.IDNeural],
		modelCounts[model.IDForest], modelCounts[model.IDEnsemble])
	return nil
}

func makeRequest(gen *synthetic.Generator, a synthetic.Archetype, modelID string) domain.ScoringRequest {
	series := gen.SignalSeries(a)
	loc := locations[a]

	var batch domain.SampleBatch
	for slot, signal := range domain.Signals() {
		batch.SetSeries(signal, toRawSamples(series[slot], loc))
	}

	return domain.ScoringRequest{
		Location: loc,
		Toggles: domain.FeatureToggles{
			SoilMoisture:       true,
			SurfaceTemperature: true,
			FireIndex:          true,
			SeaLevel:           true,
			GlacierMelting:     true,
		},
		Model:   modelID,
		Samples: batch,
	}
}

// toRawSamples wraps a physical-unit series in daily timestamped samples
// ending the day before the fixture clock.
func toRawSamples(values []float64, loc domain.Location) []domain.RawSample {
	samples := make([]domain.RawSample, len(values))
	for i, v := range values {
		samples[i] = domain.RawSample{
			Timestamp: fixtureClock.AddDate(0, 0, -(len(values) - i)).Format(time.RFC3339),
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Value:     v,
		}
	}
	return samples
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
