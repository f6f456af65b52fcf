package domain

import (
	"context"
	"log/slog"
	"sync"
)

// SampleSource fetches raw samples for one signal near a coordinate.
// Implementations live in the adapter layer; the core only consumes the
// already-fetched arrays.
type SampleSource interface {
	FetchSamples(ctx context.Context, signal Signal, loc Location) ([]RawSample, error)
}

// FetchSignals gathers raw samples for every selected signal concurrently
// and waits for all five slots to settle before returning. Deselected
// signals yield empty arrays without a fetch; a failed fetch logs a warning
// and degrades to an empty array for that signal rather than failing the
// batch. The five fetches are independent reads, so the only coordination
// is the final join.
func FetchSignals(ctx context.Context, source SampleSource, loc Location, toggles FeatureToggles, logger *slog.Logger) SampleBatch {
	var batch SampleBatch
	if source == nil {
		return batch
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, signal := range Signals() {
		if !toggles.Enabled(signal) {
			continue
		}
		wg.Add(1)
		go func(signal Signal) {
			defer wg.Done()
			samples, err := source.FetchSamples(ctx, signal, loc)
			if err != nil {
				logger.Warn("sample fetch failed, degrading to empty series",
					"signal", signal,
					"lat", loc.Latitude,
					"lon", loc.Longitude,
					"error", err,
				)
				return
			}
			mu.Lock()
			batch.SetSeries(signal, samples)
			mu.Unlock()
		}(signal)
	}
	wg.Wait()

	return batch
}
