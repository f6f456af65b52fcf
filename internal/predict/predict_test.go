package predict

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/model"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
)

var testNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func dailySamples(n int, value float64) []domain.RawSample {
	samples := make([]domain.RawSample, n)
	for i := 0; i < n; i++ {
		samples[i] = domain.RawSample{
			Timestamp: testNow.AddDate(0, 0, -(n - i)).Format(time.RFC3339),
			Latitude:  20, Longitude: 10, Value: value,
		}
	}
	return samples
}

type stubSource struct {
	mu    sync.Mutex
	calls int
	batch domain.SampleBatch
	err   error
}

func (s *stubSource) FetchSamples(_ context.Context, signal domain.Signal, _ domain.Location) ([]domain.RawSample, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.batch.Series(signal), nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func allToggles() domain.FeatureToggles {
	return domain.FeatureToggles{
		SoilMoisture:       true,
		SurfaceTemperature: true,
		FireIndex:          true,
		SeaLevel:           true,
		GlacierMelting:     true,
	}
}

// saharaBatch is a strongly drought-shaped sample set: dry soil, hot, high
// fire danger, negligible sea level and glacier melt.
func saharaBatch(n int) domain.SampleBatch {
	return domain.SampleBatch{
		SoilMoisture: dailySamples(n, 5),
		Temperature:  dailySamples(n, 40),
		FireIndex:    dailySamples(n, 90),
		SeaLevel:     dailySamples(n, 0.01),
		GlacierMelt:  dailySamples(n, 0.1),
	}
}

func newOrchestrator(t *testing.T, source domain.SampleSource) *Orchestrator {
	t.Helper()
	logger := slog.Default()
	metrics := observability.NewMetricsForTesting()
	return NewOrchestrator(logger, metrics, source, model.NewManager(logger, metrics, 1))
}

func TestOrchestrator_SaharaDroughtOutweighsFlood(t *testing.T) {
	freezeClock(t)
	source := &stubSource{batch: saharaBatch(30)}
	o := newOrchestrator(t, source)

	result, err := o.Predict(context.Background(), Request{
		Location: domain.Location{Latitude: 20, Longitude: 10},
		Toggles:  allToggles(),
		Model:    model.IDLinear,
	})
	require.NoError(t, err)

	assert.Greater(t, result.Drought.Probability, result.Flood.Probability)
	assert.Equal(t, model.IDLinear, result.Model)
	assert.Equal(t, 5, source.callCount())

	// Consistent 30-sample signals keep quality high, so confidence stays
	// close to the model's own heuristic and well above zero.
	assert.Greater(t, result.Drought.Confidence, 0.5)
	assert.LessOrEqual(t, result.Drought.Confidence, 0.95)
	assert.Equal(t, result.Drought.Confidence, result.Flood.Confidence)

	// All five signals selected: all five raw means surface.
	require.Len(t, result.DataPoints, 5)
	assert.InDelta(t, 40, result.DataPoints[domain.SignalTemperature], 1e-9)
}

func TestOrchestrator_RejectsSingleToggle(t *testing.T) {
	freezeClock(t)
	source := &stubSource{batch: saharaBatch(30)}
	o := newOrchestrator(t, source)

	_, err := o.Predict(context.Background(), Request{
		Location: domain.Location{Latitude: 20, Longitude: 10},
		Toggles:  domain.FeatureToggles{SoilMoisture: true},
		Model:    model.IDLinear,
	})
	require.ErrorIs(t, err, ErrTooFewSignals)

	// Rejected before any data work: no fetches, no stored result.
	assert.Zero(t, source.callCount())
	assert.Empty(t, o.Results())
}

func TestOrchestrator_RejectsUnknownModel(t *testing.T) {
	freezeClock(t)
	source := &stubSource{batch: saharaBatch(30)}
	o := newOrchestrator(t, source)

	_, err := o.Predict(context.Background(), Request{
		Location: domain.Location{Latitude: 20, Longitude: 10},
		Toggles:  allToggles(),
		Model:    "svm",
	})
	require.ErrorIs(t, err, model.ErrUnknownModel)
	assert.Zero(t, source.callCount())
}

func TestOrchestrator_RejectsInvalidLocation(t *testing.T) {
	freezeClock(t)
	o := newOrchestrator(t, &stubSource{})

	_, err := o.Predict(context.Background(), Request{
		Location: domain.Location{Latitude: 99, Longitude: 10},
		Toggles:  allToggles(),
		Model:    model.IDLinear,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidLocation)
}

func TestOrchestrator_EmptySignalsDegradeNotFail(t *testing.T) {
	freezeClock(t)
	o := newOrchestrator(t, &stubSource{}) // every fetch returns nil samples

	result, err := o.Predict(context.Background(), Request{
		Location: domain.Location{Latitude: 52, Longitude: 40},
		Toggles:  allToggles(),
		Model:    model.IDLinear,
	})
	require.NoError(t, err)

	// Zero quality erases confidence but the prediction still lands.
	assert.Zero(t, result.Drought.Confidence)
	assert.Zero(t, result.Flood.Confidence)
	assert.Len(t, o.Results(), 1)
}

func TestOrchestrator_FetchFailureDegrades(t *testing.T) {
	freezeClock(t)
	source := &stubSource{err: errors.New("upstream 503")}
	o := newOrchestrator(t, source)

	result, err := o.Predict(context.Background(), Request{
		Location: domain.Location{Latitude: 52, Longitude: 40},
		Toggles:  allToggles(),
		Model:    model.IDLinear,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Drought.Confidence)
}

func TestOrchestrator_RoutesEnhancedPathOnlyForNeuralAndEnsemble(t *testing.T) {
	freezeClock(t)

	// Every sample is far older than the staleness window. The enhanced
	// pipeline drops them; the basic pipeline keeps them. The surviving raw
	// means reveal which path a model took.
	old := make([]domain.RawSample, 12)
	for i := range old {
		old[i] = domain.RawSample{Timestamp: "2010-06-01T00:00:00Z", Latitude: 20, Longitude: 10, Value: 40}
	}
	batch := domain.SampleBatch{}
	for _, signal := range domain.Signals() {
		batch.SetSeries(signal, old)
	}
	source := &stubSource{batch: batch}
	o := newOrchestrator(t, source)
	req := Request{
		Location: domain.Location{Latitude: 52, Longitude: 40},
		Toggles:  allToggles(),
	}

	req.Model = model.IDLinear
	basic, err := o.Predict(context.Background(), req)
	require.NoError(t, err)
	assert.InDelta(t, 40, basic.DataPoints[domain.SignalSoilMoisture], 1e-9)

	req.Model = model.IDEnsemble
	enhanced, err := o.Predict(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, enhanced.DataPoints[domain.SignalSoilMoisture])
}

func TestOrchestrator_HistoryMostRecentFirst(t *testing.T) {
	freezeClock(t)
	source := &stubSource{batch: saharaBatch(10)}
	o := newOrchestrator(t, source)
	req := Request{
		Location: domain.Location{Latitude: 20, Longitude: 10},
		Toggles:  allToggles(),
		Model:    model.IDLinear,
	}

	_, err := o.Predict(context.Background(), req)
	require.NoError(t, err)
	req.Model = model.IDForest
	second, err := o.Predict(context.Background(), req)
	require.NoError(t, err)

	results := o.Results()
	require.Len(t, results, 2)
	assert.Equal(t, second.ID, results[0].ID)
	assert.Equal(t, model.IDForest, results[0].Model)

	o.Clear()
	assert.Empty(t, o.Results())
}

func TestOrchestrator_DeselectedSignalsOmittedFromDataPoints(t *testing.T) {
	freezeClock(t)
	source := &stubSource{batch: saharaBatch(10)}
	o := newOrchestrator(t, source)

	result, err := o.Predict(context.Background(), Request{
		Location: domain.Location{Latitude: 20, Longitude: 10},
		Toggles: domain.FeatureToggles{
			SoilMoisture:       true,
			SurfaceTemperature: true,
		},
		Model: model.IDLinear,
	})
	require.NoError(t, err)

	require.Len(t, result.DataPoints, 2)
	_, ok := result.DataPoints[domain.SignalSeaLevel]
	assert.False(t, ok)
}

func TestStore_Ordering(t *testing.T) {
	s := NewStore()
	s.Add(domain.PredictionResult{ID: "a"})
	s.Add(domain.PredictionResult{ID: "b"})

	results := s.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].ID)
	assert.Equal(t, 2, s.Len())

	s.Clear()
	assert.Zero(t, s.Len())
}
