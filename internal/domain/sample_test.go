package domain

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSample(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)))
	defer SetClock(nil)

	valid := RawSample{
		Timestamp: "2026-02-28T09:00:00Z",
		Latitude:  20,
		Longitude: 10,
		Value:     12.5,
	}

	tests := []struct {
		name   string
		mutate func(s RawSample) RawSample
		strict bool
		want   DropReason
	}{
		{
			name:   "valid sample passes",
			mutate: func(s RawSample) RawSample { return s },
			strict: true,
			want:   DropNone,
		},
		{
			name:   "missing timestamp",
			mutate: func(s RawSample) RawSample { s.Timestamp = ""; return s },
			strict: false,
			want:   DropMissingTimestamp,
		},
		{
			name:   "unparsable timestamp",
			mutate: func(s RawSample) RawSample { s.Timestamp = "not-a-time"; return s },
			strict: false,
			want:   DropBadTimestamp,
		},
		{
			name:   "eleven year old sample dropped when strict",
			mutate: func(s RawSample) RawSample { s.Timestamp = "2015-02-28T09:00:00Z"; return s },
			strict: true,
			want:   DropStaleTimestamp,
		},
		{
			name:   "eleven year old sample kept when lax",
			mutate: func(s RawSample) RawSample { s.Timestamp = "2015-02-28T09:00:00Z"; return s },
			strict: false,
			want:   DropNone,
		},
		{
			name:   "far future timestamp dropped when strict",
			mutate: func(s RawSample) RawSample { s.Timestamp = "2040-01-01T00:00:00Z"; return s },
			strict: true,
			want:   DropStaleTimestamp,
		},
		{
			name:   "latitude out of range",
			mutate: func(s RawSample) RawSample { s.Latitude = 91; return s },
			strict: false,
			want:   DropBadCoordinates,
		},
		{
			name:   "longitude out of range",
			mutate: func(s RawSample) RawSample { s.Longitude = -181; return s },
			strict: false,
			want:   DropBadCoordinates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckSample(tt.mutate(valid), tt.strict))
		})
	}
}

func TestLocationValidate(t *testing.T) {
	assert.NoError(t, Location{Latitude: 20, Longitude: 10}.Validate())
	assert.ErrorIs(t, Location{Latitude: -90.5, Longitude: 0}.Validate(), ErrInvalidLocation)
	assert.ErrorIs(t, Location{Latitude: 0, Longitude: 180.1}.Validate(), ErrInvalidLocation)
}

func TestRiskLevelFor(t *testing.T) {
	tests := []struct {
		probability float64
		want        RiskLevel
	}{
		{0, RiskLow},
		{0.2499, RiskLow},
		{0.25, RiskMedium},
		{0.4999, RiskMedium},
		{0.5, RiskHigh},
		{0.7499, RiskHigh},
		{0.75, RiskExtreme},
		{0.9, RiskExtreme},
		{1, RiskExtreme},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevelFor(tt.probability), "probability %.4f", tt.probability)
	}
}

func TestFeatureToggles(t *testing.T) {
	toggles := FeatureToggles{SoilMoisture: true, SeaLevel: true}
	assert.Equal(t, 2, toggles.EnabledCount())
	assert.True(t, toggles.Enabled(SignalSoilMoisture))
	assert.False(t, toggles.Enabled(SignalTemperature))
}

func TestSampleBatchSeriesRoundTrip(t *testing.T) {
	var batch SampleBatch
	samples := []RawSample{{Timestamp: "2026-01-01T00:00:00Z", Value: 1}}
	for _, signal := range Signals() {
		batch.SetSeries(signal, samples)
		assert.Len(t, batch.Series(signal), 1)
	}
}

// --- fetch join ---

type stubSource struct {
	samples map[Signal][]RawSample
	err     map[Signal]error
}

func (s *stubSource) FetchSamples(_ context.Context, signal Signal, _ Location) ([]RawSample, error) {
	if err := s.err[signal]; err != nil {
		return nil, err
	}
	return s.samples[signal], nil
}

func TestFetchSignals(t *testing.T) {
	loc := Location{Latitude: 20, Longitude: 10}
	sample := RawSample{Timestamp: "2026-01-01T00:00:00Z", Latitude: 20, Longitude: 10, Value: 3}

	t.Run("fetches only selected signals", func(t *testing.T) {
		source := &stubSource{samples: map[Signal][]RawSample{
			SignalSoilMoisture: {sample},
			SignalTemperature:  {sample, sample},
		}}
		toggles := FeatureToggles{SoilMoisture: true, SurfaceTemperature: true}

		batch := FetchSignals(context.Background(), source, loc, toggles, slog.Default())
		assert.Len(t, batch.SoilMoisture, 1)
		assert.Len(t, batch.Temperature, 2)
		assert.Empty(t, batch.FireIndex)
		assert.Empty(t, batch.SeaLevel)
		assert.Empty(t, batch.GlacierMelt)
	})

	t.Run("fetch failure degrades to empty series", func(t *testing.T) {
		source := &stubSource{
			samples: map[Signal][]RawSample{SignalSoilMoisture: {sample}},
			err:     map[Signal]error{SignalTemperature: errors.New("upstream 503")},
		}
		toggles := FeatureToggles{SoilMoisture: true, SurfaceTemperature: true}

		batch := FetchSignals(context.Background(), source, loc, toggles, slog.Default())
		require.Len(t, batch.SoilMoisture, 1)
		assert.Empty(t, batch.Temperature)
	})

	t.Run("nil source yields empty batch", func(t *testing.T) {
		batch := FetchSignals(context.Background(), nil, loc, FeatureToggles{SoilMoisture: true}, slog.Default())
		assert.Empty(t, batch.SoilMoisture)
	})
}
