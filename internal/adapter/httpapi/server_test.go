package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/adapter/httpapi"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/model"
	"github.com/couchcryptid/climate-risk-engine/internal/observability"
	"github.com/couchcryptid/climate-risk-engine/internal/predict"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type stubSource struct{}

func (stubSource) FetchSamples(_ context.Context, _ domain.Signal, loc domain.Location) ([]domain.RawSample, error) {
	samples := make([]domain.RawSample, 12)
	for i := range samples {
		samples[i] = domain.RawSample{
			Timestamp: "2026-02-01T00:00:00Z",
			Latitude:  loc.Latitude, Longitude: loc.Longitude,
			Value: 10,
		}
	}
	return samples, nil
}

func newTestServer(t *testing.T, ready httpapi.ReadinessChecker, rps float64, burst int) *httpapi.Server {
	t.Helper()
	logger := slog.Default()
	metrics := observability.NewMetricsForTesting()
	orchestrator := predict.NewOrchestrator(logger, metrics, stubSource{}, model.NewManager(logger, metrics, 1))
	return httpapi.NewServer(httpapi.Options{
		Addr:           ":0",
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}, orchestrator, ready, logger, metrics)
}

func predictBody(modelID string, lat float64) string {
	return fmt.Sprintf(`{
		"location": {"latitude": %.1f, "longitude": 10},
		"toggles": {"soil_moisture": true, "surface_temperature": true},
		"model": %q
	}`, lat, modelID)
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(t, &mockReadiness{}, 100, 100)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReflectsChecker(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := newTestServer(t, &mockReadiness{}, 100, 100)
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		srv := newTestServer(t, &mockReadiness{err: fmt.Errorf("not ready yet")}, 100, 100)
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not ready yet", body["error"])
	})

	t.Run("nil checker reports ready", func(t *testing.T) {
		srv := newTestServer(t, nil, 100, 100)
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &mockReadiness{}, 100, 100)
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestPredictReturnsResult(t *testing.T) {
	srv := newTestServer(t, &mockReadiness{}, 100, 100)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/predictions", strings.NewReader(predictBody("linear", 20)))

	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result domain.PredictionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "linear", result.Model)
	assert.Contains(t, []domain.RiskLevel{
		domain.RiskLow, domain.RiskMedium, domain.RiskHigh, domain.RiskExtreme,
	}, result.Drought.Level)
}

func TestPredictRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "malformed json",
			body: `{not json`,
			want: "invalid request body",
		},
		{
			name: "unknown model",
			body: predictBody("svm", 20),
			want: "unknown model",
		},
		{
			name: "latitude out of range",
			body: predictBody("linear", 99),
			want: "latitude",
		},
		{
			name: "too few signals",
			body: `{
				"location": {"latitude": 20, "longitude": 10},
				"toggles": {"soil_moisture": true},
				"model": "linear"
			}`,
			want: "at least 2 signals",
		},
	}

	srv := newTestServer(t, &mockReadiness{}, 100, 100)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/predictions", strings.NewReader(tt.body))

			srv.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestPredictRateLimited(t *testing.T) {
	// Burst of 1 with a negligible refill rate: the second request must be
	// rejected with 429.
	srv := newTestServer(t, &mockReadiness{}, 0.001, 1)

	first := httptest.NewRecorder()
	srv.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/v1/predictions", strings.NewReader(predictBody("linear", 20))))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	srv.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/v1/predictions", strings.NewReader(predictBody("linear", 20))))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "rate limit exceeded")
}

func TestHistoryAndClear(t *testing.T) {
	srv := newTestServer(t, &mockReadiness{}, 100, 100)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/predictions", strings.NewReader(predictBody("linear", 20))))
	require.Equal(t, http.StatusOK, rec.Code)

	history := httptest.NewRecorder()
	srv.ServeHTTP(history, httptest.NewRequest(http.MethodGet, "/v1/predictions", nil))
	require.Equal(t, http.StatusOK, history.Code)

	var listing struct {
		Count       int                       `json:"count"`
		Predictions []domain.PredictionResult `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(history.Body.Bytes(), &listing))
	assert.Equal(t, 1, listing.Count)
	require.Len(t, listing.Predictions, 1)
	assert.Equal(t, "linear", listing.Predictions[0].Model)

	cleared := httptest.NewRecorder()
	srv.ServeHTTP(cleared, httptest.NewRequest(http.MethodDelete, "/v1/predictions", nil))
	assert.Equal(t, http.StatusNoContent, cleared.Code)

	after := httptest.NewRecorder()
	srv.ServeHTTP(after, httptest.NewRequest(http.MethodGet, "/v1/predictions", nil))
	require.NoError(t, json.Unmarshal(after.Body.Bytes(), &listing))
	assert.Equal(t, 0, listing.Count)
}
