package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/predict"
)

// RequestScorer implements Scorer on top of the prediction orchestrator.
// The samples carried in the request are scored as-is; the streaming path
// never reaches for the upstream sample source.
type RequestScorer struct {
	orchestrator *predict.Orchestrator
	logger       *slog.Logger
}

// NewRequestScorer creates a RequestScorer.
func NewRequestScorer(orchestrator *predict.Orchestrator, logger *slog.Logger) *RequestScorer {
	return &RequestScorer{orchestrator: orchestrator, logger: logger}
}

func (s *RequestScorer) Score(_ context.Context, raw domain.RawRequest) (domain.PredictionResult, error) {
	req, err := domain.ParseScoringRequest(raw)
	if err != nil {
		return domain.PredictionResult{}, err
	}

	return s.orchestrator.Score(predict.Request{
		Location: req.Location,
		Toggles:  req.Toggles,
		Model:    req.Model,
	}, req.Samples)
}
