package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// RiskLevel is the four-step severity scale for a risk probability.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskExtreme RiskLevel = "extreme"
)

// RiskLevelFor buckets a probability into a RiskLevel at the fixed
// 0.25/0.50/0.75 thresholds. The function is a non-decreasing step function
// of probability; boundary values land in the higher bucket.
func RiskLevelFor(probability float64) RiskLevel {
	switch {
	case probability < 0.25:
		return RiskLow
	case probability < 0.5:
		return RiskMedium
	case probability < 0.75:
		return RiskHigh
	default:
		return RiskExtreme
	}
}

// ModelPrediction is the raw output of a single predictor.
// All risk and confidence values are bounded to [0,1] by the producer.
type ModelPrediction struct {
	DroughtRisk float64 `json:"drought_risk"`
	FloodRisk   float64 `json:"flood_risk"`
	Confidence  float64 `json:"confidence"`

	// Uncertainty and FeatureImportance are produced by the enhanced
	// neural predictor only; nil/absent otherwise.
	Uncertainty       *float64  `json:"uncertainty,omitempty"`
	FeatureImportance []float64 `json:"feature_importance,omitempty"`
}

// RiskAssessment is one user-facing risk figure: the bucketed level plus the
// probability and confidence behind it.
type RiskAssessment struct {
	Level       RiskLevel `json:"level"`
	Probability float64   `json:"probability"`
	Confidence  float64   `json:"confidence"`
}

// PredictionResult is the user-facing aggregate for one prediction request.
// Immutable after creation; held only in the in-memory result history.
type PredictionResult struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Location  Location  `json:"location"`

	Drought RiskAssessment `json:"drought"`
	Flood   RiskAssessment `json:"flood"`

	Model   string         `json:"model"`
	Toggles FeatureToggles `json:"toggles"`

	// DataPoints carries the mean raw value per selected signal, for
	// display only; downstream computation never reads these.
	DataPoints map[Signal]float64 `json:"data_points"`
}

// NewPredictionID produces a deterministic ID from the request's key fields,
// so replaying the same scoring request yields the same ID downstream.
func NewPredictionID(model string, loc Location, at time.Time) string {
	input := fmt.Sprintf("%s|%.4f|%.4f|%d", model, loc.Latitude, loc.Longitude, at.UnixNano())
	hash := sha256.Sum256([]byte(input))
	return model + "-" + hex.EncodeToString(hash[:8])
}
