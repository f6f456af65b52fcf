package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// ScoringRequest is the JSON payload carried on the scoring request topic.
// Samples arrive with the request; the streaming path never fetches from the
// upstream sample source.
type ScoringRequest struct {
	Location Location       `json:"location"`
	Toggles  FeatureToggles `json:"toggles"`
	Model    string         `json:"model"`
	Samples  SampleBatch    `json:"samples"`
}

// RawRequest is one unparsed scoring request with its source coordinates.
// Commit acknowledges the message once the result has been durably produced;
// it is nil when the source does not track offsets.
type RawRequest struct {
	Key       []byte
	Value     []byte
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// ParseScoringRequest decodes the wire payload.
func ParseScoringRequest(raw RawRequest) (ScoringRequest, error) {
	var req ScoringRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return ScoringRequest{}, fmt.Errorf("parse scoring request: %w", err)
	}
	return req, nil
}
