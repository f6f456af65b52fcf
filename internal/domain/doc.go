// Package domain models the environmental signals and prediction types for
// drought/flood risk estimation.
//
// # Signals
//
// Five measurement streams feed every prediction: soil moisture (percent,
// 0–100), surface temperature (°C, -50–60), fire danger index (0–100), sea
// level (meters, 0–1), and glacier melt rate (mm/yr, 0–20). The upstream
// acquisition layer delivers each stream as an array of timestamped raw
// samples near a coordinate; deselected signals arrive as empty arrays, not
// as absent fields.
//
// # Sample validity
//
// A raw sample is dropped during cleaning when any of the following holds:
//
//	missing or unparsable RFC 3339 timestamp
//	timestamp more than ten years away from the current clock (stale or
//	  nonsense future instants)
//	latitude outside [-90, 90] or longitude outside [-180, 180]
//
// Dropping is silent by design: sparse or dirty data lowers the quality and
// completeness scores of the resulting feature vector instead of failing the
// prediction.
//
// # Risk levels
//
// Risk probabilities map to a four-level scale at fixed thresholds:
//
//	< 0.25 low | < 0.50 medium | < 0.75 high | ≥ 0.75 extreme
//
// The thresholds are part of the observable contract and must not drift.
//
// # Prediction identity
//
// Prediction IDs are deterministic SHA-256 hashes of model|lat|lon|time.
// Deterministic IDs make replays of the same scoring request idempotent on
// downstream consumers. See [NewPredictionID].
package domain
