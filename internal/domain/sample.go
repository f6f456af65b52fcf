package domain

import (
	"errors"
	"fmt"
	"time"
)

// Signal identifies one of the five environmental measurement streams.
type Signal string

const (
	SignalSoilMoisture Signal = "soil_moisture"
	SignalTemperature  Signal = "temperature"
	SignalFireIndex    Signal = "fire_index"
	SignalSeaLevel     Signal = "sea_level"
	SignalGlacierMelt  Signal = "glacier_melt"
)

// Signals returns the five signals in canonical feature-slot order.
// This order keys the feature vector layout and must never change.
func Signals() [5]Signal {
	return [5]Signal{
		SignalSoilMoisture,
		SignalTemperature,
		SignalFireIndex,
		SignalSeaLevel,
		SignalGlacierMelt,
	}
}

// RawSample is a single timestamped measurement as delivered by the
// acquisition layer. The timestamp stays in wire form (RFC 3339 string)
// until cleaning, mirroring the upstream JSON payload.
type RawSample struct {
	Timestamp string  `json:"timestamp"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Value     float64 `json:"value"`
}

// SampleBatch groups the per-signal raw sample arrays for one prediction
// request. Deselected signals carry empty (or nil) slices.
type SampleBatch struct {
	SoilMoisture []RawSample `json:"soil_moisture"`
	Temperature  []RawSample `json:"temperature"`
	FireIndex    []RawSample `json:"fire_index"`
	SeaLevel     []RawSample `json:"sea_level"`
	GlacierMelt  []RawSample `json:"glacier_melt"`
}

// Series returns the sample array for the given signal.
func (b SampleBatch) Series(s Signal) []RawSample {
	switch s {
	case SignalSoilMoisture:
		return b.SoilMoisture
	case SignalTemperature:
		return b.Temperature
	case SignalFireIndex:
		return b.FireIndex
	case SignalSeaLevel:
		return b.SeaLevel
	case SignalGlacierMelt:
		return b.GlacierMelt
	default:
		return nil
	}
}

// SetSeries replaces the sample array for the given signal.
func (b *SampleBatch) SetSeries(s Signal, samples []RawSample) {
	switch s {
	case SignalSoilMoisture:
		b.SoilMoisture = samples
	case SignalTemperature:
		b.Temperature = samples
	case SignalFireIndex:
		b.FireIndex = samples
	case SignalSeaLevel:
		b.SeaLevel = samples
	case SignalGlacierMelt:
		b.GlacierMelt = samples
	}
}

// FeatureToggles records which signals the caller selected for a prediction.
type FeatureToggles struct {
	SoilMoisture       bool `json:"soil_moisture"`
	SurfaceTemperature bool `json:"surface_temperature"`
	FireIndex          bool `json:"fire_index"`
	SeaLevel           bool `json:"sea_level"`
	GlacierMelting     bool `json:"glacier_melting"`
}

// Enabled reports whether the given signal is selected.
func (t FeatureToggles) Enabled(s Signal) bool {
	switch s {
	case SignalSoilMoisture:
		return t.SoilMoisture
	case SignalTemperature:
		return t.SurfaceTemperature
	case SignalFireIndex:
		return t.FireIndex
	case SignalSeaLevel:
		return t.SeaLevel
	case SignalGlacierMelt:
		return t.GlacierMelting
	default:
		return false
	}
}

// EnabledCount returns the number of selected signals.
func (t FeatureToggles) EnabledCount() int {
	n := 0
	for _, s := range Signals() {
		if t.Enabled(s) {
			n++
		}
	}
	return n
}

// Location is a WGS-84 coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ErrInvalidLocation marks coordinates outside the valid WGS-84 ranges.
var ErrInvalidLocation = errors.New("invalid location")

// Validate checks the coordinate ranges.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude %.4f outside [-90,90]", ErrInvalidLocation, l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude %.4f outside [-180,180]", ErrInvalidLocation, l.Longitude)
	}
	return nil
}

// maxSampleAge is how far a sample timestamp may sit from the current clock
// in either direction before the sample is considered stale or nonsensical.
const maxSampleAge = 10 * 365 * 24 * time.Hour

// DropReason explains why a raw sample was discarded during cleaning.
// Used as a metrics label, so values are stable snake_case strings.
type DropReason string

const (
	DropNone             DropReason = ""
	DropMissingTimestamp DropReason = "missing_timestamp"
	DropBadTimestamp     DropReason = "bad_timestamp"
	DropStaleTimestamp   DropReason = "stale_timestamp"
	DropBadCoordinates   DropReason = "bad_coordinates"
)

// CheckSample validates a raw sample against the current clock. It returns
// DropNone for a usable sample, or the reason it must be discarded.
// Staleness is only enforced when strict is true (the enhanced pipeline);
// the basic pipeline accepts any parsable timestamp.
func CheckSample(s RawSample, strict bool) DropReason {
	if s.Timestamp == "" {
		return DropMissingTimestamp
	}
	ts, err := time.Parse(time.RFC3339, s.Timestamp)
	if err != nil {
		return DropBadTimestamp
	}
	if strict {
		now := clock.Now()
		age := now.Sub(ts)
		if age > maxSampleAge || age < -maxSampleAge {
			return DropStaleTimestamp
		}
	}
	if s.Latitude < -90 || s.Latitude > 90 || s.Longitude < -180 || s.Longitude > 180 {
		return DropBadCoordinates
	}
	return DropNone
}
