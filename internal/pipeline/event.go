// SPDX-License-Identifier: MIT
package pipeline

import (
	"math"
	"time"
)

// EventKind names an outbound pipeline event.
type EventKind string

const (
	EventKey        EventKind = "key"
	EventMultitone  EventKind = "multitone"
	EventOverflow   EventKind = "overflow"
	EventStraddle   EventKind = "straddle"
	EventBand       EventKind = "band"
	EventCalibrated EventKind = "calibrated"
	EventReset      EventKind = "reset"
	EventAlgorithm  EventKind = "algorithm"
)

// IsError reports whether the event is one of the three error signals.
func (k EventKind) IsError() bool {
	return k == EventMultitone || k == EventOverflow || k == EventStraddle
}

// Event is what the pipeline sends to its transport. It marshals to JSON
// for the WebSocket clients.
type Event struct {
	Kind       EventKind `json:"kind"`
	Time       time.Time `json:"time"`
	Generation uint64    `json:"generation,omitempty"`
	Key        string    `json:"key,omitempty"`
	Sequence   string    `json:"sequence,omitempty"`
	Low        int       `json:"low,omitempty"`
	High       int       `json:"high,omitempty"`
	Band       int       `json:"band,omitempty"`
	Mask       float64   `json:"mask,omitempty"`
	Algorithm  string    `json:"algorithm,omitempty"`
}

// finite keeps JSON encoding from failing on the calibrator's edge values.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
