package locate

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPermissionDenied means the operator refused location access. It is
	// fatal to the attempt and never silently replaced by a fallback.
	ErrPermissionDenied = errors.New("location permission denied")
	// ErrSourceUnavailable means no position source could be opened.
	ErrSourceUnavailable = errors.New("location source unavailable")
	// ErrNoFix means the attempt timed out with zero readings.
	ErrNoFix = errors.New("no location fix obtained")
)

// Reading is a single position sample.
type Reading struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"` // estimated error radius in meters
	Timestamp time.Time `json:"timestamp"`
	// Approximate marks IP or default fallback readings so consumers never
	// mistake them for a GPS fix.
	Approximate bool `json:"isApproximate,omitempty"`
}

// Source produces a lazy stream of readings. The channel closes when the
// source fails or ctx is cancelled; cancellation releases all resources.
type Source interface {
	Watch(ctx context.Context) (<-chan Reading, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (<-chan Reading, error)

func (f SourceFunc) Watch(ctx context.Context) (<-chan Reading, error) {
	return f(ctx)
}
