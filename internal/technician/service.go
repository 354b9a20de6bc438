package technician

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jlucaswrk/coldservice-recife/internal/stream"
)

var ErrTechnicianRequired = errors.New("technicianId is required")

const DefaultStalenessWindow = 30 * time.Second

type Service struct {
	store  Store
	hub    *stream.Hub
	window time.Duration
	now    func() time.Time
}

func NewService(store Store, hub *stream.Hub, window time.Duration) *Service {
	if window <= 0 {
		window = DefaultStalenessWindow
	}
	return &Service{store: store, hub: hub, window: window, now: time.Now}
}

// Publish stores the latest reading for a technician, last write wins.
// LastUpdate always comes from the registry clock; the device capture
// timestamp is kept verbatim when supplied so staleness never depends on the
// caller's clock.
func (s *Service) Publish(ctx context.Context, req PublishRequest) (Record, error) {
	if req.TechnicianID == "" {
		return Record{}, ErrTechnicianRequired
	}

	now := s.now()
	capture := now
	if req.Timestamp > 0 {
		capture = time.UnixMilli(req.Timestamp)
	}

	rec := Record{
		TechnicianID: req.TechnicianID,
		SessionID:    req.SessionID,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Timestamp:    capture,
		Online:       req.Online == nil || *req.Online,
		LastUpdate:   now,
	}

	if err := s.store.Upsert(ctx, rec); err != nil {
		return Record{}, err
	}

	if s.hub != nil {
		payload, _ := json.Marshal(rec)
		s.hub.Broadcast(rec.TechnicianID, payload)
	}
	return rec, nil
}

// Get returns the latest record with the staleness override applied: a
// technician with no publish inside the window reads as offline regardless of
// the stored flag. The stored record is never mutated.
func (s *Service) Get(ctx context.Context, technicianID string) (Record, error) {
	rec, err := s.store.Get(ctx, technicianID)
	if err != nil {
		return Record{}, err
	}
	return s.applyStaleness(rec), nil
}

// List returns all known technicians, each staleness-filtered.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, s.applyStaleness(rec))
	}
	return out, nil
}

func (s *Service) applyStaleness(rec Record) Record {
	if s.now().Sub(rec.LastUpdate) > s.window {
		rec.Online = false
	}
	return rec
}
