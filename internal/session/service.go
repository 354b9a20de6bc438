package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNameRequired = errors.New("customerName is required")

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create opens a new active session. No record is written when the name is
// missing.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Session, error) {
	if req.CustomerName == "" {
		return Session{}, ErrNameRequired
	}
	if req.TechnicianID == "" {
		req.TechnicianID = DefaultTechnicianID
	}

	sess := Session{
		SessionID:     "session_" + uuid.NewString(),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		TechnicianID:  req.TechnicianID,
		CreatedAt:     s.now(),
		Status:        StatusActive,
	}
	if err := s.store.Put(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *Service) Get(ctx context.Context, sessionID string) (Session, error) {
	return s.store.Get(ctx, sessionID)
}

func (s *Service) ListActive(ctx context.Context) ([]Session, error) {
	return s.store.ListActive(ctx)
}

// TrackingURL is the path a customer opens to follow the visit.
func TrackingURL(sessionID string) string {
	return "/atendimento/" + sessionID
}
