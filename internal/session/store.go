package session

import (
	"context"
	"errors"
	"sync"

	"github.com/jlucaswrk/coldservice-recife/internal/db"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("session not found")

// Store is the injected persistence boundary for customer sessions.
type Store interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (Session, error)
	ListActive(ctx context.Context) ([]Session, error)
}

// MemoryStore keeps sessions in process memory. Suits a single instance and
// tests; production deployments use PostgresStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]Session{}}
}

func (m *MemoryStore) Put(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) ListActive(_ context.Context) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Session
	for _, s := range m.sessions {
		if s.Status == StatusActive {
			out = append(out, s)
		}
	}
	return out, nil
}

// PostgresStore persists sessions through a db.Querier so pgxmock can stand
// in for the pool in tests.
type PostgresStore struct {
	db db.Querier
}

func NewPostgresStore(q db.Querier) *PostgresStore {
	return &PostgresStore{db: q}
}

func (p *PostgresStore) Put(ctx context.Context, s Session) error {
	var lat, lng any
	if s.CustomerLocation != nil {
		lat = s.CustomerLocation.Latitude
		lng = s.CustomerLocation.Longitude
	}
	_, err := p.db.Exec(ctx, `
		INSERT INTO customer_sessions (session_id, customer_name, customer_phone, technician_id, customer_lat, customer_lng, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (session_id) DO UPDATE
		SET customer_name=EXCLUDED.customer_name,
		    customer_phone=EXCLUDED.customer_phone,
		    technician_id=EXCLUDED.technician_id,
		    customer_lat=EXCLUDED.customer_lat,
		    customer_lng=EXCLUDED.customer_lng,
		    status=EXCLUDED.status
	`, s.SessionID, s.CustomerName, s.CustomerPhone, s.TechnicianID, lat, lng, s.Status, s.CreatedAt)
	return err
}

func (p *PostgresStore) Get(ctx context.Context, sessionID string) (Session, error) {
	row := p.db.QueryRow(ctx, `
		SELECT session_id, customer_name, COALESCE(customer_phone,''), technician_id, customer_lat, customer_lng, status, created_at
		FROM customer_sessions WHERE session_id=$1
	`, sessionID)

	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return s, err
}

func (p *PostgresStore) ListActive(ctx context.Context) ([]Session, error) {
	rows, err := p.db.Query(ctx, `
		SELECT session_id, customer_name, COALESCE(customer_phone,''), technician_id, customer_lat, customer_lng, status, created_at
		FROM customer_sessions WHERE status=$1
		ORDER BY created_at DESC
	`, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSession(row pgx.Row) (Session, error) {
	var s Session
	var lat, lng *float64
	if err := row.Scan(&s.SessionID, &s.CustomerName, &s.CustomerPhone, &s.TechnicianID, &lat, &lng, &s.Status, &s.CreatedAt); err != nil {
		return Session{}, err
	}
	if lat != nil && lng != nil {
		s.CustomerLocation = &Location{Latitude: *lat, Longitude: *lng}
	}
	return s, nil
}
