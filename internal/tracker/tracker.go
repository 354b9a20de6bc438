package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jlucaswrk/coldservice-recife/internal/geo"
	"github.com/jlucaswrk/coldservice-recife/internal/locate"
	"github.com/jlucaswrk/coldservice-recife/internal/registry"
	"github.com/jlucaswrk/coldservice-recife/internal/session"
	"github.com/jlucaswrk/coldservice-recife/internal/technician"
)

// State is the customer-facing view state. There is no terminal state; the
// view cycles between awaiting and tracking for the life of the session.
type State string

const (
	StateIdentify           State = "identify"
	StateAwaitingTechnician State = "awaiting-technician"
	StateTrackingActive     State = "tracking-active"
	StateTrackingStale      State = "tracking-stale"
)

// Registry is the API surface the reconciler needs.
type Registry interface {
	CreateSession(ctx context.Context, customerName, technicianID string) (session.Session, error)
	TechnicianPosition(ctx context.Context, technicianID string) (technician.Record, error)
}

// Snapshot is what the view renders after each poll cycle. Distance and ETA
// are present only when both positions are known; they are withheld rather
// than shown as zero.
type Snapshot struct {
	State         State
	Session       session.Session
	Technician    *technician.Record
	LastKnown     *technician.Record
	DistanceKm    float64
	DistanceLabel string
	ETALabel      string
	Neighborhood  string
}

// Tracker polls the registry and merges technician updates with the local
// customer position.
type Tracker struct {
	client   Registry
	interval time.Duration

	mu        sync.Mutex
	state     State
	sess      session.Session
	customer  *locate.Reading
	current   *technician.Record
	lastKnown *technician.Record
}

func New(client Registry, pollInterval time.Duration) *Tracker {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Tracker{
		client:   client,
		interval: pollInterval,
		state:    StateIdentify,
	}
}

// SetCustomerPosition feeds the acquisition result into the view.
func (t *Tracker) SetCustomerPosition(r locate.Reading) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.customer = &r
}

// Resume restores a persisted session without creating a new one.
func (t *Tracker) Resume(sess session.Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sess = sess
	t.state = StateAwaitingTechnician
}

// Start creates the session and moves the view out of identify.
func (t *Tracker) Start(ctx context.Context, customerName, technicianID string) (session.Session, error) {
	sess, err := t.client.CreateSession(ctx, customerName, technicianID)
	if err != nil {
		return session.Session{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sess = sess
	t.state = StateAwaitingTechnician
	return sess, nil
}

// Poll runs one reconcile cycle. A transport failure is swallowed and the
// previous state persists, so a flaky network never flickers the view
// between online and offline.
func (t *Tracker) Poll(ctx context.Context) {
	t.mu.Lock()
	if t.state == StateIdentify {
		t.mu.Unlock()
		return
	}
	technicianID := t.sess.TechnicianID
	t.mu.Unlock()

	rec, err := t.client.TechnicianPosition(ctx, technicianID)

	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case err == nil && rec.Online:
		t.current = &rec
		t.lastKnown = &rec
		t.state = StateTrackingActive
	case err == nil || errors.Is(err, registry.ErrNotFound):
		// offline, stale, or never seen: back to awaiting semantics, keeping
		// the last known position for context
		t.current = nil
		if t.lastKnown != nil {
			t.state = StateTrackingStale
		} else {
			t.state = StateAwaitingTechnician
		}
	default:
		// transient poll failure: no state change
	}
}

// Run polls at the configured cadence until ctx is cancelled. Cancelling
// releases the timer immediately.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.Poll(ctx)
	for {
		select {
		case <-ticker.C:
			t.Poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Snapshot derives the render state for the current cycle.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		State:      t.state,
		Session:    t.sess,
		Technician: t.current,
		LastKnown:  t.lastKnown,
	}

	if t.customer != nil {
		snap.Neighborhood = geo.NearestLandmark(t.customer.Latitude, t.customer.Longitude, geo.Landmarks()).Name
	}

	if t.state == StateTrackingActive && t.customer != nil && t.current != nil {
		km := geo.HaversineKm(t.customer.Latitude, t.customer.Longitude, t.current.Latitude, t.current.Longitude)
		snap.DistanceKm = km
		snap.DistanceLabel = geo.FormatDistanceLabel(km)
		snap.ETALabel = geo.EstimateArrivalLabel(km)
	}
	return snap
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
