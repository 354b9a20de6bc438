package tracker

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/jlucaswrk/coldservice-recife/internal/session"
)

// ClientStateTTL bounds how long a persisted tracking session may be resumed.
const ClientStateTTL = 2 * time.Hour

var ErrStateExpired = errors.New("persisted tracking state expired")

// ClientState is the single record a customer device keeps to resume an
// in-progress tracking session across restarts. Its expiry is independent of
// the server-side session lifetime.
type ClientState struct {
	Name             string            `json:"name"`
	SessionID        string            `json:"sessionId"`
	CustomerLocation *session.Location `json:"customerLocation"`
	NeighborhoodName string            `json:"neighborhoodName"`
	Timestamp        time.Time         `json:"timestamp"`
}

func SaveClientState(path string, state ClientState) error {
	if state.Timestamp.IsZero() {
		state.Timestamp = time.Now()
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func LoadClientState(path string) (ClientState, error) {
	return loadClientStateAt(path, time.Now())
}

func loadClientStateAt(path string, now time.Time) (ClientState, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return ClientState{}, err
	}

	var state ClientState
	if err := json.Unmarshal(payload, &state); err != nil {
		return ClientState{}, err
	}
	if now.Sub(state.Timestamp) > ClientStateTTL {
		return ClientState{}, ErrStateExpired
	}
	return state, nil
}
