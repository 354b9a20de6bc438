package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jlucaswrk/coldservice-recife/internal/registry"
	"github.com/jlucaswrk/coldservice-recife/internal/session"
	"github.com/jlucaswrk/coldservice-recife/internal/tracker"
)

func newSessionStub(t *testing.T, sessions map[string]session.Session) *registry.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessions[r.URL.Query().Get("sessionId")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Session not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(sess)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return registry.NewClient(srv.URL)
}

func TestResumeSessionMissingState(t *testing.T) {
	client := newSessionStub(t, nil)

	_, resumed := resumeSession(context.Background(), client, filepath.Join(t.TempDir(), "absent.json"))
	if resumed {
		t.Fatalf("must start fresh without persisted state")
	}
}

func TestResumeSessionActive(t *testing.T) {
	sess := session.Session{SessionID: "session_live", CustomerName: "Ana", Status: session.StatusActive}
	client := newSessionStub(t, map[string]session.Session{"session_live": sess})

	path := filepath.Join(t.TempDir(), "tracking.json")
	if err := tracker.SaveClientState(path, tracker.ClientState{Name: "Ana", SessionID: "session_live"}); err != nil {
		t.Fatalf("save state: %v", err)
	}

	got, resumed := resumeSession(context.Background(), client, path)
	if !resumed {
		t.Fatalf("expected resume for active session")
	}
	if got.SessionID != "session_live" {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestResumeSessionGoneFromRegistry(t *testing.T) {
	client := newSessionStub(t, nil)

	path := filepath.Join(t.TempDir(), "tracking.json")
	if err := tracker.SaveClientState(path, tracker.ClientState{SessionID: "session_gone"}); err != nil {
		t.Fatalf("save state: %v", err)
	}

	if _, resumed := resumeSession(context.Background(), client, path); resumed {
		t.Fatalf("registry miss must force a fresh session")
	}
}

func TestResumeSessionExpiredState(t *testing.T) {
	sess := session.Session{SessionID: "session_old", Status: session.StatusActive}
	client := newSessionStub(t, map[string]session.Session{"session_old": sess})

	path := filepath.Join(t.TempDir(), "tracking.json")
	stale := tracker.ClientState{SessionID: "session_old", Timestamp: time.Now().Add(-tracker.ClientStateTTL - time.Minute)}
	if err := tracker.SaveClientState(path, stale); err != nil {
		t.Fatalf("save state: %v", err)
	}

	if _, resumed := resumeSession(context.Background(), client, path); resumed {
		t.Fatalf("expired state must not resume")
	}
}

func TestDefaultStatePath(t *testing.T) {
	if defaultStatePath() == "" {
		t.Fatalf("expected a state path")
	}
}
