package session

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCreateSession(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)

	sess, err := svc.Create(context.Background(), CreateRequest{CustomerName: "Ana"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(sess.SessionID, "session_") {
		t.Fatalf("unexpected session id: %s", sess.SessionID)
	}
	if sess.TechnicianID != DefaultTechnicianID {
		t.Fatalf("expected default technician id")
	}
	if sess.Status != StatusActive {
		t.Fatalf("expected active status")
	}
	if sess.CustomerLocation != nil {
		t.Fatalf("customer location must start null")
	}

	got, err := svc.Get(context.Background(), sess.SessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CustomerName != "Ana" {
		t.Fatalf("unexpected customer name: %s", got.CustomerName)
	}
}

func TestCreateSessionEmptyName(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)

	_, err := svc.Create(context.Background(), CreateRequest{})
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}

	sessions, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("rejected create must not leave a record")
	}
}

func TestGetSessionNotFound(t *testing.T) {
	svc := NewService(NewMemoryStore())
	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListActiveSkipsClosed(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)

	sess, err := svc.Create(context.Background(), CreateRequest{CustomerName: "Ana"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	closed := sess
	closed.SessionID = "session_closed"
	closed.Status = StatusClosed
	if err := store.Put(context.Background(), closed); err != nil {
		t.Fatalf("put: %v", err)
	}

	sessions, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0].SessionID != sess.SessionID {
		t.Fatalf("expected only the active session")
	}
}

func TestTrackingURL(t *testing.T) {
	if got := TrackingURL("session_abc"); got != "/atendimento/session_abc" {
		t.Fatalf("unexpected tracking url: %s", got)
	}
}
