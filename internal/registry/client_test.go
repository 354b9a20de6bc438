package registry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jlucaswrk/coldservice-recife/internal/session"
	"github.com/jlucaswrk/coldservice-recife/internal/technician"
)

func newAPIStub(t *testing.T) (*httptest.Server, *technician.Service, *session.Service) {
	t.Helper()
	techSvc := technician.NewService(technician.NewMemoryStore(), nil, 30*time.Second)
	sessSvc := session.NewService(session.NewMemoryStore())

	mux := http.NewServeMux()
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var req session.CreateRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			sess, err := sessSvc.Create(r.Context(), req)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "customerName is required"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "session": sess})
			return
		}
		sess, err := sessSvc.Get(r.Context(), r.URL.Query().Get("sessionId"))
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Session not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(sess)
	})
	mux.HandleFunc("/technician-location", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var req technician.PublishRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			rec, err := techSvc.Publish(r.Context(), req)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "technicianId is required"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "received": rec})
			return
		}
		rec, err := techSvc.Get(r.Context(), r.URL.Query().Get("technicianId"))
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "Technician not found", "online": false})
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, techSvc, sessSvc
}

func TestClientSessionLifecycle(t *testing.T) {
	srv, _, _ := newAPIStub(t)
	client := NewClient(srv.URL)

	sess, err := client.CreateSession(context.Background(), "Ana", "tech_001")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sess.SessionID == "" || sess.Status != session.StatusActive {
		t.Fatalf("unexpected session: %+v", sess)
	}

	got, err := client.GetSession(context.Background(), sess.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.CustomerName != "Ana" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestClientCreateSessionValidation(t *testing.T) {
	srv, _, _ := newAPIStub(t)
	client := NewClient(srv.URL)

	_, err := client.CreateSession(context.Background(), "", "tech_001")
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestClientPublishAndRead(t *testing.T) {
	srv, _, _ := newAPIStub(t)
	client := NewClient(srv.URL).WithToken("token")

	_, err := client.PublishPosition(context.Background(), technician.PublishRequest{
		TechnicianID: "tech_001",
		Latitude:     -8.05,
		Longitude:    -34.90,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	rec, err := client.TechnicianPosition(context.Background(), "tech_001")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if rec.Latitude != -8.05 || rec.Longitude != -34.90 {
		t.Fatalf("coordinates must round-trip: %+v", rec)
	}
	if !rec.Online {
		t.Fatalf("expected online")
	}
}

func TestClientTechnicianNotFound(t *testing.T) {
	srv, _, _ := newAPIStub(t)
	client := NewClient(srv.URL)

	_, err := client.TechnicianPosition(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClientTransportError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	_, err := client.TechnicianPosition(context.Background(), "tech_001")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestClientLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "tech@coldservice.com" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "token-abc", "token_type": "Bearer", "expires_in": 86400})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL)
	token, err := client.Login(context.Background(), "tech@coldservice.com", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "token-abc" {
		t.Fatalf("unexpected token %q", token)
	}

	if _, err := client.Login(context.Background(), "tech@coldservice.com", "wrong"); err == nil {
		t.Fatalf("expected login failure")
	}
}
