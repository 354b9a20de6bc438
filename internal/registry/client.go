package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jlucaswrk/coldservice-recife/internal/auth"
	"github.com/jlucaswrk/coldservice-recife/internal/session"
	"github.com/jlucaswrk/coldservice-recife/internal/technician"
)

// ErrNotFound means the registry has no record for the requested id. Callers
// treat it as "technician not yet online", not as a failure.
var ErrNotFound = errors.New("registry: not found")

// Client talks to the tracking API from customer and technician devices.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithToken returns a copy carrying the technician bearer token used for
// publishing.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

type createSessionResponse struct {
	Success     bool            `json:"success"`
	Session     session.Session `json:"session"`
	TrackingURL string          `json:"trackingUrl"`
}

func (c *Client) CreateSession(ctx context.Context, customerName, technicianID string) (session.Session, error) {
	payload, err := json.Marshal(session.CreateRequest{CustomerName: customerName, TechnicianID: technicianID})
	if err != nil {
		return session.Session{}, err
	}

	var out createSessionResponse
	if err := c.do(ctx, http.MethodPost, "/session", payload, &out); err != nil {
		return session.Session{}, err
	}
	if !out.Success {
		return session.Session{}, errors.New("registry: session not created")
	}
	return out.Session, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (session.Session, error) {
	var out session.Session
	err := c.do(ctx, http.MethodGet, "/session?sessionId="+url.QueryEscape(sessionID), nil, &out)
	return out, err
}

// Login exchanges technician credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	payload, err := json.Marshal(auth.LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	var out auth.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", payload, &out); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

func (c *Client) PublishPosition(ctx context.Context, req technician.PublishRequest) (technician.Record, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return technician.Record{}, err
	}

	var out struct {
		Success  bool              `json:"success"`
		Received technician.Record `json:"received"`
	}
	if err := c.do(ctx, http.MethodPost, "/technician-location", payload, &out); err != nil {
		return technician.Record{}, err
	}
	return out.Received, nil
}

func (c *Client) TechnicianPosition(ctx context.Context, technicianID string) (technician.Record, error) {
	var out technician.Record
	err := c.do(ctx, http.MethodGet, "/technician-location?technicianId="+url.QueryEscape(technicianID), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) error {
	var body *bytes.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("registry: %s", apiErr.Error)
		}
		return fmt.Errorf("registry: status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
