package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultLocation is the last-resort fallback: Recife city center.
var DefaultLocation = Reading{
	Latitude:    -8.0476,
	Longitude:   -34.8770,
	Accuracy:    10000,
	Approximate: true,
}

const ipLookupURL = "https://ipapi.co/json/"

// IPSource resolves a rough position from the device's public IP. Accuracy is
// on the order of 5 km, so every reading it emits is tagged approximate.
type IPSource struct {
	URL    string
	Client *http.Client
}

func NewIPSource() *IPSource {
	return &IPSource{
		URL:    ipLookupURL,
		Client: &http.Client{Timeout: 5 * time.Second},
	}
}

type ipResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (s *IPSource) Watch(ctx context.Context) (<-chan Reading, error) {
	url := s.URL
	if url == "" {
		url = ipLookupURL
	}
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ip lookup status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	var body ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if body.Latitude == 0 && body.Longitude == 0 {
		return nil, fmt.Errorf("%w: ip lookup returned no coordinates", ErrSourceUnavailable)
	}

	out := make(chan Reading, 1)
	out <- Reading{
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
		Accuracy:    5000,
		Timestamp:   time.Now(),
		Approximate: true,
	}
	close(out)
	return out, nil
}

// FixedSource emits a single constant reading. It cannot fail, which makes it
// the terminal entry of a fallback chain.
type FixedSource struct {
	Reading Reading
}

func NewFixedSource(r Reading) *FixedSource {
	return &FixedSource{Reading: r}
}

func (s *FixedSource) Watch(_ context.Context) (<-chan Reading, error) {
	r := s.Reading
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	out := make(chan Reading, 1)
	out <- r
	close(out)
	return out, nil
}
