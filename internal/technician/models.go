package technician

import "time"

// Record is the latest known position of one technician. It is replaced as a
// whole on every publish; there is no partial-field update path.
type Record struct {
	TechnicianID string    `json:"technicianId"`
	SessionID    string    `json:"sessionId,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Timestamp    time.Time `json:"timestamp"`
	Online       bool      `json:"online"`
	LastUpdate   time.Time `json:"lastUpdate"`
}

// PublishRequest mirrors the technician app payload. Timestamp is epoch
// milliseconds from the device clock; Online defaults to true when omitted.
type PublishRequest struct {
	TechnicianID string  `json:"technicianId"`
	SessionID    string  `json:"sessionId"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Timestamp    int64   `json:"timestamp"`
	Online       *bool   `json:"online"`
}
