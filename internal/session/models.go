package session

import "time"

const (
	StatusActive = "active"
	StatusClosed = "closed"
)

// DefaultTechnicianID is assigned when intake does not pick a technician.
const DefaultTechnicianID = "tech_001"

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Session links one customer engagement to one technician for the duration
// of a service call.
type Session struct {
	SessionID        string    `json:"sessionId"`
	CustomerName     string    `json:"customerName"`
	CustomerPhone    string    `json:"customerPhone,omitempty"`
	TechnicianID     string    `json:"technicianId"`
	CustomerLocation *Location `json:"customerLocation"`
	CreatedAt        time.Time `json:"createdAt"`
	Status           string    `json:"status"`
}

type CreateRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	TechnicianID  string `json:"technicianId"`
}
