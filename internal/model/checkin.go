package model

import "time"

// CheckInSource describes how a check-in entered the system.
type CheckInSource string

const (
	CheckInSourceUser CheckInSource = "user"
)

// CheckIn is one user-initiated presence event at a gym. A CheckIn is
// immutable once created; the held collection is append-only apart from
// retention pruning on load.
type CheckIn struct {
	ID             string        `json:"id"`
	GymID          string        `json:"gym_id"`
	UserID         string        `json:"user_id"`
	Timestamp      time.Time     `json:"timestamp"`
	DistanceMeters *int          `json:"distance_meters,omitempty"`
	Source         CheckInSource `json:"source"`
}

// CheckInRetention is how long check-ins are kept. Entries older than this
// are dropped when the collection is loaded.
const CheckInRetention = 24 * time.Hour
