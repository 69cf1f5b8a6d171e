package model

import "time"

// LiveOccupancyReading is the blended, display-ready occupancy estimate for
// one gym. Readings are ephemeral: each refresh cycle constructs a fresh one
// and never mutates it in place.
type LiveOccupancyReading struct {
	GymID                string    `json:"gym_id"`
	GymName              string    `json:"gym_name"`
	Percentage           int       `json:"percentage"`
	Level                Level     `json:"level"`
	EstimatedHeadcount   int       `json:"estimated_headcount"`
	Confidence           int       `json:"confidence"`
	CheckInCount         int       `json:"check_in_count"`
	EstimatedActualCount int       `json:"estimated_actual_count,omitempty"`
	Capacity             int       `json:"capacity"`
	HasRealData          bool      `json:"has_real_data"`
	LastUpdatedAt        time.Time `json:"last_updated_at"`
}

// SensorReading is an ingested headcount from a gym-side sensor. While a
// reading is fresh it takes precedence over the synthetic baseline.
type SensorReading struct {
	GymID      string    `json:"gym_id"`
	Headcount  int       `json:"headcount"`
	RecordedAt time.Time `json:"recorded_at"`
}
