package occupancy

import "time"

// DefaultStaleAfter is how old a reading may be before it is flagged as
// delayed on the dashboard.
const DefaultStaleAfter = 5 * time.Minute

// Confidence label boundaries.
const (
	mediumConfidenceFloor = 60
	highConfidenceFloor   = 80
)

// ConfidenceLabel maps a confidence percentage to its display label.
func ConfidenceLabel(confidence int) string {
	switch {
	case confidence >= highConfidenceFloor:
		return "High confidence"
	case confidence >= mediumConfidenceFloor:
		return "Medium confidence"
	default:
		return "Low confidence"
	}
}

// IsStale reports whether a reading taken at lastUpdatedAt is older than
// staleAfter as of now.
func IsStale(lastUpdatedAt, now time.Time, staleAfter time.Duration) bool {
	return now.Sub(lastUpdatedAt) > staleAfter
}
