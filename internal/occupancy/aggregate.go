package occupancy

import (
	"math"
	"time"

	"github.com/gympulse/pulse-cli/internal/model"
)

const (
	// CheckInWindow is how far back check-ins count toward the live
	// estimate.
	CheckInWindow = 15 * time.Minute

	// adoptionRate is the assumed fraction of actual attendees who check in
	// through the app. Observed counts are backed out to estimated true
	// attendance by dividing by this rate.
	adoptionRate = 0.30
)

// Aggregation is the check-in-derived portion of a live estimate.
type Aggregation struct {
	HasRealData          bool
	CheckInCount         int
	AdjustedPercentage   int
	EstimatedActualCount int
	Capacity             int
}

// Aggregate filters checkIns to those for gymID within the check-in window
// ending at now and converts the count into an adjusted occupancy estimate.
// gym may be nil when the id did not resolve; capacity then defaults.
func Aggregate(gymID string, checkIns []model.CheckIn, gym *model.Gym, now time.Time) Aggregation {
	capacity := gym.EffectiveCapacity()
	cutoff := now.Add(-CheckInWindow)

	count := 0
	for _, ci := range checkIns {
		if ci.GymID == gymID && ci.Timestamp.After(cutoff) {
			count++
		}
	}

	if count == 0 {
		return Aggregation{Capacity: capacity}
	}

	estimatedActual := int(math.Round(float64(count) / adoptionRate))
	adjusted := int(math.Round(float64(estimatedActual) / float64(capacity) * 100))
	if adjusted > 100 {
		adjusted = 100
	}

	return Aggregation{
		HasRealData:          true,
		CheckInCount:         count,
		AdjustedPercentage:   adjusted,
		EstimatedActualCount: estimatedActual,
		Capacity:             capacity,
	}
}

// EstimateOccupancyPercent backs a raw recent check-in count out to an
// occupancy percentage for the given capacity using the adoption rate.
// Shared by the community and export analytics.
func EstimateOccupancyPercent(recentCheckIns, capacity int) int {
	if recentCheckIns <= 0 {
		return 0
	}
	if capacity <= 0 {
		capacity = model.DefaultCapacity
	}
	estimated := int(math.Round(float64(recentCheckIns) / adoptionRate))
	pct := int(math.Round(float64(estimated) / float64(capacity) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}
