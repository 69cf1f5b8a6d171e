package occupancy

import (
	"math"
	"strings"
	"time"

	"github.com/gympulse/pulse-cli/internal/model"
)

const (
	// Blend weights: 40% real check-in signal, 60% synthetic baseline.
	realSignalWeight = 0.4
	baselineWeight   = 0.6

	// realDataConfidenceBoost is added to confidence when real check-ins
	// back the estimate.
	realDataConfidenceBoost = 15

	// Brand/location heuristic bumps, additive then capped at 100.
	anytimeBrandBump  = 5
	downtownNameBump  = 10
	sensorConfidence  = 90
	SensorFreshWindow = 5 * time.Minute
)

// Blender combines the synthetic baseline with real check-in signal and
// location heuristics into the final live reading.
type Blender struct {
	synth   *Synthesizer
	nowFunc func() time.Time
}

// NewBlender creates a Blender over the given Synthesizer.
func NewBlender(synth *Synthesizer) *Blender {
	return &Blender{synth: synth, nowFunc: time.Now}
}

// Blend builds the live reading for gymID. gym may be nil when the id did
// not resolve: the reading then carries a placeholder name and skips the
// brand/name heuristics rather than failing. sensor, when fresh, replaces
// the synthetic baseline with the ingested headcount.
func (b *Blender) Blend(gymID string, checkIns []model.CheckIn, gym *model.Gym, sensor *model.SensorReading) model.LiveOccupancyReading {
	now := b.nowFunc()
	reading := b.synth.Synthesize()

	if sensor != nil && now.Sub(sensor.RecordedAt) <= SensorFreshWindow {
		capacity := gym.EffectiveCapacity()
		pct := int(math.Round(float64(sensor.Headcount) / float64(capacity) * 100))
		if pct > 100 {
			pct = 100
		}
		reading.Percentage = pct
		reading.EstimatedHeadcount = sensor.Headcount
		reading.Confidence = sensorConfidence
	}

	agg := Aggregate(gymID, checkIns, gym, now)
	reading.Capacity = agg.Capacity
	if agg.HasRealData {
		blended := realSignalWeight*float64(agg.AdjustedPercentage) + baselineWeight*float64(reading.Percentage)
		reading.Percentage = int(math.Round(blended))
		reading.Confidence = clamp(reading.Confidence+realDataConfidenceBoost, 0, 100)
		reading.CheckInCount = agg.CheckInCount
		reading.EstimatedActualCount = agg.EstimatedActualCount
		reading.HasRealData = true
	}

	if gym != nil {
		if strings.Contains(gym.Brand, "Anytime") {
			reading.Percentage = clamp(reading.Percentage+anytimeBrandBump, 0, 100)
		}
		if strings.Contains(gym.Name, "Downtown") {
			reading.Percentage = clamp(reading.Percentage+downtownNameBump, 0, 100)
		}
		reading.GymName = gym.Name
	} else {
		reading.GymName = model.UnknownGymName
	}

	// Level always re-derives from the final adjusted percentage.
	reading.Level = model.DeriveLevel(reading.Percentage)
	reading.GymID = gymID
	reading.LastUpdatedAt = now

	return reading
}
