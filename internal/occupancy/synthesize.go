package occupancy

import (
	"math"
	"time"

	"github.com/gympulse/pulse-cli/internal/model"
)

// assumedPeakHeadcount is the headcount at 100% when no real capacity is
// known. Stands in for a sensor-calibrated figure.
const assumedPeakHeadcount = 120

// Synthesizer produces baseline occupancy readings absent any real signal.
type Synthesizer struct {
	src     SignalSource
	nowFunc func() time.Time
}

// NewSynthesizer creates a Synthesizer over the given signal source.
func NewSynthesizer(src SignalSource) *Synthesizer {
	return &Synthesizer{src: src, nowFunc: time.Now}
}

// Synthesize returns a fresh baseline reading: percentage uniform in
// [0,100), headcount proportional to the assumed peak, confidence uniform
// in [55,95).
func (s *Synthesizer) Synthesize() model.LiveOccupancyReading {
	percentage := s.src.IntN(100)
	confidence := clamp(55+s.src.IntN(40), 0, 100)

	return model.LiveOccupancyReading{
		Percentage:         percentage,
		EstimatedHeadcount: int(math.Round(float64(percentage) / 100 * assumedPeakHeadcount)),
		Level:              model.DeriveLevel(percentage),
		Confidence:         confidence,
		LastUpdatedAt:      s.nowFunc(),
	}
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
