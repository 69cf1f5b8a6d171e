package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gympulse/pulse-cli/internal/model"
)

func TestDeriveLevel_Boundaries(t *testing.T) {
	tests := []struct {
		percentage int
		want       model.Level
	}{
		{0, model.LevelLow},
		{34, model.LevelLow},
		{35, model.LevelModerate},
		{74, model.LevelModerate},
		{75, model.LevelHigh},
		{100, model.LevelHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, model.DeriveLevel(tt.percentage), "percentage %d", tt.percentage)
	}
}

func TestConfidenceLabel_Boundaries(t *testing.T) {
	assert.Equal(t, "Low confidence", ConfidenceLabel(0))
	assert.Equal(t, "Low confidence", ConfidenceLabel(59))
	assert.Equal(t, "Medium confidence", ConfidenceLabel(60))
	assert.Equal(t, "Medium confidence", ConfidenceLabel(79))
	assert.Equal(t, "High confidence", ConfidenceLabel(80))
	assert.Equal(t, "High confidence", ConfidenceLabel(100))
}

func TestIsStale(t *testing.T) {
	now := time.Now()
	assert.True(t, IsStale(now.Add(-8*time.Minute), now, DefaultStaleAfter))
	assert.False(t, IsStale(now.Add(-2*time.Minute), now, DefaultStaleAfter))
	assert.False(t, IsStale(now.Add(-10*time.Minute), now, 15*time.Minute))
}

func TestSynthesize_Ranges(t *testing.T) {
	s := NewSynthesizer(NewRandomSource())
	for i := 0; i < 50; i++ {
		r := s.Synthesize()
		assert.GreaterOrEqual(t, r.Percentage, 0)
		assert.Less(t, r.Percentage, 100)
		assert.GreaterOrEqual(t, r.Confidence, 55)
		assert.Less(t, r.Confidence, 95)
		assert.Equal(t, model.DeriveLevel(r.Percentage), r.Level)
		assert.False(t, r.LastUpdatedAt.IsZero())
	}
}

func TestSynthesize_HeadcountProportional(t *testing.T) {
	s := NewSynthesizer(&SequenceSource{Values: []int{50, 10}})
	r := s.Synthesize()
	assert.Equal(t, 50, r.Percentage)
	assert.Equal(t, 60, r.EstimatedHeadcount) // round(50/100*120)
}

func checkInsAt(gymID string, n int, ts time.Time) []model.CheckIn {
	out := make([]model.CheckIn, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.CheckIn{GymID: gymID, UserID: "u", Timestamp: ts})
	}
	return out
}

func TestAggregate_RoundTrip(t *testing.T) {
	now := time.Now()
	gym := &model.Gym{ID: "x", Capacity: 50}

	agg := Aggregate("x", checkInsAt("x", 3, now.Add(-5*time.Minute)), gym, now)

	assert.True(t, agg.HasRealData)
	assert.Equal(t, 3, agg.CheckInCount)
	assert.Equal(t, 10, agg.EstimatedActualCount) // round(3/0.3)
	assert.Equal(t, 20, agg.AdjustedPercentage)   // round(10/50*100)
	assert.Equal(t, 50, agg.Capacity)
}

func TestAggregate_WindowAndGymFilters(t *testing.T) {
	now := time.Now()
	checkIns := append(
		checkInsAt("x", 2, now.Add(-20*time.Minute)), // outside 15m window
		checkInsAt("y", 4, now.Add(-1*time.Minute))..., // wrong gym
	)

	agg := Aggregate("x", checkIns, &model.Gym{ID: "x"}, now)
	assert.False(t, agg.HasRealData)
	assert.Equal(t, 0, agg.CheckInCount)
	assert.Equal(t, model.DefaultCapacity, agg.Capacity)
}

func TestAggregate_CapsAtHundred(t *testing.T) {
	now := time.Now()
	gym := &model.Gym{ID: "x", Capacity: 20}

	agg := Aggregate("x", checkInsAt("x", 30, now), gym, now)
	assert.Equal(t, 100, agg.AdjustedPercentage)
	assert.Equal(t, 100, agg.EstimatedActualCount)
}

func TestAggregate_NilGymDefaultsCapacity(t *testing.T) {
	now := time.Now()
	agg := Aggregate("x", checkInsAt("x", 3, now), nil, now)
	assert.True(t, agg.HasRealData)
	assert.Equal(t, model.DefaultCapacity, agg.Capacity)
	assert.Equal(t, 10, agg.AdjustedPercentage) // round(10/100*100)
}

func TestEstimateOccupancyPercent(t *testing.T) {
	assert.Equal(t, 0, EstimateOccupancyPercent(0, 50))
	assert.Equal(t, 20, EstimateOccupancyPercent(3, 50))
	assert.Equal(t, 100, EstimateOccupancyPercent(50, 50))
	assert.Equal(t, 10, EstimateOccupancyPercent(3, 0)) // capacity defaults
}

func newTestBlender(values ...int) *Blender {
	return NewBlender(NewSynthesizer(&SequenceSource{Values: values}))
}

func TestBlend_NoRealData(t *testing.T) {
	b := newTestBlender(40, 20) // pct 40, confidence 75
	gym := &model.Gym{ID: "g", Name: "GoodLife Fitness Plateau", Brand: "GoodLife Fitness", Capacity: 150}

	r := b.Blend("g", nil, gym, nil)

	assert.Equal(t, 40, r.Percentage)
	assert.Equal(t, 75, r.Confidence)
	assert.False(t, r.HasRealData)
	assert.Equal(t, 0, r.CheckInCount)
	assert.Equal(t, 150, r.Capacity)
	assert.Equal(t, "GoodLife Fitness Plateau", r.GymName)
	assert.Equal(t, "g", r.GymID)
	assert.Equal(t, model.LevelModerate, r.Level)
}

func TestBlend_WithRealData(t *testing.T) {
	b := newTestBlender(50, 10) // baseline pct 50, confidence 65
	gym := &model.Gym{ID: "g", Name: "Plateau", Brand: "GoodLife", Capacity: 50}
	now := time.Now()

	r := b.Blend("g", checkInsAt("g", 3, now.Add(-time.Minute)), gym, nil)

	// adjusted = 20, blended = round(0.4*20 + 0.6*50) = 38.
	assert.Equal(t, 38, r.Percentage)
	assert.Equal(t, 80, r.Confidence) // 65 + 15
	assert.True(t, r.HasRealData)
	assert.Equal(t, 3, r.CheckInCount)
	assert.Equal(t, 10, r.EstimatedActualCount)
	assert.Equal(t, model.DeriveLevel(38), r.Level)
}

func TestBlend_BrandAndNameBumps(t *testing.T) {
	// Both heuristics apply and stack: +5 for Anytime brand, +10 for a
	// Downtown location name.
	b := newTestBlender(50, 10)
	gym := &model.Gym{ID: "g", Name: "Anytime Fitness Downtown", Brand: "Anytime Fitness"}

	r := b.Blend("g", nil, gym, nil)
	assert.Equal(t, 65, r.Percentage)
	assert.Equal(t, model.LevelModerate, r.Level)
}

func TestBlend_BumpsCapAtHundred(t *testing.T) {
	b := newTestBlender(99, 10)
	gym := &model.Gym{ID: "g", Name: "Anytime Fitness Downtown", Brand: "Anytime Fitness"}

	r := b.Blend("g", nil, gym, nil)
	assert.Equal(t, 100, r.Percentage)
	assert.Equal(t, model.LevelHigh, r.Level)
}

func TestBlend_UnknownGymSkipsHeuristics(t *testing.T) {
	b := newTestBlender(50, 10)

	r := b.Blend("ghost", nil, nil, nil)
	assert.Equal(t, 50, r.Percentage)
	assert.Equal(t, model.UnknownGymName, r.GymName)
	assert.Equal(t, model.DefaultCapacity, r.Capacity)
}

func TestBlend_LevelFromFinalPercentage(t *testing.T) {
	// Baseline 70 is Moderate; the Anytime bump pushes it to 75, High.
	b := newTestBlender(70, 10)
	gym := &model.Gym{ID: "g", Name: "Anytime Vimont", Brand: "Anytime Fitness"}

	r := b.Blend("g", nil, gym, nil)
	assert.Equal(t, 75, r.Percentage)
	assert.Equal(t, model.LevelHigh, r.Level)
}

func TestBlend_FreshSensorOverridesBaseline(t *testing.T) {
	b := newTestBlender(10, 10)
	gym := &model.Gym{ID: "g", Name: "Plateau", Brand: "GoodLife", Capacity: 100}
	sensor := &model.SensorReading{GymID: "g", Headcount: 80, RecordedAt: time.Now()}

	r := b.Blend("g", nil, gym, sensor)
	assert.Equal(t, 80, r.Percentage)
	assert.Equal(t, 80, r.EstimatedHeadcount)
	assert.Equal(t, 90, r.Confidence)
}

func TestBlend_StaleSensorIgnored(t *testing.T) {
	b := newTestBlender(10, 10)
	gym := &model.Gym{ID: "g", Name: "Plateau", Brand: "GoodLife", Capacity: 100}
	sensor := &model.SensorReading{GymID: "g", Headcount: 80, RecordedAt: time.Now().Add(-10 * time.Minute)}

	r := b.Blend("g", nil, gym, sensor)
	assert.Equal(t, 10, r.Percentage)
}

func TestBlend_MonotonicInCheckInCount(t *testing.T) {
	gym := &model.Gym{ID: "g", Name: "Plateau", Brand: "GoodLife", Capacity: 80}
	now := time.Now()

	prev := -1
	for n := 1; n <= 24; n++ {
		// Fixed baseline so only the check-in count varies.
		b := newTestBlender(40, 10)
		r := b.Blend("g", checkInsAt("g", n, now), gym, nil)
		require.GreaterOrEqual(t, r.Percentage, prev, "count %d", n)
		prev = r.Percentage
	}
}
