package occupancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrend_TwentyFourPoints(t *testing.T) {
	s := NewSynthesizer(NewRandomSource())
	trend := s.Trend()

	require.Len(t, trend, 24)
	for _, p := range trend {
		assert.GreaterOrEqual(t, p.Occupancy, 0)
		assert.Less(t, p.Occupancy, 100)
		assert.Regexp(t, `^\d{2}:00$`, p.Time)
	}
}

func TestForecast_BoundedBands(t *testing.T) {
	s := NewSynthesizer(NewRandomSource())
	preds := s.Forecast()

	require.Len(t, preds, 12)
	for _, p := range preds {
		assert.GreaterOrEqual(t, p.LowerBound, 0)
		assert.LessOrEqual(t, p.UpperBound, 100)
		assert.LessOrEqual(t, p.LowerBound, p.Predicted)
		assert.GreaterOrEqual(t, p.UpperBound, p.Predicted)
		assert.Equal(t, p.Predicted >= 75, p.PeakWindow)
	}
}

func TestWeeklyHeatmap_Shape(t *testing.T) {
	s := NewSynthesizer(NewRandomSource())
	rows := s.WeeklyHeatmap()

	require.Len(t, rows, 7)
	assert.Equal(t, "Mon", rows[0].Day)
	assert.Equal(t, "Sun", rows[6].Day)
	for _, row := range rows {
		require.Len(t, row.Slots, 6)
		for slot, v := range row.Slots {
			assert.Contains(t, []string{"6a", "9a", "12p", "3p", "6p", "9p"}, slot)
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 100)
		}
	}
}

func TestBestVisitWindow_SpansLowestSlot(t *testing.T) {
	got := BestVisitWindow([]PredictionPoint{
		{Time: "18:00", Predicted: 72},
		{Time: "19:00", Predicted: 30},
		{Time: "20:00", Predicted: 48},
	})
	assert.Equal(t, "Best time to go: 19:00–20:00", got)
}

func TestBestVisitWindow_LastSlotBest(t *testing.T) {
	// The lowest slot is last, so there is no successor label to span into.
	got := BestVisitWindow([]PredictionPoint{
		{Time: "18:00", Predicted: 72},
		{Time: "19:00", Predicted: 30},
	})
	assert.Equal(t, "Best time to go: 19:00", got)

	assert.Equal(t, "Best time to go: 14:00", BestVisitWindow([]PredictionPoint{{Time: "14:00", Predicted: 25}}))
}

func TestBestVisitWindow_Empty(t *testing.T) {
	assert.Equal(t, "No forecast available yet", BestVisitWindow(nil))
}
