package occupancy

import (
	"fmt"
	"time"

	"github.com/gympulse/pulse-cli/internal/model"
)

// TrendPoint is one hourly sample in the 24-hour trend series.
type TrendPoint struct {
	Time      string `json:"time"`
	Occupancy int    `json:"occupancy"`
}

// PredictionPoint is one hourly slot in the 12-hour forecast.
type PredictionPoint struct {
	Time       string `json:"time"`
	Predicted  int    `json:"predicted"`
	LowerBound int    `json:"lower_bound"`
	UpperBound int    `json:"upper_bound"`
	PeakWindow bool   `json:"peak_window"`
}

// HeatmapRow is one weekday row of the typical-week heatmap.
type HeatmapRow struct {
	Day   string         `json:"day"`
	Slots map[string]int `json:"slots"`
}

// HeatmapDays and HeatmapSlots fix the row and column order of the grid.
var (
	HeatmapDays  = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	HeatmapSlots = []string{"6a", "9a", "12p", "3p", "6p", "9p"}
)

func hourLabel(t time.Time) string {
	return fmt.Sprintf("%02d:00", t.Hour())
}

// Trend returns 24 hourly occupancy samples ending at the current hour.
func (s *Synthesizer) Trend() []TrendPoint {
	now := s.nowFunc()
	points := make([]TrendPoint, 0, 24)
	for i := 0; i < 24; i++ {
		ts := now.Add(-time.Duration(23-i) * time.Hour)
		points = append(points, TrendPoint{
			Time:      hourLabel(ts),
			Occupancy: s.src.IntN(100),
		})
	}
	return points
}

// Forecast returns 12 hourly predictions starting now, each with a
// confidence band of spread 8-25 clamped to [0,100] and a peak-window flag
// at the High threshold.
func (s *Synthesizer) Forecast() []PredictionPoint {
	now := s.nowFunc()
	points := make([]PredictionPoint, 0, 12)
	for i := 0; i < 12; i++ {
		ts := now.Add(time.Duration(i) * time.Hour)
		predicted := s.src.IntN(100)
		spread := s.src.IntN(18) + 8
		points = append(points, PredictionPoint{
			Time:       hourLabel(ts),
			Predicted:  predicted,
			LowerBound: clamp(predicted-spread, 0, 100),
			UpperBound: clamp(predicted+spread, 0, 100),
			PeakWindow: predicted >= model.HighThreshold,
		})
	}
	return points
}

// WeeklyHeatmap returns a Mon-Sun typical-week occupancy grid across six
// daily time slots.
func (s *Synthesizer) WeeklyHeatmap() []HeatmapRow {
	rows := make([]HeatmapRow, 0, len(HeatmapDays))
	for dayIdx, day := range HeatmapDays {
		slots := make(map[string]int, len(HeatmapSlots))
		for slotIdx, slot := range HeatmapSlots {
			base := 20 + ((dayIdx+slotIdx)%5)*15
			slots[slot] = clamp(base+s.src.IntN(25), 0, 100)
		}
		rows = append(rows, HeatmapRow{Day: day, Slots: slots})
	}
	return rows
}

// BestVisitWindow recommends the forecast slot with the lowest predicted
// occupancy, spanning into the following slot's label when one exists.
func BestVisitWindow(predictions []PredictionPoint) string {
	if len(predictions) == 0 {
		return "No forecast available yet"
	}

	best := 0
	for i, p := range predictions {
		if p.Predicted < predictions[best].Predicted {
			best = i
		}
	}

	if best+1 < len(predictions) {
		return fmt.Sprintf("Best time to go: %s–%s", predictions[best].Time, predictions[best+1].Time)
	}
	return fmt.Sprintf("Best time to go: %s", predictions[best].Time)
}
