package analytics

import (
	"math"
	"time"

	"github.com/gympulse/pulse-cli/internal/model"
)

// AdvancedSnapshot carries the premium-tier derivations. The engine itself
// performs no entitlement gating; callers check the premium flag before
// requesting or displaying it.
type AdvancedSnapshot struct {
	ConsistencyScore   int    `json:"consistency_score"`
	StretchGoal        int    `json:"stretch_goal"`
	ForecastedCheckIns [7]int `json:"forecasted_check_ins"`
	BestDayOfWeek      int    `json:"best_day_of_week"`
}

// Consistency score weights. The score blends how much of a full week the
// user trained this week with how many distinct weekdays their history
// covers, keeping it monotonic in check-in frequency and bounded to
// [0,100].
const (
	frequencyWeight  = 0.6
	regularityWeight = 0.4
	stretchGoalScale = 1.25
)

// AnalyzeAdvanced derives consistency scoring and per-weekday forecasts
// from a personal snapshot.
func AnalyzeAdvanced(personal PersonalSnapshot, checkIns []model.CheckIn, now time.Time) AdvancedSnapshot {
	var snap AdvancedSnapshot

	frequency := math.Min(float64(personal.ThisWeekCheckIns), 7) / 7

	activeDays := 0
	for _, n := range personal.WeeklyDistribution {
		if n > 0 {
			activeDays++
		}
	}
	regularity := float64(activeDays) / 7

	score := int(math.Round(100 * (frequencyWeight*frequency + regularityWeight*regularity)))
	if score > 100 {
		score = 100
	}
	snap.ConsistencyScore = score

	stretch := int(math.Round(float64(score) * stretchGoalScale))
	if stretch > 100 {
		stretch = 100
	}
	snap.StretchGoal = stretch

	// Per-weekday forecast: the historical distribution averaged over the
	// number of weeks the history spans.
	weeks := historyWeeks(checkIns, now)
	for d, n := range personal.WeeklyDistribution {
		snap.ForecastedCheckIns[d] = int(math.Round(float64(n) / float64(weeks)))
	}

	for d, n := range personal.WeeklyDistribution {
		if n > personal.WeeklyDistribution[snap.BestDayOfWeek] {
			snap.BestDayOfWeek = d
		}
	}

	return snap
}

// historyWeeks returns how many whole weeks the check-in history spans, at
// least 1.
func historyWeeks(checkIns []model.CheckIn, now time.Time) int {
	if len(checkIns) == 0 {
		return 1
	}
	oldest := checkIns[0].Timestamp
	for _, ci := range checkIns[1:] {
		if ci.Timestamp.Before(oldest) {
			oldest = ci.Timestamp
		}
	}
	weeks := int(now.Sub(oldest) / (7 * 24 * time.Hour))
	if weeks < 1 {
		weeks = 1
	}
	return weeks
}
