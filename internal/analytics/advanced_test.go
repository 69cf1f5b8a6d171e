package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gympulse/pulse-cli/internal/model"
)

func TestAnalyzeAdvanced_EmptyHistory(t *testing.T) {
	snap := AnalyzeAdvanced(PersonalSnapshot{}, nil, time.Now())

	assert.Equal(t, 0, snap.ConsistencyScore)
	assert.Equal(t, 0, snap.StretchGoal)
	assert.Equal(t, [7]int{}, snap.ForecastedCheckIns)
	assert.Equal(t, 0, snap.BestDayOfWeek)
}

func TestAnalyzeAdvanced_ScoreBoundsAndMonotonicity(t *testing.T) {
	now := time.Now()
	prev := -1
	for thisWeek := 0; thisWeek <= 10; thisWeek++ {
		personal := PersonalSnapshot{
			ThisWeekCheckIns:   thisWeek,
			WeeklyDistribution: [7]int{1, 1, 0, 1, 0, 0, 0},
		}
		snap := AnalyzeAdvanced(personal, nil, now)
		assert.GreaterOrEqual(t, snap.ConsistencyScore, 0)
		assert.LessOrEqual(t, snap.ConsistencyScore, 100)
		assert.GreaterOrEqual(t, snap.ConsistencyScore, prev, "thisWeek %d", thisWeek)
		prev = snap.ConsistencyScore
	}
}

func TestAnalyzeAdvanced_PerfectWeekMaxesScore(t *testing.T) {
	snap := AnalyzeAdvanced(PersonalSnapshot{
		ThisWeekCheckIns:   7,
		WeeklyDistribution: [7]int{1, 1, 1, 1, 1, 1, 1},
	}, nil, time.Now())

	assert.Equal(t, 100, snap.ConsistencyScore)
	assert.Equal(t, 100, snap.StretchGoal) // capped
}

func TestAnalyzeAdvanced_StretchGoal(t *testing.T) {
	// 4 this-week check-ins across 2 active days:
	// round(100*(0.6*4/7 + 0.4*2/7)) = 46; stretch = round(46*1.25) = 58.
	snap := AnalyzeAdvanced(PersonalSnapshot{
		ThisWeekCheckIns:   4,
		WeeklyDistribution: [7]int{0, 2, 0, 2, 0, 0, 0},
	}, nil, time.Now())

	assert.Equal(t, 46, snap.ConsistencyScore)
	assert.Equal(t, 58, snap.StretchGoal)
}

func TestAnalyzeAdvanced_BestDayAndForecast(t *testing.T) {
	now := time.Now()
	// Two weeks of history.
	checkIns := []model.CheckIn{
		{GymID: "a", UserID: "u", Timestamp: now.Add(-15 * 24 * time.Hour)},
		{GymID: "a", UserID: "u", Timestamp: now.Add(-time.Hour)},
	}
	personal := PersonalSnapshot{
		ThisWeekCheckIns:   2,
		WeeklyDistribution: [7]int{0, 4, 0, 2, 0, 0, 1},
	}

	snap := AnalyzeAdvanced(personal, checkIns, now)

	assert.Equal(t, 1, snap.BestDayOfWeek) // Monday has 4
	// History spans 2 whole weeks, so weekday counts halve.
	assert.Equal(t, [7]int{0, 2, 0, 1, 0, 0, 1}, snap.ForecastedCheckIns)
}
