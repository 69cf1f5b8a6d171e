package analytics

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/gympulse/pulse-cli/internal/model"
	"github.com/gympulse/pulse-cli/internal/occupancy"
)

var errNoLookup = eris.New("analytics: no gym lookup")

// communityWindow bounds community aggregate counts.
const communityWindow = 24 * time.Hour

const (
	leaderboardSize    = 5
	recentActivitySize = 20
	peakHoursSize      = 3
)

// GymActivity is the per-gym community breakdown.
type GymActivity struct {
	GymID               string `json:"gym_id"`
	GymName             string `json:"gym_name"`
	City                string `json:"city,omitempty"`
	Last24HoursCheckIns int    `json:"last_24_hours_check_ins"`
	RecentCheckIns      int    `json:"recent_check_ins"`
	EstimatedOccupancy  int    `json:"estimated_occupancy"`
	Capacity            int    `json:"capacity"`
}

// PeakHour is one entry in the busiest-hours ranking.
type PeakHour struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// CommunitySnapshot summarizes check-ins across all users.
type CommunitySnapshot struct {
	TotalCommunityCheckIns int               `json:"total_community_check_ins"`
	GymsWithActivity       []GymActivity     `json:"gyms_with_activity"`
	MostPopularGym         *GymActivity      `json:"most_popular_gym,omitempty"`
	TopGyms                []GymActivity     `json:"top_gyms"`
	RecentActivity         []EnrichedCheckIn `json:"recent_activity"`
	PeakHours              []PeakHour        `json:"peak_hours"`
}

// AnalyzeCommunity computes the community snapshot over all users'
// check-ins, restricted to the last 24 hours for aggregate counts. Gyms
// whose id does not resolve are dropped from the breakdown.
func AnalyzeCommunity(checkIns []model.CheckIn, lookup GymLookup, now time.Time) CommunitySnapshot {
	snap := CommunitySnapshot{
		GymsWithActivity: []GymActivity{},
		TopGyms:          []GymActivity{},
		RecentActivity:   []EnrichedCheckIn{},
		PeakHours:        []PeakHour{},
	}

	dayCutoff := now.Add(-communityWindow)
	recentCutoff := now.Add(-occupancy.CheckInWindow)

	var inWindow []model.CheckIn
	dayCounts := map[string]int{}
	recentCounts := map[string]int{}
	var hourCounts [24]int

	for _, ci := range checkIns {
		if !ci.Timestamp.After(dayCutoff) {
			continue
		}
		inWindow = append(inWindow, ci)
		dayCounts[ci.GymID]++
		hourCounts[ci.Timestamp.Local().Hour()]++
		if ci.Timestamp.After(recentCutoff) {
			recentCounts[ci.GymID]++
		}
	}
	snap.TotalCommunityCheckIns = len(inWindow)

	for id, dayCount := range dayCounts {
		g, err := lookupGym(lookup, id)
		if err != nil {
			continue
		}
		capacity := g.EffectiveCapacity()
		snap.GymsWithActivity = append(snap.GymsWithActivity, GymActivity{
			GymID:               id,
			GymName:             g.Name,
			City:                g.City,
			Last24HoursCheckIns: dayCount,
			RecentCheckIns:      recentCounts[id],
			EstimatedOccupancy:  occupancy.EstimateOccupancyPercent(recentCounts[id], capacity),
			Capacity:            capacity,
		})
	}

	// Busiest first; gym id breaks ties so the ordering is stable across
	// runs.
	sort.Slice(snap.GymsWithActivity, func(i, j int) bool {
		a, b := snap.GymsWithActivity[i], snap.GymsWithActivity[j]
		if a.Last24HoursCheckIns != b.Last24HoursCheckIns {
			return a.Last24HoursCheckIns > b.Last24HoursCheckIns
		}
		return a.GymID < b.GymID
	})

	for _, ga := range snap.GymsWithActivity {
		if snap.MostPopularGym == nil || ga.RecentCheckIns > snap.MostPopularGym.RecentCheckIns {
			entry := ga
			snap.MostPopularGym = &entry
		}
	}

	top := snap.GymsWithActivity
	if len(top) > leaderboardSize {
		top = top[:leaderboardSize]
	}
	snap.TopGyms = append(snap.TopGyms, top...)

	snap.RecentActivity = enrichRecent(inWindow, lookup, recentActivitySize, true)

	for hour, count := range hourCounts {
		if count == 0 {
			continue
		}
		snap.PeakHours = append(snap.PeakHours, PeakHour{Hour: hour, Count: count})
	}
	sort.Slice(snap.PeakHours, func(i, j int) bool {
		if snap.PeakHours[i].Count != snap.PeakHours[j].Count {
			return snap.PeakHours[i].Count > snap.PeakHours[j].Count
		}
		return snap.PeakHours[i].Hour < snap.PeakHours[j].Hour
	})
	if len(snap.PeakHours) > peakHoursSize {
		snap.PeakHours = snap.PeakHours[:peakHoursSize]
	}

	return snap
}

func lookupGym(lookup GymLookup, id string) (*model.Gym, error) {
	if lookup == nil {
		return nil, errNoLookup
	}
	return lookup.GymByID(id)
}
