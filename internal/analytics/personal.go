// Package analytics derives personal, community, and premium snapshots from
// the check-in collection. All engines are pure views over the collection
// at computation time; nothing here persists state.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/gympulse/pulse-cli/internal/model"
)

// GymLookup resolves gym ids against the directory.
type GymLookup interface {
	GymByID(id string) (*model.Gym, error)
}

// thisWeekWindow bounds the "this week" counter.
const thisWeekWindow = 7 * 24 * time.Hour

// GymVisits pairs a gym with a visit count.
type GymVisits struct {
	GymID   string `json:"gym_id"`
	GymName string `json:"gym_name"`
	Count   int    `json:"count"`
}

// EnrichedCheckIn is a check-in joined with its resolved gym for display.
type EnrichedCheckIn struct {
	ID             string    `json:"id"`
	GymID          string    `json:"gym_id"`
	GymName        string    `json:"gym_name"`
	City           string    `json:"city,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	DistanceMeters *int      `json:"distance_meters,omitempty"`
}

// PersonalSnapshot summarizes one user's check-in history.
type PersonalSnapshot struct {
	TotalCheckIns         int               `json:"total_check_ins"`
	UniqueGyms            int               `json:"unique_gyms"`
	MostVisited           *GymVisits        `json:"most_visited,omitempty"`
	RecentCheckIns        []EnrichedCheckIn `json:"recent_check_ins"`
	HourlyDistribution    [24]int           `json:"hourly_distribution"`
	WeeklyDistribution    [7]int            `json:"weekly_distribution"`
	AverageDistanceMeters int               `json:"average_distance_meters"`
	ThisWeekCheckIns      int               `json:"this_week_check_ins"`
}

// AnalyzePersonal computes a personal snapshot over the given check-ins,
// assumed to already be filtered to one user. An empty history yields a
// zero-valued snapshot, never an error.
func AnalyzePersonal(checkIns []model.CheckIn, lookup GymLookup, now time.Time) PersonalSnapshot {
	snap := PersonalSnapshot{
		TotalCheckIns:  len(checkIns),
		RecentCheckIns: []EnrichedCheckIn{},
	}

	// Counts per gym in first-seen order so the most-visited tie-break is
	// deterministic.
	counts := map[string]int{}
	var gymOrder []string
	weekCutoff := now.Add(-thisWeekWindow)
	distanceSum, distanceN := 0, 0

	for _, ci := range checkIns {
		if _, seen := counts[ci.GymID]; !seen {
			gymOrder = append(gymOrder, ci.GymID)
		}
		counts[ci.GymID]++

		// Stored timestamps are UTC; time-of-day patterns are only
		// meaningful in the user's local time.
		local := ci.Timestamp.Local()
		snap.HourlyDistribution[local.Hour()]++
		snap.WeeklyDistribution[int(local.Weekday())]++

		if ci.DistanceMeters != nil {
			distanceSum += *ci.DistanceMeters
			distanceN++
		}
		if ci.Timestamp.After(weekCutoff) {
			snap.ThisWeekCheckIns++
		}
	}

	snap.UniqueGyms = len(counts)
	if distanceN > 0 {
		snap.AverageDistanceMeters = int(math.Round(float64(distanceSum) / float64(distanceN)))
	}

	for _, id := range gymOrder {
		if snap.MostVisited == nil || counts[id] > snap.MostVisited.Count {
			snap.MostVisited = &GymVisits{GymID: id, GymName: gymName(lookup, id), Count: counts[id]}
		}
	}

	snap.RecentCheckIns = enrichRecent(checkIns, lookup, 10, false)
	return snap
}

// gymName resolves a display name, degrading to the placeholder on unknown
// ids.
func gymName(lookup GymLookup, id string) string {
	if lookup == nil {
		return model.UnknownGymName
	}
	g, err := lookup.GymByID(id)
	if err != nil {
		return model.UnknownGymName
	}
	return g.Name
}

// enrichRecent returns the limit most recent check-ins, newest first, joined
// with directory data. When dropUnresolved is set, check-ins whose gym id
// does not resolve are excluded instead of labeled.
func enrichRecent(checkIns []model.CheckIn, lookup GymLookup, limit int, dropUnresolved bool) []EnrichedCheckIn {
	sorted := make([]model.CheckIn, len(checkIns))
	copy(sorted, checkIns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	out := []EnrichedCheckIn{}
	for _, ci := range sorted {
		if len(out) == limit {
			break
		}
		e := EnrichedCheckIn{
			ID:             ci.ID,
			GymID:          ci.GymID,
			GymName:        model.UnknownGymName,
			Timestamp:      ci.Timestamp,
			DistanceMeters: ci.DistanceMeters,
		}
		if lookup != nil {
			if g, err := lookup.GymByID(ci.GymID); err == nil {
				e.GymName = g.Name
				e.City = g.City
			} else if dropUnresolved {
				continue
			}
		} else if dropUnresolved {
			continue
		}
		out = append(out, e)
	}
	return out
}
