package analytics

import (
	"sort"
	"time"

	"github.com/gympulse/pulse-cli/internal/model"
	"github.com/gympulse/pulse-cli/internal/occupancy"
)

// PartnershipMetrics is the anonymized per-gym aggregate block.
type PartnershipMetrics struct {
	TotalCheckIns      int `json:"total_check_ins"`
	UniqueUsers        int `json:"unique_users"`
	EstimatedOccupancy int `json:"estimated_occupancy"`
}

// PartnershipInsight is one gym's entry in the export document.
type PartnershipInsight struct {
	GymID    string             `json:"gym_id"`
	GymName  string             `json:"gym_name"`
	City     string             `json:"city,omitempty"`
	Province string             `json:"province,omitempty"`
	Metrics  PartnershipMetrics `json:"metrics"`
}

// PartnershipSummary carries document-level totals.
type PartnershipSummary struct {
	TotalActiveUsers int       `json:"total_active_users"`
	TotalCheckIns    int       `json:"total_check_ins"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// PartnershipDocument is the anonymized export shared with gym partners.
// It carries only aggregate counts: no raw user identifiers and no
// per-event timestamps.
type PartnershipDocument struct {
	Summary  PartnershipSummary   `json:"summary"`
	Insights []PartnershipInsight `json:"insights"`
}

// BuildPartnershipExport reshapes the check-in collection into the
// partnership document. Gyms that do not resolve against the directory are
// omitted.
func BuildPartnershipExport(checkIns []model.CheckIn, lookup GymLookup, now time.Time) PartnershipDocument {
	doc := PartnershipDocument{
		Summary:  PartnershipSummary{TotalCheckIns: len(checkIns), GeneratedAt: now},
		Insights: []PartnershipInsight{},
	}

	allUsers := map[string]struct{}{}
	perGymTotal := map[string]int{}
	perGymUsers := map[string]map[string]struct{}{}
	perGymRecent := map[string]int{}
	recentCutoff := now.Add(-occupancy.CheckInWindow)

	for _, ci := range checkIns {
		allUsers[ci.UserID] = struct{}{}
		perGymTotal[ci.GymID]++
		if perGymUsers[ci.GymID] == nil {
			perGymUsers[ci.GymID] = map[string]struct{}{}
		}
		perGymUsers[ci.GymID][ci.UserID] = struct{}{}
		if ci.Timestamp.After(recentCutoff) {
			perGymRecent[ci.GymID]++
		}
	}
	doc.Summary.TotalActiveUsers = len(allUsers)

	for id, total := range perGymTotal {
		g, err := lookupGym(lookup, id)
		if err != nil {
			continue
		}
		doc.Insights = append(doc.Insights, PartnershipInsight{
			GymID:    id,
			GymName:  g.Name,
			City:     g.City,
			Province: g.Province,
			Metrics: PartnershipMetrics{
				TotalCheckIns:      total,
				UniqueUsers:        len(perGymUsers[id]),
				EstimatedOccupancy: occupancy.EstimateOccupancyPercent(perGymRecent[id], g.EffectiveCapacity()),
			},
		})
	}

	sort.Slice(doc.Insights, func(i, j int) bool {
		a, b := doc.Insights[i], doc.Insights[j]
		if a.Metrics.TotalCheckIns != b.Metrics.TotalCheckIns {
			return a.Metrics.TotalCheckIns > b.Metrics.TotalCheckIns
		}
		return a.GymID < b.GymID
	})

	return doc
}
