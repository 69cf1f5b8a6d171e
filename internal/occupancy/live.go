package occupancy

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/gympulse/pulse-cli/internal/model"
	"github.com/gympulse/pulse-cli/internal/store"
)

// GymLookup resolves gyms by id.
type GymLookup interface {
	GymByID(id string) (*model.Gym, error)
}

// LiveService computes the blended live reading for a gym from the stored
// check-in collection and the latest ingested sensor reading. It is both
// the sensor feed's compute function and the on-demand reading path.
type LiveService struct {
	store   store.Store
	lookup  GymLookup
	blender *Blender
	nowFunc func() time.Time
}

// NewLiveService creates a LiveService.
func NewLiveService(st store.Store, lookup GymLookup, blender *Blender) *LiveService {
	return &LiveService{
		store:   st,
		lookup:  lookup,
		blender: blender,
		nowFunc: time.Now,
	}
}

// Reading computes the current live reading for gymID. An unresolved gym id
// degrades to a placeholder reading rather than failing.
func (s *LiveService) Reading(ctx context.Context, gymID string) (*model.LiveOccupancyReading, error) {
	gym, err := s.lookup.GymByID(gymID)
	if err != nil {
		gym = nil
	}

	since := s.nowFunc().Add(-model.CheckInRetention)
	checkIns, err := s.store.ListCheckIns(ctx, since)
	if err != nil {
		return nil, eris.Wrap(err, "occupancy: load check-ins")
	}

	sensor, err := s.store.LatestSensorReading(ctx, gymID)
	if err != nil {
		return nil, eris.Wrap(err, "occupancy: load sensor reading")
	}

	reading := s.blender.Blend(gymID, checkIns, gym, sensor)
	return &reading, nil
}
