// Package checkin validates and records user presence events. A submission
// passes a per-gym rate limit and a proximity geofence before it is appended
// to the store; failures surface as user-facing rejections, not hard errors.
package checkin

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/gympulse/pulse-cli/internal/geo"
	"github.com/gympulse/pulse-cli/internal/model"
	"github.com/gympulse/pulse-cli/internal/store"
)

const (
	// RateLimitWindow is the minimum gap between check-ins at the same gym.
	RateLimitWindow = 60 * time.Minute
	// MaxDistanceMeters is the geofence radius. The boundary is inclusive.
	MaxDistanceMeters = 200.0
)

// Rejection reasons.
const (
	ReasonRateLimited       = "rate_limited"
	ReasonOutOfRange        = "out_of_range"
	ReasonGeolocationFailed = "geolocation_failed"
)

// WithinRange reports whether a resolved distance passes the geofence.
// Exactly MaxDistanceMeters is allowed.
func WithinRange(distanceMeters float64) bool {
	return distanceMeters <= MaxDistanceMeters
}

// RejectionError is a business-rule rejection with a user-facing message.
// It is not a system failure; callers display Message and move on.
type RejectionError struct {
	Reason           string  `json:"reason"`
	Message          string  `json:"message"`
	MinutesRemaining int     `json:"minutes_remaining,omitempty"`
	DistanceMeters   float64 `json:"distance_meters,omitempty"`
}

func (e *RejectionError) Error() string { return e.Message }

// GymLookup resolves gyms by id.
type GymLookup interface {
	GymByID(id string) (*model.Gym, error)
}

// Service performs check-in validation and persistence.
type Service struct {
	store   store.Store
	lookup  GymLookup
	locator Locator
	nowFunc func() time.Time
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithNow overrides the clock. Tests use this.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.nowFunc = now }
}

// WithIDGenerator overrides check-in id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService creates a check-in service.
func NewService(st store.Store, lookup GymLookup, locator Locator, opts ...Option) *Service {
	s := &Service{
		store:   st,
		lookup:  lookup,
		locator: locator,
		nowFunc: time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates a check-in attempt for the given user and gym. A
// *RejectionError return means the attempt was refused by a business rule;
// any other error is a system failure. On success the check-in has been
// appended to the store.
func (s *Service) Submit(ctx context.Context, userID, gymID string) (*model.CheckIn, error) {
	gym, err := s.lookup.GymByID(gymID)
	if err != nil {
		return nil, eris.Wrapf(err, "checkin: resolve gym %s", gymID)
	}
	now := s.nowFunc()

	if err := s.checkRateLimit(ctx, userID, gymID, now); err != nil {
		return nil, err
	}

	pos, err := s.locator.CurrentPosition(ctx)
	if err != nil {
		return nil, &RejectionError{
			Reason:  ReasonGeolocationFailed,
			Message: geolocationMessage(err),
		}
	}

	return s.complete(ctx, userID, gym, pos, now)
}

// SubmitAt is Submit with a caller-supplied position instead of the locator.
// The HTTP API uses this; the client resolves its own geolocation.
func (s *Service) SubmitAt(ctx context.Context, userID, gymID string, pos model.Coordinates) (*model.CheckIn, error) {
	gym, err := s.lookup.GymByID(gymID)
	if err != nil {
		return nil, eris.Wrapf(err, "checkin: resolve gym %s", gymID)
	}
	now := s.nowFunc()

	if err := s.checkRateLimit(ctx, userID, gymID, now); err != nil {
		return nil, err
	}
	return s.complete(ctx, userID, gym, pos, now)
}

func (s *Service) checkRateLimit(ctx context.Context, userID, gymID string, now time.Time) error {
	last, err := s.store.LatestUserCheckIn(ctx, userID, gymID)
	if err != nil {
		return eris.Wrap(err, "checkin: load latest check-in")
	}
	if last == nil {
		return nil
	}
	elapsed := now.Sub(last.Timestamp)
	if elapsed >= RateLimitWindow {
		return nil
	}
	remaining := int(math.Ceil((RateLimitWindow - elapsed).Minutes()))
	return &RejectionError{
		Reason:           ReasonRateLimited,
		MinutesRemaining: remaining,
		Message:          fmt.Sprintf("You already checked in here recently. Try again in %d min.", remaining),
	}
}

func (s *Service) complete(ctx context.Context, userID string, gym *model.Gym, pos model.Coordinates, now time.Time) (*model.CheckIn, error) {
	dist := geo.Distance(pos.Lat, pos.Lng, gym.Coordinates.Lat, gym.Coordinates.Lng)
	if !WithinRange(dist) {
		return nil, &RejectionError{
			Reason:         ReasonOutOfRange,
			DistanceMeters: dist,
			Message:        fmt.Sprintf("You are %.0f m away from %s. Move within %.0f m to check in.", dist, gym.Name, MaxDistanceMeters),
		}
	}

	rounded := int(math.Round(dist))
	ci := model.CheckIn{
		ID:             s.newID(),
		GymID:          gym.ID,
		UserID:         userID,
		Timestamp:      now,
		DistanceMeters: &rounded,
		Source:         model.CheckInSourceUser,
	}
	if err := s.store.AppendCheckIn(ctx, ci); err != nil {
		return nil, eris.Wrap(err, "checkin: append")
	}
	return &ci, nil
}

func geolocationMessage(err error) string {
	switch {
	case eris.Is(err, ErrPermissionDenied):
		return "Location permission denied. Enable location access to check in."
	case eris.Is(err, ErrPositionUnavailable):
		return "Your position could not be determined. Try again."
	case eris.Is(err, ErrTimeout):
		return "Timed out while getting your location. Try again."
	default:
		return "Could not get your location."
	}
}
