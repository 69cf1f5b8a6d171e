// Package sensor simulates the gym sensor network. A fetch imposes a short
// network delay and occasionally fails with a transient error, which the
// refresh loop retries on its next cycle.
package sensor

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/gympulse/pulse-cli/internal/model"
	"github.com/gympulse/pulse-cli/internal/occupancy"
	"github.com/gympulse/pulse-cli/internal/resilience"
)

const (
	// DefaultDelay approximates the sensor network round trip.
	DefaultDelay = 450 * time.Millisecond
	// DefaultFailurePercent is the chance a fetch fails transiently.
	DefaultFailurePercent = 4
)

// ErrUnreachable is the transient failure surfaced by the simulated network.
var ErrUnreachable = eris.New("sensor: unable to reach sensor network")

// Feed produces a live reading for one gym.
type Feed interface {
	Fetch(ctx context.Context, gymID string) (*model.LiveOccupancyReading, error)
}

// ComputeFunc produces the reading once the simulated network call survives.
type ComputeFunc func(ctx context.Context, gymID string) (*model.LiveOccupancyReading, error)

// SimulatedFeed wraps a compute function with delay, failure injection, and
// a client-side rate limit.
type SimulatedFeed struct {
	compute        ComputeFunc
	delay          time.Duration
	failurePercent int
	src            occupancy.SignalSource
	limiter        *rate.Limiter
}

// FeedOption configures a SimulatedFeed.
type FeedOption func(*SimulatedFeed)

// WithDelay overrides the simulated network delay.
func WithDelay(d time.Duration) FeedOption {
	return func(f *SimulatedFeed) { f.delay = d }
}

// WithFailurePercent overrides the transient failure rate, 0 to 100.
func WithFailurePercent(p int) FeedOption {
	return func(f *SimulatedFeed) { f.failurePercent = p }
}

// WithSignalSource overrides the randomness used for failure injection.
func WithSignalSource(src occupancy.SignalSource) FeedOption {
	return func(f *SimulatedFeed) { f.src = src }
}

// WithRateLimit caps fetches per second across all gyms.
func WithRateLimit(perSecond float64, burst int) FeedOption {
	return func(f *SimulatedFeed) { f.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// NewSimulatedFeed creates a feed over the given compute function.
func NewSimulatedFeed(compute ComputeFunc, opts ...FeedOption) *SimulatedFeed {
	f := &SimulatedFeed{
		compute:        compute,
		delay:          DefaultDelay,
		failurePercent: DefaultFailurePercent,
		src:            occupancy.NewRandomSource(),
		limiter:        rate.NewLimiter(rate.Limit(10), 20),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch waits out the simulated delay, then either fails transiently or
// returns the computed reading.
func (f *SimulatedFeed) Fetch(ctx context.Context, gymID string) (*model.LiveOccupancyReading, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "sensor: rate limit wait")
	}

	if f.delay > 0 {
		timer := time.NewTimer(f.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, eris.Wrap(ctx.Err(), "sensor: fetch canceled")
		case <-timer.C:
		}
	}

	if f.failurePercent > 0 && f.src.IntN(100) < f.failurePercent {
		return nil, resilience.NewTransientError(ErrUnreachable)
	}

	return f.compute(ctx, gymID)
}
