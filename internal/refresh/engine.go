// Package refresh keeps per-gym live readings current. A scheduler fetches
// every gym on a fixed cadence and re-fetches immediately when a check-in
// lands. Each sweep carries a generation number; results from a superseded
// sweep are discarded instead of overwriting fresher data.
package refresh

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gympulse/pulse-cli/internal/model"
	"github.com/gympulse/pulse-cli/internal/observability"
	"github.com/gympulse/pulse-cli/internal/resilience"
	"github.com/gympulse/pulse-cli/internal/sensor"
)

// DefaultInterval is the refresh cadence.
const DefaultInterval = 30 * time.Second

// GymLister enumerates the gyms to refresh.
type GymLister interface {
	All() []model.Gym
}

// Engine schedules sensor fetches and caches the latest reading per gym.
type Engine struct {
	feed     sensor.Feed
	gyms     GymLister
	interval time.Duration
	retry    resilience.RetryConfig
	breaker  *resilience.CircuitBreaker

	generation atomic.Uint64
	trigger    chan struct{}

	mu        sync.RWMutex
	snapshots map[string]*model.LiveOccupancyReading
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithInterval overrides the refresh cadence.
func WithInterval(d time.Duration) EngineOption {
	return func(e *Engine) { e.interval = d }
}

// WithRetryConfig overrides the per-fetch retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) EngineOption {
	return func(e *Engine) { e.retry = cfg }
}

// WithBreaker overrides the sensor network circuit breaker.
func WithBreaker(cb *resilience.CircuitBreaker) EngineOption {
	return func(e *Engine) { e.breaker = cb }
}

// NewEngine creates a refresh engine.
func NewEngine(feed sensor.Feed, gyms GymLister, opts ...EngineOption) *Engine {
	e := &Engine{
		feed:      feed,
		gyms:      gyms,
		interval:  DefaultInterval,
		retry:     resilience.DefaultRetryConfig(),
		breaker:   resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig()),
		trigger:   make(chan struct{}, 1),
		snapshots: make(map[string]*model.LiveOccupancyReading),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run refreshes on the configured cadence until ctx is canceled. An initial
// sweep runs immediately.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.sweep(ctx)
		case <-e.trigger:
			e.sweep(ctx)
		}
	}
}

// Trigger requests an immediate refresh, coalescing with any pending one.
// Called when the check-in collection changes.
func (e *Engine) Trigger() {
	select {
	case e.trigger <- struct{}{}:
	default:
	}
}

// Snapshot returns the cached reading for a gym, or nil if none yet.
func (e *Engine) Snapshot(gymID string) *model.LiveOccupancyReading {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshots[gymID]
}

// Snapshots returns a copy of all cached readings.
func (e *Engine) Snapshots() map[string]*model.LiveOccupancyReading {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]*model.LiveOccupancyReading, len(e.snapshots))
	for id, r := range e.snapshots {
		out[id] = r
	}
	return out
}

// sweep fetches all gyms under a fresh generation number.
func (e *Engine) sweep(ctx context.Context) {
	gen := e.generation.Add(1)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, gym := range e.gyms.All() {
		gym := gym
		g.Go(func() error {
			e.refreshGym(ctx, gym.ID, gen)
			return nil
		})
	}
	g.Wait() //nolint:errcheck
}

func (e *Engine) refreshGym(ctx context.Context, gymID string, gen uint64) {
	start := time.Now()
	reading, err := resilience.ExecuteVal(ctx, e.breaker, func(ctx context.Context) (*model.LiveOccupancyReading, error) {
		return resilience.DoVal(ctx, e.retry, func(ctx context.Context) (*model.LiveOccupancyReading, error) {
			return e.feed.Fetch(ctx, gymID)
		})
	})
	observability.RecordFetch(time.Since(start), err)
	if err != nil {
		// Retried on the next cycle; the previous snapshot stays visible.
		zap.L().Warn("refresh failed",
			zap.String("gym_id", gymID),
			zap.Uint64("generation", gen),
			zap.Error(err),
		)
		return
	}
	e.commit(gymID, reading, gen)
}

// commit stores a reading unless a newer sweep has started since.
func (e *Engine) commit(gymID string, reading *model.LiveOccupancyReading, gen uint64) {
	if e.generation.Load() != gen {
		zap.L().Debug("discarding stale refresh result",
			zap.String("gym_id", gymID),
			zap.Uint64("generation", gen),
		)
		return
	}
	e.mu.Lock()
	e.snapshots[gymID] = reading
	e.mu.Unlock()

	observability.RecordOccupancy(gymID, reading.Percentage)
	observability.RecordRefreshSuccess(reading.LastUpdatedAt)
}
