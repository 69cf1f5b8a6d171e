package refresh

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gympulse/pulse-cli/internal/model"
	"github.com/gympulse/pulse-cli/internal/resilience"
)

type staticLister []model.Gym

func (l staticLister) All() []model.Gym { return l }

type fakeFeed struct {
	mu       sync.Mutex
	readings map[string]*model.LiveOccupancyReading
	err      error
	calls    int
}

func (f *fakeFeed) Fetch(_ context.Context, gymID string) (*model.LiveOccupancyReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.readings[gymID]
	if !ok {
		return nil, eris.Errorf("no reading for %s", gymID)
	}
	return r, nil
}

func twoGyms() staticLister {
	return staticLister{{ID: "gym-a"}, {ID: "gym-b"}}
}

func TestSweep_PopulatesSnapshots(t *testing.T) {
	feed := &fakeFeed{readings: map[string]*model.LiveOccupancyReading{
		"gym-a": {GymID: "gym-a", Percentage: 40},
		"gym-b": {GymID: "gym-b", Percentage: 80},
	}}
	e := NewEngine(feed, twoGyms())

	e.sweep(context.Background())

	require.NotNil(t, e.Snapshot("gym-a"))
	assert.Equal(t, 40, e.Snapshot("gym-a").Percentage)
	assert.Equal(t, 80, e.Snapshot("gym-b").Percentage)
	assert.Len(t, e.Snapshots(), 2)
}

func TestSweep_FailureKeepsPreviousSnapshot(t *testing.T) {
	feed := &fakeFeed{readings: map[string]*model.LiveOccupancyReading{
		"gym-a": {GymID: "gym-a", Percentage: 40},
	}}
	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = 1
	e := NewEngine(feed, staticLister{{ID: "gym-a"}}, WithRetryConfig(cfg))

	e.sweep(context.Background())
	require.NotNil(t, e.Snapshot("gym-a"))

	feed.mu.Lock()
	feed.err = eris.New("sensor down")
	feed.mu.Unlock()

	e.sweep(context.Background())
	// Old reading survives a failed cycle.
	require.NotNil(t, e.Snapshot("gym-a"))
	assert.Equal(t, 40, e.Snapshot("gym-a").Percentage)
}

func TestCommit_DiscardsStaleGeneration(t *testing.T) {
	e := NewEngine(&fakeFeed{}, staticLister{})

	gen := e.generation.Add(1)
	// A newer sweep starts before the first one commits.
	e.generation.Add(1)

	e.commit("gym-a", &model.LiveOccupancyReading{GymID: "gym-a", Percentage: 10}, gen)
	assert.Nil(t, e.Snapshot("gym-a"))

	// The current generation commits fine.
	e.commit("gym-a", &model.LiveOccupancyReading{GymID: "gym-a", Percentage: 20}, e.generation.Load())
	require.NotNil(t, e.Snapshot("gym-a"))
	assert.Equal(t, 20, e.Snapshot("gym-a").Percentage)
}

func TestTrigger_CoalescesWhilePending(t *testing.T) {
	e := NewEngine(&fakeFeed{}, staticLister{})

	// Never blocks, even with no scheduler draining the channel.
	e.Trigger()
	e.Trigger()
	e.Trigger()
	assert.Len(t, e.trigger, 1)
}

func TestRun_StopsOnCancel(t *testing.T) {
	feed := &fakeFeed{readings: map[string]*model.LiveOccupancyReading{
		"gym-a": {GymID: "gym-a", Percentage: 40},
	}}
	e := NewEngine(feed, staticLister{{ID: "gym-a"}}, WithInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	assert.Eventually(t, func() bool { return e.Snapshot("gym-a") != nil },
		time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestRun_TriggerForcesImmediateSweep(t *testing.T) {
	feed := &fakeFeed{readings: map[string]*model.LiveOccupancyReading{
		"gym-a": {GymID: "gym-a", Percentage: 40},
	}}
	e := NewEngine(feed, staticLister{{ID: "gym-a"}}, WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.Run(ctx) //nolint:errcheck

	assert.Eventually(t, func() bool { return e.Snapshot("gym-a") != nil },
		time.Second, 5*time.Millisecond)

	feed.mu.Lock()
	feed.readings["gym-a"] = &model.LiveOccupancyReading{GymID: "gym-a", Percentage: 90}
	feed.mu.Unlock()

	e.Trigger()
	assert.Eventually(t, func() bool { return e.Snapshot("gym-a").Percentage == 90 },
		time.Second, 5*time.Millisecond)
}
