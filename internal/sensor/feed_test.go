package sensor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gympulse/pulse-cli/internal/model"
	"github.com/gympulse/pulse-cli/internal/occupancy"
	"github.com/gympulse/pulse-cli/internal/resilience"
)

func passthrough(_ context.Context, gymID string) (*model.LiveOccupancyReading, error) {
	return &model.LiveOccupancyReading{GymID: gymID, Percentage: 50}, nil
}

func TestFetch_Success(t *testing.T) {
	feed := NewSimulatedFeed(passthrough,
		WithDelay(0),
		WithSignalSource(&occupancy.SequenceSource{Values: []int{99}}),
	)

	got, err := feed.Fetch(context.Background(), "gym-a")
	require.NoError(t, err)
	assert.Equal(t, "gym-a", got.GymID)
	assert.Equal(t, 50, got.Percentage)
}

func TestFetch_TransientFailure(t *testing.T) {
	// Draw below the failure threshold forces the unreachable path.
	feed := NewSimulatedFeed(passthrough,
		WithDelay(0),
		WithSignalSource(&occupancy.SequenceSource{Values: []int{3}}),
	)

	_, err := feed.Fetch(context.Background(), "gym-a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.True(t, resilience.IsTransient(err))
}

func TestFetch_FailurePercentBoundary(t *testing.T) {
	// Draw equal to the threshold succeeds.
	feed := NewSimulatedFeed(passthrough,
		WithDelay(0),
		WithFailurePercent(4),
		WithSignalSource(&occupancy.SequenceSource{Values: []int{4}}),
	)

	_, err := feed.Fetch(context.Background(), "gym-a")
	require.NoError(t, err)
}

func TestFetch_CanceledDuringDelay(t *testing.T) {
	feed := NewSimulatedFeed(passthrough,
		WithDelay(5*time.Second),
		WithSignalSource(&occupancy.SequenceSource{Values: []int{99}}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := feed.Fetch(ctx, "gym-a")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetch_ImposesDelay(t *testing.T) {
	feed := NewSimulatedFeed(passthrough,
		WithDelay(20*time.Millisecond),
		WithSignalSource(&occupancy.SequenceSource{Values: []int{99}}),
	)

	start := time.Now()
	_, err := feed.Fetch(context.Background(), "gym-a")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
