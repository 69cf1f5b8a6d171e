// Package store persists the check-in collection, the per-client identity,
// and ingested sensor readings. Two backends implement the same interface:
// SQLite for single-machine local state, Postgres for a shared deployment.
package store

import (
	"context"
	"time"

	"github.com/gympulse/pulse-cli/internal/model"
)

// ClientIDKey is the fixed settings key under which the stable per-client
// user identifier is stored.
const ClientIDKey = "client_id"

// Store is the persistence interface for the occupancy core.
type Store interface {
	// Check-ins. The collection is append-only; pruning is the only delete.
	AppendCheckIn(ctx context.Context, ci model.CheckIn) error
	BulkAppendCheckIns(ctx context.Context, cis []model.CheckIn) (int, error)
	ListCheckIns(ctx context.Context, since time.Time) ([]model.CheckIn, error)
	ListUserCheckIns(ctx context.Context, userID string, limit int) ([]model.CheckIn, error)
	LatestUserCheckIn(ctx context.Context, userID, gymID string) (*model.CheckIn, error)
	PruneCheckIns(ctx context.Context, cutoff time.Time) (int, error)

	// Client identity.
	ClientID(ctx context.Context) (string, error)
	SetClientID(ctx context.Context, id string) error

	// Sensor readings.
	SetSensorReading(ctx context.Context, r model.SensorReading) error
	LatestSensorReading(ctx context.Context, gymID string) (*model.SensorReading, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
