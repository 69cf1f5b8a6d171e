package checkin

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gympulse/pulse-cli/internal/model"
)

// Geolocation failure reasons. Callers match these with eris.Is to turn a
// failed position lookup into a user-facing rejection.
var (
	ErrPermissionDenied    = eris.New("checkin: location permission denied")
	ErrPositionUnavailable = eris.New("checkin: position unavailable")
	ErrTimeout             = eris.New("checkin: position lookup timed out")
)

// Locator resolves the client's current position.
type Locator interface {
	CurrentPosition(ctx context.Context) (model.Coordinates, error)
}

// StaticLocator returns a fixed position or error. Used by tests and by the
// CLI when the position is passed as flags.
type StaticLocator struct {
	Coords model.Coordinates
	Err    error
}

func (l StaticLocator) CurrentPosition(_ context.Context) (model.Coordinates, error) {
	if l.Err != nil {
		return model.Coordinates{}, l.Err
	}
	return l.Coords, nil
}
