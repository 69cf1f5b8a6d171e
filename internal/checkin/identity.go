package checkin

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/gympulse/pulse-cli/internal/store"
)

// EnsureUserID returns the stable pseudo-anonymous identifier for this
// client, generating and persisting one on first use.
func EnsureUserID(ctx context.Context, st store.Store) (string, error) {
	id, err := st.ClientID(ctx)
	if err != nil {
		return "", eris.Wrap(err, "checkin: load client id")
	}
	if id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := st.SetClientID(ctx, id); err != nil {
		return "", eris.Wrap(err, "checkin: persist client id")
	}
	return id, nil
}
