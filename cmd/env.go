package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gympulse/pulse-cli/internal/checkin"
	"github.com/gympulse/pulse-cli/internal/config"
	"github.com/gympulse/pulse-cli/internal/directory"
	"github.com/gympulse/pulse-cli/internal/entitlement"
	"github.com/gympulse/pulse-cli/internal/model"
	"github.com/gympulse/pulse-cli/internal/occupancy"
	"github.com/gympulse/pulse-cli/internal/store"
)

// appEnv wires the shared components commands run against.
type appEnv struct {
	Store     store.Store
	Directory *directory.Directory
	Synth     *occupancy.Synthesizer
	Blender   *occupancy.Blender
	Live      *occupancy.LiveService
	CheckIns  *checkin.Service
	Issuer    *entitlement.Issuer
	Verifier  *entitlement.Verifier
	UserID    string
}

func (e *appEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("close store", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.MaxConns,
			MinConns: cfg.MinConns,
		})
	case "sqlite", "":
		return store.NewSQLite(cfg.Path)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func loadDirectory(cfg config.DirectoryConfig) (*directory.Directory, error) {
	if cfg.SeedFile != "" {
		return directory.LoadFile(cfg.SeedFile)
	}
	return directory.LoadSeed()
}

// initEnv opens the store, runs migrations, applies load-time pruning, and
// builds the occupancy and check-in services.
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}

	// Check-ins past retention are dropped before anything reads them.
	pruned, err := st.PruneCheckIns(ctx, time.Now().Add(-model.CheckInRetention))
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "prune check-ins")
	}
	if pruned > 0 {
		zap.L().Info("pruned expired check-ins", zap.Int("count", pruned))
	}

	dir, err := loadDirectory(cfg.Directory)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "load gym directory")
	}

	userID, err := checkin.EnsureUserID(ctx, st)
	if err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "ensure user id")
	}

	synth := occupancy.NewSynthesizer(occupancy.NewRandomSource())
	blender := occupancy.NewBlender(synth)
	live := occupancy.NewLiveService(st, dir, blender)

	locator := checkin.StaticLocator{Coords: model.Coordinates{
		Lat: cfg.Checkin.Lat,
		Lng: cfg.Checkin.Lng,
	}}

	secret := []byte(cfg.Entitlement.Secret)
	return &appEnv{
		Store:     st,
		Directory: dir,
		Synth:     synth,
		Blender:   blender,
		Live:      live,
		CheckIns:  checkin.NewService(st, dir, locator),
		Issuer: entitlement.NewIssuer(secret,
			entitlement.WithTTL(time.Duration(cfg.Entitlement.TTLHours)*time.Hour)),
		Verifier: entitlement.NewVerifier(secret),
		UserID:   userID,
	}, nil
}
