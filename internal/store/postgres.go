package store

import (
	"errors"
	"time"

	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/gympulse/pulse-cli/internal/db"
	"github.com/gympulse/pulse-cli/internal/model"
)

// PostgresStore implements Store using pgxpool. Used when multiple clients
// share one check-in collection.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Tests pass a pgxmock pool.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS check_ins (
	id              TEXT PRIMARY KEY,
	gym_id          TEXT NOT NULL,
	user_id         TEXT NOT NULL,
	ts              TIMESTAMPTZ NOT NULL,
	distance_meters INTEGER,
	source          TEXT NOT NULL DEFAULT 'user'
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sensor_readings (
	gym_id      TEXT NOT NULL,
	headcount   INTEGER NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_check_ins_ts ON check_ins(ts);
CREATE INDEX IF NOT EXISTS idx_check_ins_gym ON check_ins(gym_id, ts);
CREATE INDEX IF NOT EXISTS idx_check_ins_user ON check_ins(user_id, ts);
CREATE INDEX IF NOT EXISTS idx_sensor_readings_gym ON sensor_readings(gym_id, recorded_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) AppendCheckIn(ctx context.Context, ci model.CheckIn) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO check_ins (id, gym_id, user_id, ts, distance_meters, source) VALUES ($1, $2, $3, $4, $5, $6)`,
		ci.ID, ci.GymID, ci.UserID, ci.Timestamp.UTC(), ci.DistanceMeters, string(ci.Source),
	)
	return eris.Wrap(err, "postgres: insert check-in")
}

// BulkAppendCheckIns imports check-ins via the COPY protocol. Used when
// migrating a local history into a shared deployment.
func (s *PostgresStore) BulkAppendCheckIns(ctx context.Context, cis []model.CheckIn) (int, error) {
	rows := make([][]any, 0, len(cis))
	for _, ci := range cis {
		rows = append(rows, []any{ci.ID, ci.GymID, ci.UserID, ci.Timestamp.UTC(), ci.DistanceMeters, string(ci.Source)})
	}
	n, err := db.CopyFrom(ctx, s.pool, "check_ins",
		[]string{"id", "gym_id", "user_id", "ts", "distance_meters", "source"}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: bulk append check-ins")
	}
	return int(n), nil
}

func (s *PostgresStore) ListCheckIns(ctx context.Context, since time.Time) ([]model.CheckIn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, gym_id, user_id, ts, distance_meters, source FROM check_ins WHERE ts > $1 ORDER BY ts DESC`,
		since.UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list check-ins")
	}
	defer rows.Close()
	return collectCheckIns(rows)
}

func (s *PostgresStore) ListUserCheckIns(ctx context.Context, userID string, limit int) ([]model.CheckIn, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, gym_id, user_id, ts, distance_meters, source FROM check_ins WHERE user_id = $1 ORDER BY ts DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list user check-ins")
	}
	defer rows.Close()
	return collectCheckIns(rows)
}

func (s *PostgresStore) LatestUserCheckIn(ctx context.Context, userID, gymID string) (*model.CheckIn, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, gym_id, user_id, ts, distance_meters, source FROM check_ins
		 WHERE user_id = $1 AND gym_id = $2 ORDER BY ts DESC LIMIT 1`,
		userID, gymID,
	)
	ci, err := pgScanCheckIn(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest user check-in")
	}
	return ci, nil
}

func (s *PostgresStore) PruneCheckIns(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM check_ins WHERE ts <= $1`, cutoff.UTC())
	if err != nil {
		return 0, eris.Wrap(err, "postgres: prune check-ins")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) ClientID(ctx context.Context) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, ClientIDKey).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "postgres: get client id")
	}
	return value, nil
}

func (s *PostgresStore) SetClientID(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		ClientIDKey, id,
	)
	return eris.Wrap(err, "postgres: set client id")
}

func (s *PostgresStore) SetSensorReading(ctx context.Context, r model.SensorReading) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sensor_readings (gym_id, headcount, recorded_at) VALUES ($1, $2, $3)`,
		r.GymID, r.Headcount, r.RecordedAt.UTC(),
	)
	return eris.Wrap(err, "postgres: insert sensor reading")
}

func (s *PostgresStore) LatestSensorReading(ctx context.Context, gymID string) (*model.SensorReading, error) {
	var r model.SensorReading
	err := s.pool.QueryRow(ctx,
		`SELECT gym_id, headcount, recorded_at FROM sensor_readings
		 WHERE gym_id = $1 ORDER BY recorded_at DESC LIMIT 1`,
		gymID,
	).Scan(&r.GymID, &r.Headcount, &r.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest sensor reading")
	}
	return &r, nil
}

func pgScanCheckIn(row pgx.Row) (*model.CheckIn, error) {
	var ci model.CheckIn
	var source string
	if err := row.Scan(&ci.ID, &ci.GymID, &ci.UserID, &ci.Timestamp, &ci.DistanceMeters, &source); err != nil {
		return nil, err
	}
	ci.Source = model.CheckInSource(source)
	return &ci, nil
}

func collectCheckIns(rows pgx.Rows) ([]model.CheckIn, error) {
	var out []model.CheckIn
	for rows.Next() {
		ci, err := pgScanCheckIn(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan check-in")
		}
		out = append(out, *ci)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate check-ins")
	}
	return out, nil
}
