package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/gympulse/pulse-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS check_ins (
	id              TEXT PRIMARY KEY,
	gym_id          TEXT NOT NULL,
	user_id         TEXT NOT NULL,
	ts              DATETIME NOT NULL,
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
	recorded_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_check_ins_ts ON check_ins(ts);
CREATE INDEX IF NOT EXISTS idx_check_ins_gym ON check_ins(gym_id, ts);
CREATE INDEX IF NOT EXISTS idx_check_ins_user ON check_ins(user_id, ts);
CREATE INDEX IF NOT EXISTS idx_sensor_readings_gym ON sensor_readings(gym_id, recorded_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendCheckIn(ctx context.Context, ci model.CheckIn) error {
	var distance any
	if ci.DistanceMeters != nil {
		distance = *ci.DistanceMeters
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO check_ins (id, gym_id, user_id, ts, distance_meters, source) VALUES (?, ?, ?, ?, ?, ?)`,
		ci.ID, ci.GymID, ci.UserID, ci.Timestamp.UTC(), distance, string(ci.Source),
	)
	return eris.Wrap(err, "sqlite: insert check-in")
}

// BulkAppendCheckIns inserts check-ins inside a single transaction.
func (s *SQLiteStore) BulkAppendCheckIns(ctx context.Context, cis []model.CheckIn) (int, error) {
	if len(cis) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin bulk append")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO check_ins (id, gym_id, user_id, ts, distance_meters, source) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare bulk append")
	}
	defer stmt.Close() //nolint:errcheck

	for _, ci := range cis {
		var distance any
		if ci.DistanceMeters != nil {
			distance = *ci.DistanceMeters
		}
		if _, err := stmt.ExecContext(ctx, ci.ID, ci.GymID, ci.UserID, ci.Timestamp.UTC(), distance, string(ci.Source)); err != nil {
			return 0, eris.Wrap(err, "sqlite: bulk append check-in")
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit bulk append")
	}
	return len(cis), nil
}

func (s *SQLiteStore) ListCheckIns(ctx context.Context, since time.Time) ([]model.CheckIn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, gym_id, user_id, ts, distance_meters, source FROM check_ins WHERE ts > ? ORDER BY ts DESC`,
		since.UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list check-ins")
	}
	defer rows.Close()
	return scanCheckIns(rows)
}

func (s *SQLiteStore) ListUserCheckIns(ctx context.Context, userID string, limit int) ([]model.CheckIn, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, gym_id, user_id, ts, distance_meters, source FROM check_ins WHERE user_id = ? ORDER BY ts DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list user check-ins")
	}
	defer rows.Close()
	return scanCheckIns(rows)
}

func (s *SQLiteStore) LatestUserCheckIn(ctx context.Context, userID, gymID string) (*model.CheckIn, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, gym_id, user_id, ts, distance_meters, source FROM check_ins
		 WHERE user_id = ? AND gym_id = ? ORDER BY ts DESC LIMIT 1`,
		userID, gymID,
	)
	ci, err := scanCheckIn(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest user check-in")
	}
	return ci, nil
}

func (s *SQLiteStore) PruneCheckIns(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM check_ins WHERE ts <= ?`, cutoff.UTC())
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune check-ins")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune rows affected")
	}
	return int(n), nil
}

func (s *SQLiteStore) ClientID(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, ClientIDKey,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "sqlite: get client id")
	}
	return value, nil
}

func (s *SQLiteStore) SetClientID(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		ClientIDKey, id,
	)
	return eris.Wrap(err, "sqlite: set client id")
}

func (s *SQLiteStore) SetSensorReading(ctx context.Context, r model.SensorReading) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sensor_readings (gym_id, headcount, recorded_at) VALUES (?, ?, ?)`,
		r.GymID, r.Headcount, r.RecordedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: insert sensor reading")
}

func (s *SQLiteStore) LatestSensorReading(ctx context.Context, gymID string) (*model.SensorReading, error) {
	var r model.SensorReading
	err := s.db.QueryRowContext(ctx,
		`SELECT gym_id, headcount, recorded_at FROM sensor_readings
		 WHERE gym_id = ? ORDER BY recorded_at DESC LIMIT 1`,
		gymID,
	).Scan(&r.GymID, &r.Headcount, &r.RecordedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest sensor reading")
	}
	return &r, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCheckIn(row rowScanner) (*model.CheckIn, error) {
	var ci model.CheckIn
	var distance sql.NullInt64
	var source string
	if err := row.Scan(&ci.ID, &ci.GymID, &ci.UserID, &ci.Timestamp, &distance, &source); err != nil {
		return nil, err
	}
	if distance.Valid {
		d := int(distance.Int64)
		ci.DistanceMeters = &d
	}
	ci.Source = model.CheckInSource(source)
	return &ci, nil
}

func scanCheckIns(rows *sql.Rows) ([]model.CheckIn, error) {
	var out []model.CheckIn
	for rows.Next() {
		ci, err := scanCheckIn(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan check-in")
		}
		out = append(out, *ci)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate check-ins")
	}
	return out, nil
}
