package state

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the local sync journal. It records what was uploaded to
// Intervals.icu so unchanged workouts are not re-sent.
type DB struct {
	db *sql.DB
}

// SyncedEvent is one journal row.
type SyncedEvent struct {
	ExternalID  string
	WorkoutDate string
	Name        string
	Hash        string
}

// Open opens (or creates) the SQLite journal at dir/state.db and
// applies pending migrations.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	return &DB{db: db}, nil
}

// runMigrations applies all pending migrations from the embedded set.
func runMigrations(dbPath string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+dbPath)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// IsCurrent reports whether an event was already synced with this
// exact payload hash.
func (s *DB) IsCurrent(externalID, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM synced_events WHERE external_id = ? AND hash = ?`,
		externalID, hash,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkSynced records that an event was successfully uploaded.
func (s *DB) MarkSynced(externalID, workoutDate, name, hash string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO synced_events (external_id, workout_date, name, hash) VALUES (?, ?, ?, ?)`,
		externalID, workoutDate, name, hash,
	)
	return err
}

// DeleteSynced drops an event from the journal so the next sync
// re-uploads it.
func (s *DB) DeleteSynced(externalID string) error {
	_, err := s.db.Exec(`DELETE FROM synced_events WHERE external_id = ?`, externalID)
	return err
}

// ListSynced returns all journal rows ordered by workout date.
func (s *DB) ListSynced() ([]SyncedEvent, error) {
	rows, err := s.db.Query(
		`SELECT external_id, workout_date, name, hash FROM synced_events ORDER BY workout_date, external_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []SyncedEvent
	for rows.Next() {
		var ev SyncedEvent
		if err := rows.Scan(&ev.ExternalID, &ev.WorkoutDate, &ev.Name, &ev.Hash); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// GetSyncState returns the value for a sync_state key, or "" when the
// key has never been set.
func (s *DB) GetSyncState(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM sync_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSyncState stores a sync_state key, replacing any previous value.
func (s *DB) SetSyncState(key, value string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO sync_state (key, value) VALUES (?, ?)`,
		key, value,
	)
	return err
}

// Close closes the journal database.
func (s *DB) Close() error {
	return s.db.Close()
}
