// Package store provides SQLite-backed waypoint persistence.
package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/signalsfoundry/delta-e6b/model"
)

// Store wraps a SQLite connection holding the waypoint database.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path. Use ":memory:"
// for an ephemeral database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS waypoints (
		name TEXT PRIMARY KEY,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		field_nt REAL NOT NULL
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Upsert writes a waypoint, replacing any existing row with the same name.
func (s *Store) Upsert(wp model.Waypoint) error {
	_, err := s.conn.Exec(`
		INSERT INTO waypoints (name, lat, lon, field_nt) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET lat=excluded.lat, lon=excluded.lon, field_nt=excluded.field_nt`,
		wp.Name, wp.Lat, wp.Lon, wp.FieldNT,
	)
	if err != nil {
		return fmt.Errorf("upsert waypoint %q: %w", wp.Name, err)
	}
	return nil
}

// LoadAll returns every stored waypoint ordered by name. Ring anchors are not
// derived here; the knowledge base attaches them on insert.
func (s *Store) LoadAll() ([]model.Waypoint, error) {
	var rows []model.Waypoint
	if err := s.conn.Select(&rows, `SELECT name, lat, lon, field_nt FROM waypoints ORDER BY name`); err != nil {
		return nil, fmt.Errorf("load waypoints: %w", err)
	}
	return rows, nil
}

// Count returns the number of stored waypoints.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.conn.Get(&n, `SELECT COUNT(*) FROM waypoints`); err != nil {
		return 0, fmt.Errorf("count waypoints: %w", err)
	}
	return n, nil
}
