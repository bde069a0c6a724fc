package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	coresnap "github.com/kilianp07/vesselpower/core/snapshot"
)

// SQLiteStore persists snapshots to a SQLite database. Every save is kept;
// Load returns the most recent one.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS vessel_snapshots (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        vessel_id TEXT NOT NULL,
        saved_at INTEGER,
        record TEXT
    );
    CREATE INDEX IF NOT EXISTS idx_vessel_snapshots_vessel ON vessel_snapshots (vessel_id, id);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Save writes the snapshot to the database.
func (s *SQLiteStore) Save(ctx context.Context, v coresnap.Vessel) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO vessel_snapshots (vessel_id, saved_at, record) VALUES (?, ?, ?)`,
		v.VesselID, v.SavedAt.UnixMilli(), string(b))
	return err
}

// Load returns the latest snapshot of vesselID.
func (s *SQLiteStore) Load(ctx context.Context, vesselID string) (coresnap.Vessel, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM vessel_snapshots WHERE vessel_id = ? ORDER BY id DESC LIMIT 1`, vesselID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return coresnap.Vessel{}, coresnap.ErrNotFound
	}
	if err != nil {
		return coresnap.Vessel{}, err
	}
	var v coresnap.Vessel
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return coresnap.Vessel{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return v, nil
}

// Vessels lists the ids that have at least one snapshot.
func (s *SQLiteStore) Vessels(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT vessel_id FROM vessel_snapshots ORDER BY vessel_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
