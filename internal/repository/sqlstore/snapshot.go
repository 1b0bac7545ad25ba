package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/guardline/restoreaudit/internal/domain/snapshot"
	"github.com/guardline/restoreaudit/internal/pkg/errors"
)

// SnapshotRepository implements snapshot.Repository on a SQL database.
// The full snapshot document is stored as JSON alongside the columns the
// queries filter and sort on.
type SnapshotRepository struct {
	db     *sql.DB
	driver string
}

// NewSnapshotRepository creates a SQL-backed snapshot repository.
func NewSnapshotRepository(db *sql.DB, driver string) *SnapshotRepository {
	return &SnapshotRepository{db: db, driver: driver}
}

// Save inserts a new snapshot row.
func (r *SnapshotRepository) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return errors.StoreError("Failed to encode snapshot", err)
	}

	query := rebind(r.driver, `
		INSERT INTO snapshots (id, org, run_id, created_at, payload)
		VALUES (?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, query,
		snap.ID, snap.Org, snap.RunID, snap.CreatedAt.UTC(), string(payload))
	if err != nil {
		return errors.StoreError("Failed to insert snapshot", err)
	}
	return nil
}

// Latest returns the newest snapshot for org excluding the given run ID.
func (r *SnapshotRepository) Latest(ctx context.Context, org, excludeRunID string) (*snapshot.Snapshot, error) {
	query := rebind(r.driver, `
		SELECT payload FROM snapshots
		WHERE org = ? AND run_id != ?
		ORDER BY created_at DESC
		LIMIT 1`)

	var payload string
	err := r.db.QueryRowContext(ctx, query, org, excludeRunID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("snapshot")
	}
	if err != nil {
		return nil, errors.StoreError("Failed to query latest snapshot", err)
	}
	return decode(payload)
}

// Get retrieves one snapshot by ID.
func (r *SnapshotRepository) Get(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	query := rebind(r.driver, `SELECT payload FROM snapshots WHERE id = ?`)

	var payload string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("snapshot")
	}
	if err != nil {
		return nil, errors.StoreError("Failed to query snapshot", err)
	}
	return decode(payload)
}

// List returns snapshots for org, newest first, up to limit (0 = all).
func (r *SnapshotRepository) List(ctx context.Context, org string, limit int) ([]*snapshot.Snapshot, error) {
	query := `
		SELECT payload FROM snapshots
		WHERE org = ?
		ORDER BY created_at DESC`
	args := []interface{}{org}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, rebind(r.driver, query), args...)
	if err != nil {
		return nil, errors.StoreError("Failed to list snapshots", err)
	}
	defer rows.Close()

	var snaps []*snapshot.Snapshot
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.StoreError("Failed to scan snapshot row", err)
		}
		s, err := decode(payload)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError("Failed to iterate snapshot rows", err)
	}
	return snaps, nil
}

func decode(payload string) (*snapshot.Snapshot, error) {
	var s snapshot.Snapshot
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, errors.StoreError("Failed to decode snapshot payload", err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}
