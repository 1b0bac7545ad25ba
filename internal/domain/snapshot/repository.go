package snapshot

import "context"

// Repository defines the interface for snapshot persistence. Stores are
// append-only: Save never overwrites an existing snapshot.
type Repository interface {
	// Save persists a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot for an organization whose
	// run ID differs from excludeRunID, so a run never matches the
	// snapshot it wrote itself. Returns a NOT_FOUND error when no
	// qualifying snapshot exists.
	Latest(ctx context.Context, org, excludeRunID string) (*Snapshot, error)

	// Get retrieves one snapshot by ID.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns snapshots for an organization, newest first, up to limit.
	List(ctx context.Context, org string, limit int) ([]*Snapshot, error)
}
