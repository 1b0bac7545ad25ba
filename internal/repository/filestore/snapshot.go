package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/guardline/restoreaudit/internal/domain/snapshot"
	"github.com/guardline/restoreaudit/internal/pkg/errors"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
)

// SnapshotRepository persists snapshots as individual JSON files in a
// directory. Files are written once and never rewritten; ordering comes
// from the CreatedAt embedded in each snapshot, not from file mtimes.
type SnapshotRepository struct {
	dir    string
	logger *logger.Logger
}

// NewSnapshotRepository creates a file-backed snapshot repository rooted
// at dir, creating the directory if needed.
func NewSnapshotRepository(dir string, log *logger.Logger) (*SnapshotRepository, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.StoreError("Failed to create snapshot directory", err)
	}
	return &SnapshotRepository{dir: dir, logger: log}, nil
}

// Save writes the snapshot to a new file. The name embeds org, creation
// time and a run ID prefix so directory listings read chronologically.
func (r *SnapshotRepository) Save(_ context.Context, snap *snapshot.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.StoreError("Failed to encode snapshot", err)
	}

	runPrefix := snap.RunID
	if len(runPrefix) > 8 {
		runPrefix = runPrefix[:8]
	}
	name := fmt.Sprintf("%s-%s-%s.json",
		snap.Org, snap.CreatedAt.UTC().Format("20060102T150405Z"), runPrefix)

	path := filepath.Join(r.dir, name)
	if _, err := os.Stat(path); err == nil {
		return errors.StoreError("Snapshot file already exists", fmt.Errorf("path %s", path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.StoreError("Failed to write snapshot file", err)
	}
	return nil
}

// Latest returns the newest snapshot for org whose run ID differs from
// excludeRunID. Unreadable files are skipped with a warning so one corrupt
// snapshot never blocks trend computation.
func (r *SnapshotRepository) Latest(ctx context.Context, org, excludeRunID string) (*snapshot.Snapshot, error) {
	snaps, err := r.load(ctx, org)
	if err != nil {
		return nil, err
	}

	var latest *snapshot.Snapshot
	for _, s := range snaps {
		if s.RunID == excludeRunID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, errors.NotFound("snapshot")
	}
	return latest, nil
}

// Get retrieves one snapshot by ID across all organizations.
func (r *SnapshotRepository) Get(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	snaps, err := r.load(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, s := range snaps {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errors.NotFound("snapshot")
}

// List returns snapshots for org, newest first, up to limit (0 = all).
func (r *SnapshotRepository) List(ctx context.Context, org string, limit int) ([]*snapshot.Snapshot, error) {
	snaps, err := r.load(ctx, org)
	if err != nil {
		return nil, err
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}

func (r *SnapshotRepository) load(_ context.Context, org string) ([]*snapshot.Snapshot, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, errors.StoreError("Failed to read snapshot directory", err)
	}

	var snaps []*snapshot.Snapshot
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if org != "" && !strings.HasPrefix(e.Name(), org+"-") {
			continue
		}
		path := filepath.Join(r.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.WithFields(map[string]interface{}{"file": path}).
				ErrorWithErr(err, "Skipping unreadable snapshot file")
			continue
		}
		var s snapshot.Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			r.logger.WithFields(map[string]interface{}{"file": path}).
				ErrorWithErr(err, "Skipping corrupt snapshot file")
			continue
		}
		if org != "" && s.Org != org {
			continue
		}
		snaps = append(snaps, &s)
	}
	return snaps, nil
}
