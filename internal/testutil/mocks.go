package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/guardline/restoreaudit/internal/domain/snapshot"
	"github.com/guardline/restoreaudit/internal/pkg/errors"
)

// MockSnapshotRepository is a map-backed snapshot.Repository with
// injectable failures.
type MockSnapshotRepository struct {
	mu        sync.Mutex
	snapshots map[string]*snapshot.Snapshot

	SaveErr   error
	LatestErr error
	SaveCalls int
}

// NewMockSnapshotRepository creates an empty mock repository.
func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{snapshots: make(map[string]*snapshot.Snapshot)}
}

// Save stores the snapshot in memory.
func (m *MockSnapshotRepository) Save(_ context.Context, snap *snapshot.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.snapshots[snap.ID] = snap
	return nil
}

// Latest returns the newest stored snapshot for org excluding excludeRunID.
func (m *MockSnapshotRepository) Latest(_ context.Context, org, excludeRunID string) (*snapshot.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.LatestErr != nil {
		return nil, m.LatestErr
	}

	var latest *snapshot.Snapshot
	for _, s := range m.snapshots {
		if s.Org != org || s.RunID == excludeRunID {
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

// Get returns one snapshot by ID.
func (m *MockSnapshotRepository) Get(_ context.Context, id string) (*snapshot.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.snapshots[id]; ok {
		return s, nil
	}
	return nil, errors.NotFound("snapshot")
}

// List returns snapshots for org, newest first, up to limit.
func (m *MockSnapshotRepository) List(_ context.Context, org string, limit int) ([]*snapshot.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var snaps []*snapshot.Snapshot
	for _, s := range m.snapshots {
		if s.Org == org {
			snaps = append(snaps, s)
		}
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}
