package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/eugenenazirov/cms-admin/internal/cmsconfig"
)

var (
	// ErrNotLoaded indicates no configuration has been stored yet.
	ErrNotLoaded = errors.New("cms config has not been loaded")
	// ErrInvalidSnapshot indicates a snapshot without source or load time.
	ErrInvalidSnapshot = errors.New("snapshot must carry a source and a load time")
)

// Snapshot is a parsed configuration together with where and when it was loaded.
type Snapshot struct {
	Config   cmsconfig.CmsConfig
	Source   string
	LoadedAt time.Time
}

// Storage provides access to the active CMS configuration.
type Storage interface {
	Current() (Snapshot, error)
	Replace(snapshot Snapshot) error
}

// MemoryStorage keeps the active snapshot in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewMemoryStorage returns an empty store; Current fails until Replace succeeds.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Current returns the active snapshot. Snapshots are never mutated once
// stored, so the returned value can be shared freely.
func (s *MemoryStorage) Current() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return Snapshot{}, ErrNotLoaded
	}
	return *s.snapshot, nil
}

// Replace swaps the active snapshot in one step.
func (s *MemoryStorage) Replace(snapshot Snapshot) error {
	if snapshot.Source == "" || snapshot.LoadedAt.IsZero() {
		return ErrInvalidSnapshot
	}

	s.mu.Lock()
	s.snapshot = &snapshot
	s.mu.Unlock()

	return nil
}
