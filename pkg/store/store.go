// Package store holds the parsed configuration for the long-running
// surfaces (API server, interactive shell) and supports atomic reloads.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/veepee-oss/f5-reader/pkg/config"
	"github.com/veepee-oss/f5-reader/pkg/ltm"
)

// Store owns the active configuration tree. The tree itself is immutable;
// reloads swap the whole tree under the lock.
type Store struct {
	mu         sync.RWMutex
	path       string
	tree       *config.Tree
	ltm        *ltm.LTM
	loadedAt   time.Time
	generation uint64
}

// New creates a store backed by the given configuration dump.
func New(path string) *Store {
	return &Store{path: path}
}

// Load parses the dump and swaps it in. On failure the previously loaded
// tree (if any) stays active, so a bad write to the dump never drops a
// working topology.
func (s *Store) Load() error {
	tree, err := config.ParseFile(s.path)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree = tree
	s.ltm = ltm.New(tree)
	s.loadedAt = time.Now()
	s.generation++
	return nil
}

// Path returns the configuration dump path.
func (s *Store) Path() string {
	return s.path
}

// Tree returns the active configuration tree, nil before the first
// successful load.
func (s *Store) Tree() *config.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// LTM returns the query view over the active tree, nil before the first
// successful load.
func (s *Store) LTM() *ltm.LTM {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ltm
}

// LoadedAt returns when the active tree was loaded.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Generation returns the number of successful loads.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}
