package ingest

import (
	"sync"

	"github.com/turtacn/RD-Observatory/internal/domain/observation"
	"github.com/turtacn/RD-Observatory/pkg/errors"
)

// Store holds the active dataset and enforces last-request-wins activation:
// when imports overlap, only the one started last may activate its result;
// earlier results are discarded on arrival.
type Store struct {
	mu      sync.RWMutex
	current *observation.Dataset
	gen     uint64
}

// NewStore returns an empty store; Current errors until the first activation.
func NewStore() *Store {
	return &Store{}
}

// Current implements dashboard.DatasetProvider.
func (s *Store) Current() (*observation.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, errors.New(errors.ErrCodeDatasetNotFound, "no dataset loaded yet")
	}
	return s.current, nil
}

// Begin marks the start of a load and returns its generation token.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

// Activate installs ds if gen still is the newest started load. Returns
// false when a newer load began in the meantime; the caller must discard its
// result.
func (s *Store) Activate(gen uint64, ds *observation.Dataset) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.current = ds
	return true
}
