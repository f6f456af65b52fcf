package predict

import (
	"sync"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// Store is the in-memory prediction history: most recent first, immutable
// entries, emptied only by Clear or process exit.
type Store struct {
	mu      sync.RWMutex
	results []domain.PredictionResult
}

// NewStore creates an empty history.
func NewStore() *Store {
	return &Store{}
}

// Add prepends a result.
func (s *Store) Add(r domain.PredictionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append([]domain.PredictionResult{r}, s.results...)
}

// Results returns a copy of the history, most recent first.
func (s *Store) Results() []domain.PredictionResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PredictionResult, len(s.results))
	copy(out, s.results)
	return out
}

// Len returns the number of stored results.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Clear discards all results.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = nil
}
