// Package memory implements storage interfaces in process memory
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sirosfoundation/go-edifact/internal/storage"
)

// Store implements storage.InterchangeStore with a map
type Store struct {
	mu           sync.RWMutex
	interchanges map[string]*storage.Interchange
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{interchanges: make(map[string]*storage.Interchange)}
}

// Close is a no-op
func (s *Store) Close(ctx context.Context) error {
	return nil
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) SaveInterchange(ctx context.Context, ic *storage.Interchange) error {
	if ic.ID == "" {
		ic.ID = uuid.NewString()
	}
	if ic.ReceivedAt.IsZero() {
		ic.ReceivedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.interchanges[ic.ID]; exists {
		return fmt.Errorf("interchange %s already exists", ic.ID)
	}
	stored := *ic
	s.interchanges[ic.ID] = &stored
	return nil
}

func (s *Store) GetInterchange(ctx context.Context, id string) (*storage.Interchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ic, ok := s.interchanges[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := *ic
	return &out, nil
}

func (s *Store) FindByControlRef(ctx context.Context, sender, controlRef string) (*storage.Interchange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ic := range s.interchanges {
		if ic.Sender == sender && ic.ControlRef == controlRef {
			out := *ic
			return &out, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) ListInterchanges(ctx context.Context, filter *storage.InterchangeFilter) ([]*storage.Interchange, error) {
	s.mu.RLock()
	var result []*storage.Interchange
	for _, ic := range s.interchanges {
		if filter.Matches(ic) {
			out := *ic
			result = append(result, &out)
		}
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].ReceivedAt.After(result[j].ReceivedAt)
	})

	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(result) {
				return nil, nil
			}
			result = result[filter.Offset:]
		}
		if filter.Limit > 0 && filter.Limit < len(result) {
			result = result[:filter.Limit]
		}
	}
	return result, nil
}
