package store

import (
	"context"
	"sort"
	"sync"

	"parley/internal/requests/models"
	id "parley/pkg/domain"
	"parley/pkg/platform/sentinel"
)

// InMemory keeps requests of both directions in one map. Records are cloned
// on the way in and out.
type InMemory struct {
	mu       sync.RWMutex
	requests map[id.RequestID]*models.Request
}

func NewInMemory() *InMemory {
	return &InMemory{requests: make(map[id.RequestID]*models.Request)}
}

func (s *InMemory) Create(_ context.Context, request *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[request.ID]; exists {
		return sentinel.ErrConflict
	}
	s.requests[request.ID] = request.Clone()
	return nil
}

func (s *InMemory) Update(_ context.Context, request *models.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[request.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.requests[request.ID] = request.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, requestID id.RequestID) (*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.requests[requestID]; ok {
		return r.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

// List returns matches ordered by createdAt ascending, truncated to
// query.Limit when set.
func (s *InMemory) List(_ context.Context, query models.Query) ([]*models.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Request
	for _, r := range s.requests {
		if query.Matches(r) {
			out = append(out, r.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}
