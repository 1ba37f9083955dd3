package store

import (
	"context"
	"sort"
	"sync"

	"parley/internal/attributes/models"
	id "parley/pkg/domain"
	"parley/pkg/platform/sentinel"
)

// InMemory keeps attributes in a map guarded by a RWMutex. Records are cloned
// on the way in and out so callers never share memory with the store.
type InMemory struct {
	mu         sync.RWMutex
	attributes map[id.AttributeID]*models.LocalAttribute
}

func NewInMemory() *InMemory {
	return &InMemory{attributes: make(map[id.AttributeID]*models.LocalAttribute)}
}

func (s *InMemory) Create(_ context.Context, attr *models.LocalAttribute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.attributes[attr.ID]; exists {
		return sentinel.ErrConflict
	}
	s.attributes[attr.ID] = attr.Clone()
	return nil
}

func (s *InMemory) Update(_ context.Context, attr *models.LocalAttribute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.attributes[attr.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.attributes[attr.ID] = attr.Clone()
	return nil
}

func (s *InMemory) FindByID(_ context.Context, attributeID id.AttributeID) (*models.LocalAttribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if attr, ok := s.attributes[attributeID]; ok {
		return attr.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

// List returns matches ordered by createdAt ascending.
func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.LocalAttribute, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.LocalAttribute
	for _, attr := range s.attributes {
		if filter.Matches(attr) {
			out = append(out, attr.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
