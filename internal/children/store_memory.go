package children

import (
	"context"
	"sort"
	"sync"
	"time"

	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	children map[id.ChildID]Child
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{children: make(map[id.ChildID]Child)}
}

func (s *InMemoryStore) Save(_ context.Context, child Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children[child.ID] = child
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, childID id.ChildID) (Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if child, ok := s.children[childID]; ok {
		return child, nil
	}
	return Child{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status Status) ([]Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Child
	for _, c := range s.children {
		if c.Status == status {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) SetStatus(_ context.Context, childID id.ChildID, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	child, ok := s.children[childID]
	if !ok {
		return sentinel.ErrNotFound
	}
	child.Status = status
	child.UpdatedAt = time.Now()
	s.children[childID] = child
	return nil
}
