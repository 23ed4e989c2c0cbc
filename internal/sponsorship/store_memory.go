package sponsorship

import (
	"context"
	"sort"
	"sync"

	id "amparo/pkg/domain"
	"amparo/pkg/platform/sentinel"
)

// InMemoryStore mirrors the postgres store's contract, including conflict
// rejection on double-active writes, so service tests exercise the same paths.
type InMemoryStore struct {
	mu           sync.RWMutex
	sponsorships map[id.SponsorshipID]Sponsorship
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sponsorships: make(map[id.SponsorshipID]Sponsorship)}
}

func (s *InMemoryStore) Create(_ context.Context, sp Sponsorship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sponsorships[sp.ID]; ok {
		return sentinel.ErrConflict
	}
	if sp.IsActive() && s.hasOtherActive(sp) {
		return sentinel.ErrConflict
	}
	s.sponsorships[sp.ID] = sp
	return nil
}

func (s *InMemoryStore) Update(_ context.Context, sp Sponsorship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sponsorships[sp.ID]; !ok {
		return sentinel.ErrNotFound
	}
	if sp.IsActive() && s.hasOtherActive(sp) {
		return sentinel.ErrConflict
	}
	s.sponsorships[sp.ID] = sp
	return nil
}

// hasOtherActive reports whether a different ACTIVE row already holds the
// sponsor or the child. Callers hold the write lock.
func (s *InMemoryStore) hasOtherActive(sp Sponsorship) bool {
	for _, other := range s.sponsorships {
		if other.ID == sp.ID || !other.IsActive() {
			continue
		}
		if other.SponsorID == sp.SponsorID || other.ChildID == sp.ChildID {
			return true
		}
	}
	return false
}

func (s *InMemoryStore) FindByID(_ context.Context, sid id.SponsorshipID) (Sponsorship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sp, ok := s.sponsorships[sid]; ok {
		return sp, nil
	}
	return Sponsorship{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ActiveBySponsor(_ context.Context, sponsorID id.UserID) (Sponsorship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sp := range s.sponsorships {
		if sp.IsActive() && sp.SponsorID == sponsorID {
			return sp, nil
		}
	}
	return Sponsorship{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ActiveByChild(_ context.Context, childID id.ChildID) (Sponsorship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sp := range s.sponsorships {
		if sp.IsActive() && sp.ChildID == childID {
			return sp, nil
		}
	}
	return Sponsorship{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ListBySponsor(_ context.Context, sponsorID id.UserID) ([]Sponsorship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Sponsorship
	for _, sp := range s.sponsorships {
		if sp.SponsorID == sponsorID {
			out = append(out, sp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}
