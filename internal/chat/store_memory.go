package chat

import (
	"context"
	"sort"
	"sync"
	"time"

	id "amparo/pkg/domain"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	messages []Message
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *InMemoryStore) ListBySponsorship(_ context.Context, sid id.SponsorshipID, order Order) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Message
	for _, m := range s.messages {
		if m.SponsorshipID == sid {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if order == OrderDesc {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) MarkRead(_ context.Context, sid id.SponsorshipID, senderRole id.Role, readAt time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flipped := 0
	for i := range s.messages {
		m := &s.messages[i]
		if m.SponsorshipID == sid && m.SenderRole == senderRole && !m.Read {
			t := readAt
			m.Read = true
			m.ReadAt = &t
			flipped++
		}
	}
	return flipped, nil
}

func (s *InMemoryStore) CountUnread(_ context.Context, sid *id.SponsorshipID, senderRole id.Role) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, m := range s.messages {
		if m.Read || m.SenderRole != senderRole {
			continue
		}
		if sid != nil && m.SponsorshipID != *sid {
			continue
		}
		count++
	}
	return count, nil
}
