package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/repositories"
)

// SubscriptionStore implements SubscriptionRepository in memory
type SubscriptionStore struct {
	profiles *ProfileStore

	mu     sync.RWMutex
	subs   []entities.Subscription
	nextID int64
}

var _ repositories.SubscriptionRepository = (*SubscriptionStore)(nil)

// NewSubscriptionStore creates a subscription store whose rows reference profiles
func NewSubscriptionStore(profiles *ProfileStore) *SubscriptionStore {
	return &SubscriptionStore{profiles: profiles, nextID: 1}
}

// Create appends a subscription; duplicates of the same type are kept
func (s *SubscriptionStore) Create(_ context.Context, platformID int64, subscriptionType string) (*entities.Subscription, error) {
	if !s.profiles.exists(platformID) {
		return nil, userNotFound(platformID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub := entities.Subscription{
		ID:         s.nextID,
		PlatformID: platformID,
		Type:       subscriptionType,
		CreatedAt:  time.Now().UTC(),
	}
	s.nextID++
	s.subs = append(s.subs, sub)
	return &sub, nil
}

// ListByUser returns the user's subscriptions in insertion order
func (s *SubscriptionStore) ListByUser(_ context.Context, platformID int64) ([]entities.Subscription, error) {
	if !s.profiles.exists(platformID) {
		return nil, userNotFound(platformID)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entities.Subscription, 0)
	for _, sub := range s.subs {
		if sub.PlatformID == platformID {
			out = append(out, sub)
		}
	}
	return out, nil
}
