package repositories

import (
	"context"

	"github.com/cityguide/backend/internal/domain/entities"
)

// SubscriptionRepository is the append-only opt-in registry
type SubscriptionRepository interface {
	// Create appends a subscription. Duplicates are allowed.
	Create(ctx context.Context, platformID int64, subscriptionType string) (*entities.Subscription, error)

	// ListByUser returns the user's subscriptions ordered by id
	ListByUser(ctx context.Context, platformID int64) ([]entities.Subscription, error)
}
