package database

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/repositories"
	"github.com/cityguide/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

const (
	insertSubscriptionSQL = `
		INSERT INTO subscriptions (platform_id, subscription_type)
		VALUES ($1, $2)
		RETURNING id, platform_id, subscription_type, created_at`

	userExistsSQL = `SELECT EXISTS(SELECT 1 FROM user_profiles WHERE platform_id = $1)`

	listSubscriptionsSQL = `
		SELECT id, platform_id, subscription_type, created_at
		FROM subscriptions
		WHERE platform_id = $1
		ORDER BY id`
)

// SubscriptionAdapter implements SubscriptionRepository with sqlx struct scanning
type SubscriptionAdapter struct {
	db *sqlx.DB
}

// NewSubscriptionAdapter creates a new subscription adapter
func NewSubscriptionAdapter(client *postgres.Client) repositories.SubscriptionRepository {
	return &SubscriptionAdapter{
		db: sqlx.NewDb(client.DB(), "postgres"),
	}
}

// Create appends a subscription row. Unknown users surface as a not found error.
func (a *SubscriptionAdapter) Create(ctx context.Context, platformID int64, subscriptionType string) (*entities.Subscription, error) {
	var sub entities.Subscription
	if err := a.db.QueryRowxContext(ctx, insertSubscriptionSQL, platformID, subscriptionType).StructScan(&sub); err != nil {
		return nil, mapPQError(err, "failed to create subscription")
	}
	return &sub, nil
}

// ListByUser returns every subscription of platformID in insertion order.
// A user without a profile is a not found error, not an empty list.
func (a *SubscriptionAdapter) ListByUser(ctx context.Context, platformID int64) ([]entities.Subscription, error) {
	var exists bool
	if err := a.db.GetContext(ctx, &exists, userExistsSQL, platformID); err != nil {
		return nil, apperrors.NewInternalError("failed to check user profile", err)
	}
	if !exists {
		return nil, userNotFound(platformID)
	}

	subs := make([]entities.Subscription, 0)
	if err := a.db.SelectContext(ctx, &subs, listSubscriptionsSQL, platformID); err != nil {
		return nil, apperrors.NewInternalError("failed to list subscriptions", err)
	}
	return subs, nil
}
