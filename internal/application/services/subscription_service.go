package services

import (
	"context"
	"strings"

	"github.com/cityguide/backend/internal/domain/repositories"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

// SubscriptionService records user opt-ins. Duplicate subscriptions are kept as-is.
type SubscriptionService struct {
	repo repositories.SubscriptionRepository
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(repo repositories.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{repo: repo}
}

// Subscribe appends a subscription of the given type
func (s *SubscriptionService) Subscribe(ctx context.Context, platformID int64, subscriptionType string) error {
	subscriptionType = strings.TrimSpace(subscriptionType)
	if subscriptionType == "" {
		return apperrors.NewValidationError("subscription type is required")
	}

	_, err := s.repo.Create(ctx, platformID, subscriptionType)
	return err
}

// ListSubscriptions returns the user's subscription types in the order they were added
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, platformID int64) ([]string, error) {
	subs, err := s.repo.ListByUser(ctx, platformID)
	if err != nil {
		return nil, err
	}

	types := make([]string, 0, len(subs))
	for _, sub := range subs {
		types = append(types, sub.Type)
	}
	return types, nil
}
