package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/providers"
	"github.com/cityguide/backend/internal/domain/repositories"
	"github.com/cityguide/backend/internal/infrastructure/observability"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

// ProfileService validates input before it reaches the profile store
type ProfileService struct {
	repo repositories.UserProfileRepository
}

// NewProfileService creates a new profile service
func NewProfileService(repo repositories.UserProfileRepository) *ProfileService {
	return &ProfileService{repo: repo}
}

// EnsureUser creates the profile on first contact and returns the stored one afterwards
func (s *ProfileService) EnsureUser(ctx context.Context, platformID int64, displayName string) (*entities.UserProfile, error) {
	return s.repo.Upsert(ctx, platformID, strings.TrimSpace(displayName))
}

// Profile returns the stored profile
func (s *ProfileService) Profile(ctx context.Context, platformID int64) (*entities.UserProfile, error) {
	return s.repo.GetByPlatformID(ctx, platformID)
}

// SetLocation rejects out-of-range coordinates before writing
func (s *ProfileService) SetLocation(ctx context.Context, platformID int64, location entities.GeoPoint) error {
	if err := location.Validate(); err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Int64("platform_id", platformID).Msg("rejected location")
		return apperrors.NewValidationError(err.Error())
	}
	return s.repo.SetLocation(ctx, platformID, location)
}

// Location returns nil when the user never shared a location
func (s *ProfileService) Location(ctx context.Context, platformID int64) (*entities.GeoPoint, error) {
	return s.repo.GetLocation(ctx, platformID)
}

// SetPreference validates well-known keys and stores the value.
// Unknown keys are accepted as free-form values.
func (s *ProfileService) SetPreference(ctx context.Context, platformID int64, key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperrors.NewValidationError("preference key is required")
	}

	normalized, err := normalizePreference(key, value)
	if err != nil {
		observability.LoggerFromContext(ctx).Debug().Err(err).Str("key", key).Msg("rejected preference")
		return err
	}

	return s.repo.SetPreference(ctx, platformID, key, normalized)
}

// Preferences returns the user's preferences
func (s *ProfileService) Preferences(ctx context.Context, platformID int64) (entities.Preferences, error) {
	return s.repo.GetPreferences(ctx, platformID)
}

func normalizePreference(key string, value any) (any, error) {
	switch key {
	case entities.PreferenceCategory:
		str, ok := value.(string)
		if !ok || strings.TrimSpace(str) == "" {
			return nil, apperrors.NewValidationError("category must be a non-empty string")
		}
		return strings.ToLower(strings.TrimSpace(str)), nil

	case entities.PreferenceRouteMode:
		str, _ := value.(string)
		mode, ok := providers.ParseRouteMode(str)
		if !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported route mode %v", value))
		}
		return string(mode), nil

	case entities.PreferenceSearchRadius:
		radius, ok := entities.Preferences{key: value}.Float(key)
		if !ok || math.IsNaN(radius) || radius <= 0 || radius > 1 {
			return nil, apperrors.NewValidationError("search radius must be a number of degrees in (0, 1]")
		}
		return radius, nil

	case entities.PreferenceResultLimit:
		limit, ok := entities.Preferences{key: value}.Float(key)
		if !ok || limit < 1 || limit > MaxResultLimit || limit != math.Trunc(limit) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("result limit must be an integer in [1, %d]", MaxResultLimit))
		}
		return int(limit), nil
	}

	return value, nil
}
