package repositories

import (
	"context"

	"github.com/cityguide/backend/internal/domain/entities"
)

// UserProfileRepository is the durable per-user store.
// Every mutation is atomic for a single platform id and visible to reads once it returns.
type UserProfileRepository interface {
	// Upsert creates an empty profile for platformID if none exists and returns the stored profile.
	// An existing profile is returned unchanged.
	Upsert(ctx context.Context, platformID int64, displayName string) (*entities.UserProfile, error)

	// GetByPlatformID returns a copy of the stored profile
	GetByPlatformID(ctx context.Context, platformID int64) (*entities.UserProfile, error)

	// SetLocation replaces both coordinates at once
	SetLocation(ctx context.Context, platformID int64, location entities.GeoPoint) error

	// GetLocation returns nil when the user never set a location
	GetLocation(ctx context.Context, platformID int64) (*entities.GeoPoint, error)

	// SetPreference merges a single key into the user's preferences
	SetPreference(ctx context.Context, platformID int64, key string, value any) error

	// GetPreferences returns a copy of the user's preferences, never nil
	GetPreferences(ctx context.Context, platformID int64) (entities.Preferences, error)
}
