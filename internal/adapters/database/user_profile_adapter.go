package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/repositories"
	"github.com/cityguide/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

const userProfilesTable = "user_profiles"

var userProfileColumns = []interface{}{
	"platform_id", "display_name", "latitude", "longitude", "preferences", "created_at", "updated_at",
}

// UserProfileAdapter implements UserProfileRepository on PostgreSQL.
// Each mutation is a single-row statement inside its own transaction.
type UserProfileAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewUserProfileAdapter creates a new user profile adapter
func NewUserProfileAdapter(client *postgres.Client) repositories.UserProfileRepository {
	return &UserProfileAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Upsert inserts an empty profile unless one already exists, then reads it back in the same transaction
func (a *UserProfileAdapter) Upsert(ctx context.Context, platformID int64, displayName string) (*entities.UserProfile, error) {
	insert, _, err := a.db.Insert(userProfilesTable).
		Rows(goqu.Record{
			"platform_id":  platformID,
			"display_name": displayName,
		}).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build user profile insert", err)
	}

	var profile *entities.UserProfile
	err = withTx(ctx, a.client, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insert); err != nil {
			return mapPQError(err, "failed to upsert user profile")
		}

		p, err := a.selectProfile(ctx, tx, platformID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return profile, nil
}

// GetByPlatformID retrieves a profile by platform id
func (a *UserProfileAdapter) GetByPlatformID(ctx context.Context, platformID int64) (*entities.UserProfile, error) {
	return a.selectProfile(ctx, a.client.DB(), platformID)
}

// SetLocation atomically replaces both coordinates
func (a *UserProfileAdapter) SetLocation(ctx context.Context, platformID int64, location entities.GeoPoint) error {
	query, _, err := a.db.Update(userProfilesTable).
		Set(goqu.Record{
			"latitude":   location.Latitude,
			"longitude":  location.Longitude,
			"updated_at": goqu.L("NOW()"),
		}).
		Where(goqu.C("platform_id").Eq(platformID)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build location update", err)
	}

	return a.updateOne(ctx, platformID, query, "failed to set location")
}

// GetLocation returns nil when the location was never set
func (a *UserProfileAdapter) GetLocation(ctx context.Context, platformID int64) (*entities.GeoPoint, error) {
	query, _, err := a.db.From(userProfilesTable).
		Select("latitude", "longitude").
		Where(goqu.C("platform_id").Eq(platformID)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build location query", err)
	}

	var lat, lon sql.NullFloat64
	err = a.client.DB().QueryRowContext(ctx, query).Scan(&lat, &lon)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, userNotFound(platformID)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get location", err)
	}

	return locationFromColumns(lat, lon), nil
}

// SetPreference merges {key: value} into the JSONB preferences in a single statement
func (a *UserProfileAdapter) SetPreference(ctx context.Context, platformID int64, key string, value any) error {
	patch, err := json.Marshal(map[string]any{key: value})
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("preference %q is not JSON encodable: %v", key, err))
	}

	query, _, err := a.db.Update(userProfilesTable).
		Set(goqu.Record{
			"preferences": goqu.L("preferences || ?::jsonb", string(patch)),
			"updated_at":  goqu.L("NOW()"),
		}).
		Where(goqu.C("platform_id").Eq(platformID)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build preference update", err)
	}

	return a.updateOne(ctx, platformID, query, "failed to set preference")
}

// GetPreferences returns the decoded preferences map
func (a *UserProfileAdapter) GetPreferences(ctx context.Context, platformID int64) (entities.Preferences, error) {
	query, _, err := a.db.From(userProfilesTable).
		Select("preferences").
		Where(goqu.C("platform_id").Eq(platformID)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build preferences query", err)
	}

	var raw []byte
	err = a.client.DB().QueryRowContext(ctx, query).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, userNotFound(platformID)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get preferences", err)
	}

	return decodePreferences(raw)
}

func (a *UserProfileAdapter) updateOne(ctx context.Context, platformID int64, query, message string) error {
	return withTx(ctx, a.client, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query)
		if err != nil {
			return mapPQError(err, message)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return apperrors.NewInternalError("failed to get rows affected", err)
		}
		if rowsAffected == 0 {
			return userNotFound(platformID)
		}
		return nil
	})
}

func (a *UserProfileAdapter) selectProfile(ctx context.Context, q rowQueryer, platformID int64) (*entities.UserProfile, error) {
	query, _, err := a.db.From(userProfilesTable).
		Select(userProfileColumns...).
		Where(goqu.C("platform_id").Eq(platformID)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build user profile query", err)
	}

	profile := &entities.UserProfile{}
	var lat, lon sql.NullFloat64
	var prefs []byte

	err = q.QueryRowContext(ctx, query).Scan(
		&profile.PlatformID,
		&profile.DisplayName,
		&lat,
		&lon,
		&prefs,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, userNotFound(platformID)
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get user profile", err)
	}

	profile.Location = locationFromColumns(lat, lon)
	profile.Preferences, err = decodePreferences(prefs)
	if err != nil {
		return nil, err
	}

	return profile, nil
}

func locationFromColumns(lat, lon sql.NullFloat64) *entities.GeoPoint {
	if !lat.Valid || !lon.Valid {
		return nil
	}
	return &entities.GeoPoint{Latitude: lat.Float64, Longitude: lon.Float64}
}

func decodePreferences(raw []byte) (entities.Preferences, error) {
	prefs := entities.Preferences{}
	if len(raw) == 0 {
		return prefs, nil
	}
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return nil, apperrors.NewInternalError("failed to decode preferences", err)
	}
	return prefs, nil
}

func userNotFound(platformID int64) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("user profile %d not found", platformID))
}
