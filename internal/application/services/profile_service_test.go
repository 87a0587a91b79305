package services

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityguide/backend/internal/adapters/memory"
	"github.com/cityguide/backend/internal/domain/entities"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

func TestProfileService_LocationRoundTrip(t *testing.T) {
	svc := NewProfileService(memory.NewProfileStore())
	ctx := context.Background()
	_, err := svc.EnsureUser(ctx, 1, " alice ")
	require.NoError(t, err)

	points := []entities.GeoPoint{
		{Latitude: 47.2315, Longitude: 39.7233},
		{Latitude: 0, Longitude: 0},
		{Latitude: -90, Longitude: 180},
		{Latitude: 90, Longitude: -180},
	}
	for _, p := range points {
		require.NoError(t, svc.SetLocation(ctx, 1, p))
		got, err := svc.Location(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, p, *got)
	}
}

func TestProfileService_RejectsInvalidCoordinates(t *testing.T) {
	svc := NewProfileService(memory.NewProfileStore())
	ctx := context.Background()
	_, err := svc.EnsureUser(ctx, 1, "")
	require.NoError(t, err)
	require.NoError(t, svc.SetLocation(ctx, 1, entities.GeoPoint{Latitude: 10, Longitude: 10}))

	invalid := []entities.GeoPoint{
		{Latitude: 90.0001, Longitude: 0},
		{Latitude: 0, Longitude: -180.5},
		{Latitude: math.NaN(), Longitude: 0},
		{Latitude: 0, Longitude: math.Inf(1)},
	}
	for _, p := range invalid {
		assert.True(t, apperrors.IsValidation(svc.SetLocation(ctx, 1, p)))
	}

	got, err := svc.Location(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entities.GeoPoint{Latitude: 10, Longitude: 10}, *got)
}

func TestProfileService_UnknownUserIsNotFound(t *testing.T) {
	svc := NewProfileService(memory.NewProfileStore())

	err := svc.SetLocation(context.Background(), 404, entities.GeoPoint{Latitude: 1, Longitude: 1})

	assert.True(t, apperrors.IsNotFound(err))
}

func TestProfileService_SecondUpsertKeepsLocation(t *testing.T) {
	svc := NewProfileService(memory.NewProfileStore())
	ctx := context.Background()
	_, err := svc.EnsureUser(ctx, 1, "alice")
	require.NoError(t, err)
	require.NoError(t, svc.SetLocation(ctx, 1, entities.GeoPoint{Latitude: 47.23, Longitude: 39.72}))

	profile, err := svc.EnsureUser(ctx, 1, "alice")
	require.NoError(t, err)

	require.True(t, profile.HasLocation())
	assert.Equal(t, 47.23, profile.Location.Latitude)
}

func TestProfileService_ConcurrentUpsertAndSetLocation(t *testing.T) {
	store := memory.NewProfileStore()
	svc := NewProfileService(store)
	ctx := context.Background()
	_, err := svc.EnsureUser(ctx, 1, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.EnsureUser(ctx, 1, "")
			assert.NoError(t, err)
		}()
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, svc.SetLocation(ctx, 1, entities.GeoPoint{Latitude: float64(i), Longitude: float64(i)}))
		}(i)
	}
	wg.Wait()

	loc, err := svc.Location(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, loc.Latitude, loc.Longitude, "location pair must never be torn")
}

func TestProfileService_SetPreferenceValidation(t *testing.T) {
	svc := NewProfileService(memory.NewProfileStore())
	ctx := context.Background()
	_, err := svc.EnsureUser(ctx, 1, "")
	require.NoError(t, err)

	tests := []struct {
		name  string
		key   string
		value any
		want  any
		err   bool
	}{
		{name: "empty key", key: "  ", value: "x", err: true},
		{name: "category lowercased", key: entities.PreferenceCategory, value: " Park ", want: "park"},
		{name: "empty category", key: entities.PreferenceCategory, value: "", err: true},
		{name: "route mode", key: entities.PreferenceRouteMode, value: "Walking", want: "walking"},
		{name: "bad route mode", key: entities.PreferenceRouteMode, value: "teleport", err: true},
		{name: "radius", key: entities.PreferenceSearchRadius, value: 0.02, want: 0.02},
		{name: "negative radius", key: entities.PreferenceSearchRadius, value: -1.0, err: true},
		{name: "limit", key: entities.PreferenceResultLimit, value: 3, want: 3.0},
		{name: "fractional limit", key: entities.PreferenceResultLimit, value: 2.5, err: true},
		{name: "largest limit", key: entities.PreferenceResultLimit, value: MaxResultLimit, want: float64(MaxResultLimit)},
		{name: "limit above cap", key: entities.PreferenceResultLimit, value: MaxResultLimit + 1, err: true},
		{name: "huge limit", key: entities.PreferenceResultLimit, value: 1e300, err: true},
		{name: "free-form", key: "language", value: "ru", want: "ru"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SetPreference(ctx, 1, tt.key, tt.value)
			if tt.err {
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)

			prefs, err := svc.Preferences(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, prefs[tt.key])
		})
	}
}
