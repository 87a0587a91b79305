package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/providers"
	"github.com/cityguide/backend/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Storage: config.StorageConfig{Driver: "memory"},
		Geolocation: config.GeolocationConfig{
			Provider:        "mock",
			Timeout:         time.Second,
			BreakerFailures: 3,
			BreakerCooldown: time.Second,
		},
		Guide: config.GuideConfig{
			DefaultLimit:     3,
			DefaultRouteMode: "walking",
			CityCenterLat:    47.222078,
			CityCenterLon:    39.720358,
			EventsTimezone:   "Europe/Moscow",
		},
	}
}

func TestNewStorage_Memory(t *testing.T) {
	ctx := context.Background()
	store, err := newStorage(ctx, testConfig())
	require.NoError(t, err)
	defer store.close()

	_, err = store.profiles.Upsert(ctx, 1, "alice")
	require.NoError(t, err)

	sub, err := store.subscriptions.Create(ctx, 1, "events")
	require.NoError(t, err)
	assert.Equal(t, "events", sub.Type)

	pois, err := store.pois.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, pois)
}

func TestNewGeoProvider_MockBehindBreaker(t *testing.T) {
	geo, closeGeo := newGeoProvider(context.Background(), testConfig())
	defer closeGeo()

	result := geo.Geocode(context.Background(), "Парк Горького")
	require.Equal(t, providers.OutcomeFound, result.Outcome)
	assert.InDelta(t, 47.2332, result.Location.Latitude, 1e-9)
}

func TestGuideOptions(t *testing.T) {
	cfg := testConfig()
	opts := guideOptions(&cfg.Guide)

	assert.Equal(t, 3, opts.DefaultLimit)
	assert.Equal(t, providers.RouteModeWalking, opts.DefaultRouteMode)
	assert.Equal(t, entities.GeoPoint{Latitude: 47.222078, Longitude: 39.720358}, opts.CityCenter)
	assert.Equal(t, "Europe/Moscow", opts.EventsLocation.String())
}

func TestGuideOptions_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	cfg := testConfig()
	cfg.Guide.EventsTimezone = "Mars/Olympus"

	assert.Equal(t, time.UTC, guideOptions(&cfg.Guide).EventsLocation)
}
