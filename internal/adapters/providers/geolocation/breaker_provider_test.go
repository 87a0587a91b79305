package geolocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/providers"
)

type mockGeolocationProvider struct {
	mock.Mock
}

func (m *mockGeolocationProvider) Geocode(ctx context.Context, address string) providers.GeocodeResult {
	return m.Called(ctx, address).Get(0).(providers.GeocodeResult)
}

func (m *mockGeolocationProvider) Directions(ctx context.Context, origin, destination entities.GeoPoint, mode providers.RouteMode) providers.DirectionsResult {
	return m.Called(ctx, origin, destination, mode).Get(0).(providers.DirectionsResult)
}

func TestBreakerProvider_OpensAfterUnavailableStreak(t *testing.T) {
	next := new(mockGeolocationProvider)
	next.On("Geocode", mock.Anything, "x").
		Return(providers.GeocodeResult{Outcome: providers.OutcomeUnavailable}).Times(2)
	provider := NewBreakerGeolocationProvider(next, BreakerOptions{ConsecutiveFailures: 2, Cooldown: time.Minute})

	provider.Geocode(context.Background(), "x")
	provider.Geocode(context.Background(), "x")
	rejected := provider.Geocode(context.Background(), "x")

	assert.Equal(t, providers.OutcomeUnavailable, rejected.Outcome)
	assert.Error(t, rejected.Err)
	next.AssertNumberOfCalls(t, "Geocode", 2)
}

func TestBreakerProvider_NoResultAndRateLimitDoNotTrip(t *testing.T) {
	next := new(mockGeolocationProvider)
	next.On("Directions", mock.Anything, mock.Anything, mock.Anything, providers.RouteModeDriving).
		Return(providers.DirectionsResult{Outcome: providers.OutcomeNoResult})
	next.On("Directions", mock.Anything, mock.Anything, mock.Anything, providers.RouteModeWalking).
		Return(providers.DirectionsResult{Outcome: providers.OutcomeRateLimited})
	provider := NewBreakerGeolocationProvider(next, BreakerOptions{ConsecutiveFailures: 1, Cooldown: time.Minute})

	for i := 0; i < 3; i++ {
		assert.Equal(t, providers.OutcomeNoResult,
			provider.Directions(context.Background(), entities.GeoPoint{}, entities.GeoPoint{}, providers.RouteModeDriving).Outcome)
		assert.Equal(t, providers.OutcomeRateLimited,
			provider.Directions(context.Background(), entities.GeoPoint{}, entities.GeoPoint{}, providers.RouteModeWalking).Outcome)
	}
	next.AssertNumberOfCalls(t, "Directions", 6)
}

func TestBreakerProvider_PassesFoundThrough(t *testing.T) {
	next := new(mockGeolocationProvider)
	want := providers.GeocodeResult{Outcome: providers.OutcomeFound, Location: entities.GeoPoint{Latitude: 1, Longitude: 2}}
	next.On("Geocode", mock.Anything, "ok").Return(want)
	provider := NewBreakerGeolocationProvider(next, BreakerOptions{})

	assert.Equal(t, want, provider.Geocode(context.Background(), "ok"))
}
