package geolocation

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/providers"
)

// Average speeds used to turn a straight-line distance into a duration estimate, km/h
var mockSpeeds = map[providers.RouteMode]float64{
	providers.RouteModeDriving: 40,
	providers.RouteModeBiking:  15,
	providers.RouteModeWalking: 5,
}

// MockGeolocationProvider resolves a fixed set of Rostov-on-Don addresses and
// estimates routes from great-circle distance. It never leaves the process.
type MockGeolocationProvider struct {
	addresses map[string]entities.GeoPoint
}

// NewMockGeolocationProvider creates a new mock geolocation provider
func NewMockGeolocationProvider() providers.GeolocationProvider {
	return &MockGeolocationProvider{
		addresses: map[string]entities.GeoPoint{
			"кремль":              {Latitude: 47.2315, Longitude: 39.7233},
			"парк горького":       {Latitude: 47.2332, Longitude: 39.7267},
			"музейная":            {Latitude: 47.2301, Longitude: 39.7220},
			"большая садовая":     {Latitude: 47.2225, Longitude: 39.7187},
			"театральная площадь": {Latitude: 47.2270, Longitude: 39.7450},
			"ростов-на-дону":      {Latitude: 47.222078, Longitude: 39.720358},
		},
	}
}

// Geocode matches address against the known fragments, longest fragment first
func (m *MockGeolocationProvider) Geocode(_ context.Context, address string) providers.GeocodeResult {
	needle := strings.ToLower(strings.TrimSpace(address))
	if needle == "" {
		return providers.GeocodeResult{Outcome: providers.OutcomeNoResult}
	}

	best := ""
	for fragment := range m.addresses {
		if strings.Contains(needle, fragment) && len(fragment) > len(best) {
			best = fragment
		}
	}
	if best == "" {
		return providers.GeocodeResult{Outcome: providers.OutcomeNoResult}
	}

	return providers.GeocodeResult{Outcome: providers.OutcomeFound, Location: m.addresses[best]}
}

// Directions estimates the route from the haversine distance and a per-mode speed
func (m *MockGeolocationProvider) Directions(_ context.Context, origin, destination entities.GeoPoint, mode providers.RouteMode) providers.DirectionsResult {
	speed, ok := mockSpeeds[mode]
	if !ok {
		speed = mockSpeeds[providers.RouteModeDriving]
	}

	km := origin.HaversineKm(destination)
	minutes := int(math.Ceil(km / speed * 60))

	return providers.DirectionsResult{
		Outcome: providers.OutcomeFound,
		Route: providers.Route{
			DistanceText: formatDistance(km),
			DurationText: fmt.Sprintf("%d мин", minutes),
		},
	}
}

func formatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%d м", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f км", km)
}
