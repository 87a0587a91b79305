package providers

import (
	"context"
	"strings"

	"github.com/cityguide/backend/internal/domain/entities"
)

// GeolocationProvider wraps a remote mapping service.
// Implementations never return transport errors or panic: every failure is folded into the
// Outcome of the result, with the cause kept in Err for logging.
type GeolocationProvider interface {
	// Geocode resolves free-form address text to the first candidate's coordinates
	Geocode(ctx context.Context, address string) GeocodeResult

	// Directions asks for a route between two points
	Directions(ctx context.Context, origin, destination entities.GeoPoint, mode RouteMode) DirectionsResult
}

// Outcome classifies the result of a provider call
type Outcome string

const (
	// OutcomeFound means the provider returned a usable result
	OutcomeFound Outcome = "found"

	// OutcomeNoResult means the call succeeded but there was nothing to return
	OutcomeNoResult Outcome = "no_result"

	// OutcomeRateLimited means the provider rejected the call as part of a burst
	OutcomeRateLimited Outcome = "rate_limited"

	// OutcomeUnavailable covers network failures, timeouts and unexpected responses
	OutcomeUnavailable Outcome = "unavailable"
)

// Retryable reports whether a caller may reasonably try again later.
func (o Outcome) Retryable() bool {
	return o == OutcomeRateLimited || o == OutcomeUnavailable
}

// RouteMode is the travel mode requested from the router
type RouteMode string

const (
	RouteModeDriving RouteMode = "driving"
	RouteModeWalking RouteMode = "walking"
	RouteModeBiking  RouteMode = "biking"
)

// ParseRouteMode maps user input onto a supported mode.
func ParseRouteMode(value string) (RouteMode, bool) {
	switch RouteMode(strings.ToLower(strings.TrimSpace(value))) {
	case RouteModeDriving:
		return RouteModeDriving, true
	case RouteModeWalking:
		return RouteModeWalking, true
	case RouteModeBiking:
		return RouteModeBiking, true
	default:
		return "", false
	}
}

// GeocodeResult is the outcome of a geocode call
type GeocodeResult struct {
	Outcome  Outcome
	Location entities.GeoPoint
	Err      error
}

// Found reports whether Location is meaningful
func (r GeocodeResult) Found() bool {
	return r.Outcome == OutcomeFound
}

// Route is the human-readable summary of a routing result
type Route struct {
	DistanceText string `json:"distance"`
	DurationText string `json:"duration"`
}

// DirectionsResult is the outcome of a directions call
type DirectionsResult struct {
	Outcome Outcome
	Route   Route
	Err     error
}

// Found reports whether Route is meaningful
func (r DirectionsResult) Found() bool {
	return r.Outcome == OutcomeFound
}
