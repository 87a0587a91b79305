package geolocation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/providers"
)

var errProviderUnavailable = errors.New("mapping provider unavailable")

// BreakerOptions configures the circuit breaker around a provider
type BreakerOptions struct {
	Name string
	// ConsecutiveFailures trips the breaker after this many unavailable outcomes in a row
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open before letting a trial request through
	Cooldown time.Duration
}

// BreakerGeolocationProvider short-circuits calls while the wrapped provider keeps failing.
// Only OutcomeUnavailable counts as a failure; rate limits and empty results do not trip it.
type BreakerGeolocationProvider struct {
	next    providers.GeolocationProvider
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerGeolocationProvider wraps next with a circuit breaker
func NewBreakerGeolocationProvider(next providers.GeolocationProvider, opts BreakerOptions) providers.GeolocationProvider {
	if opts.Name == "" {
		opts.Name = "geolocation"
	}
	if opts.ConsecutiveFailures == 0 {
		opts.ConsecutiveFailures = 5
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = 30 * time.Second
	}

	threshold := opts.ConsecutiveFailures
	settings := gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     opts.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("mapping provider circuit breaker changed state")
		},
	}

	return &BreakerGeolocationProvider{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Geocode delegates to the wrapped provider unless the breaker is open
func (b *BreakerGeolocationProvider) Geocode(ctx context.Context, address string) providers.GeocodeResult {
	var result providers.GeocodeResult
	_, err := b.breaker.Execute(func() (interface{}, error) {
		result = b.next.Geocode(ctx, address)
		if result.Outcome == providers.OutcomeUnavailable {
			return nil, errProviderUnavailable
		}
		return nil, nil
	})
	if isBreakerRejection(err) {
		return providers.GeocodeResult{Outcome: providers.OutcomeUnavailable, Err: err}
	}
	return result
}

// Directions delegates to the wrapped provider unless the breaker is open
func (b *BreakerGeolocationProvider) Directions(ctx context.Context, origin, destination entities.GeoPoint, mode providers.RouteMode) providers.DirectionsResult {
	var result providers.DirectionsResult
	_, err := b.breaker.Execute(func() (interface{}, error) {
		result = b.next.Directions(ctx, origin, destination, mode)
		if result.Outcome == providers.OutcomeUnavailable {
			return nil, errProviderUnavailable
		}
		return nil, nil
	})
	if isBreakerRejection(err) {
		return providers.DirectionsResult{Outcome: providers.OutcomeUnavailable, Err: err}
	}
	return result
}

func isBreakerRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
