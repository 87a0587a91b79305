package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cityguide/backend/internal/adapters/cache"
	"github.com/cityguide/backend/internal/adapters/database"
	"github.com/cityguide/backend/internal/adapters/memory"
	"github.com/cityguide/backend/internal/adapters/providers/geolocation"
	"github.com/cityguide/backend/internal/application/services"
	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/providers"
	"github.com/cityguide/backend/internal/domain/repositories"
	"github.com/cityguide/backend/internal/infrastructure/clients/postgres"
	"github.com/cityguide/backend/internal/infrastructure/clients/redis"
	"github.com/cityguide/backend/pkg/config"
)

// storage bundles the repositories behind the selected engine
type storage struct {
	profiles      repositories.UserProfileRepository
	pois          repositories.PointOfInterestRepository
	events        repositories.EventRepository
	subscriptions repositories.SubscriptionRepository
	close         func()
}

func newStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.Storage.Driver == "memory" {
		profiles := memory.NewProfileStore()
		catalog := memory.NewCatalog()
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return &storage{
			profiles:      profiles,
			pois:          catalog,
			events:        memory.NewEventStore(catalog),
			subscriptions: memory.NewSubscriptionStore(profiles),
			close:         func() {},
		}, nil
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := pgClient.Migrate(ctx); err != nil {
		pgClient.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &storage{
		profiles:      database.NewUserProfileAdapter(pgClient),
		pois:          database.NewCachedPointOfInterestAdapter(database.NewPointOfInterestAdapter(pgClient)),
		events:        database.NewEventAdapter(pgClient),
		subscriptions: database.NewSubscriptionAdapter(pgClient),
		close: func() {
			if err := pgClient.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close PostgreSQL client")
			}
		},
	}, nil
}

// newGeoProvider builds the mapping provider behind a circuit breaker.
// The returned close function releases the Redis connection when one was opened.
func newGeoProvider(ctx context.Context, cfg *config.Config) (providers.GeolocationProvider, func()) {
	closeFn := func() {}

	var cacheProvider providers.CacheProvider
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			// Geocoding works without the cache
			log.Warn().Err(err).Msg("failed to initialize Redis client, geocode cache disabled")
		} else {
			cacheProvider = cache.NewRedisAdapter(redisClient)
			closeFn = func() {
				if err := redisClient.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close Redis client")
				}
			}
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("geocode cache enabled")
		}
	}

	var provider providers.GeolocationProvider
	switch cfg.Geolocation.Provider {
	case "yandex":
		provider = geolocation.NewYandexGeolocationProvider(geolocation.YandexOptions{
			APIKey:     cfg.Geolocation.APIKey,
			GeocodeURL: cfg.Geolocation.GeocodeURL,
			RouterURL:  cfg.Geolocation.RouterURL,
			Language:   cfg.Geolocation.Language,
			Timeout:    cfg.Geolocation.Timeout,
			Cache:      cacheProvider,
		})
	default:
		provider = geolocation.NewMockGeolocationProvider()
	}
	log.Info().Str("provider", cfg.Geolocation.Provider).Msg("mapping provider configured")

	return geolocation.NewBreakerGeolocationProvider(provider, geolocation.BreakerOptions{
		Name:                cfg.Geolocation.Provider,
		ConsecutiveFailures: cfg.Geolocation.BreakerFailures,
		Cooldown:            cfg.Geolocation.BreakerCooldown,
	}), closeFn
}

func guideOptions(cfg *config.GuideConfig) services.GuideOptions {
	loc, err := time.LoadLocation(cfg.EventsTimezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", cfg.EventsTimezone).Msg("unknown events timezone, using UTC")
		loc = time.UTC
	}

	return services.GuideOptions{
		DefaultLimit:     cfg.DefaultLimit,
		DefaultRouteMode: providers.RouteMode(cfg.DefaultRouteMode),
		CityCenter:       entities.GeoPoint{Latitude: cfg.CityCenterLat, Longitude: cfg.CityCenterLon},
		EventsLocation:   loc,
	}
}
