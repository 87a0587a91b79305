package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cityguide/backend/internal/adapters/database"
	"github.com/cityguide/backend/internal/application/services"
	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/infrastructure/clients/postgres"
	"github.com/cityguide/backend/internal/infrastructure/observability"
	"github.com/cityguide/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("city-guide-seed", cfg.Log.Env, cfg.Log.Level)

	ctx := context.Background()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to DB")
	}
	defer pgClient.Close()

	if err := pgClient.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				subscriptions,
				events,
				points_of_interest,
				user_profiles
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	catalog := services.NewCatalogService(
		database.NewPointOfInterestAdapter(pgClient),
		database.NewEventAdapter(pgClient),
	)

	// 1. Seed points of interest
	inserted, err := catalog.SeedDefaults(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed points of interest")
	}
	log.Info().Int("inserted", inserted).Msg("seeded points of interest")

	// 2. Seed sample events, only into an empty schedule
	upcoming, err := catalog.UpcomingEvents(ctx, time.Now(), 1)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list events")
	}
	if len(upcoming) > 0 {
		log.Info().Msg("events already scheduled, skipping sample events")
		return
	}

	pois, err := catalog.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list points of interest")
	}

	created := 0
	for _, event := range sampleEvents(pois, time.Now()) {
		if err := catalog.AddEvent(ctx, &event); err != nil {
			log.Error().Err(err).Str("event", event.Name).Msg("failed to create event")
			continue
		}
		created++
	}
	log.Info().Int("created", created).Msg("seeded sample events")
}

// sampleEvents schedules a few events at known POIs over the coming week
func sampleEvents(pois []entities.PointOfInterest, now time.Time) []entities.Event {
	byName := make(map[string]int64, len(pois))
	for _, p := range pois {
		byName[p.Name] = p.ID
	}

	day := now.Truncate(24 * time.Hour)
	plan := []struct {
		poi, name, description string
		at                     time.Duration
	}{
		{"Ростовский Кремль", "Экскурсия по Кремлю", "Обзорная экскурсия с гидом", 24*time.Hour + 11*time.Hour},
		{"Парк Горького", "Концерт духового оркестра", "Летняя эстрада парка", 2*24*time.Hour + 18*time.Hour},
		{"Музей Современного Искусства", "Выставка донских художников", "Открытие новой экспозиции", 3*24*time.Hour + 15*time.Hour},
	}

	events := make([]entities.Event, 0, len(plan))
	for _, p := range plan {
		id, ok := byName[p.poi]
		if !ok {
			continue
		}
		events = append(events, entities.Event{
			Name:        p.name,
			Description: p.description,
			ScheduledAt: day.Add(p.at),
			POIID:       id,
		})
	}
	return events
}
