package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityguide/backend/internal/adapters/memory"
	"github.com/cityguide/backend/internal/domain/entities"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

func newCatalogService() *CatalogService {
	catalog := memory.NewCatalog()
	return NewCatalogService(catalog, memory.NewEventStore(catalog))
}

func TestCatalogService_SeedDefaultsIsIdempotent(t *testing.T) {
	svc := newCatalogService()
	ctx := context.Background()

	inserted, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	inserted, err = svc.SeedDefaults(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	pois, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, pois, 3)
	assert.Equal(t, "Ростовский Кремль", pois[0].Name)
}

func TestCatalogService_SeedRejectsInvalidPOI(t *testing.T) {
	svc := newCatalogService()

	tests := []entities.PointOfInterest{
		{Name: "", Address: "a"},
		{Name: "n", Address: "a", Location: entities.GeoPoint{Latitude: 100}},
		{Name: "n", Address: "a", Rating: 5.1},
		{Name: "n", Address: "a", ReviewCount: -1},
	}
	for _, p := range tests {
		_, err := svc.Seed(context.Background(), []entities.PointOfInterest{p})
		assert.True(t, apperrors.IsValidation(err))
	}
}

func TestCatalogService_SeedLeavesInputUntouched(t *testing.T) {
	svc := newCatalogService()
	ctx := context.Background()
	input := []entities.PointOfInterest{{
		Name:     "  Собор  ",
		Address:  " ул. Станиславского, 58 ",
		Location: entities.GeoPoint{Latitude: 47.2183, Longitude: 39.7107},
	}}

	inserted, err := svc.Seed(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	assert.Equal(t, "  Собор  ", input[0].Name)
	assert.Equal(t, " ул. Станиславского, 58 ", input[0].Address)

	pois, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, pois, 1)
	assert.Equal(t, "Собор", pois[0].Name)
	assert.Equal(t, "ул. Станиславского, 58", pois[0].Address)
}

func TestCatalogService_FindByName(t *testing.T) {
	svc := newCatalogService()
	ctx := context.Background()
	_, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)

	exact, err := svc.FindByName(ctx, "парк горького")
	require.NoError(t, err)
	assert.Equal(t, "Парк Горького", exact.Name)

	partial, err := svc.FindByName(ctx, "кремль")
	require.NoError(t, err)
	assert.Equal(t, "Ростовский Кремль", partial.Name)

	_, err = svc.FindByName(ctx, "Эрмитаж")
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.FindByName(ctx, " ")
	assert.True(t, apperrors.IsValidation(err))
}

func TestCatalogService_Events(t *testing.T) {
	svc := newCatalogService()
	ctx := context.Background()
	_, err := svc.SeedDefaults(ctx)
	require.NoError(t, err)
	at := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)

	assert.True(t, apperrors.IsValidation(svc.AddEvent(ctx, &entities.Event{Name: " ", POIID: 1, ScheduledAt: at})))
	assert.True(t, apperrors.IsValidation(svc.AddEvent(ctx, &entities.Event{Name: "x", POIID: 1})))
	assert.True(t, apperrors.IsNotFound(svc.AddEvent(ctx, &entities.Event{Name: "x", POIID: 99, ScheduledAt: at})))

	event := &entities.Event{Name: "Концерт", POIID: 2, ScheduledAt: at}
	require.NoError(t, svc.AddEvent(ctx, event))
	assert.NotZero(t, event.ID)

	atPark, err := svc.EventsAt(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, atPark, 1)

	upcoming, err := svc.UpcomingEvents(ctx, at.Add(time.Minute), 5)
	require.NoError(t, err)
	assert.Empty(t, upcoming)
}

func TestSubscriptionService(t *testing.T) {
	profiles := memory.NewProfileStore()
	svc := NewSubscriptionService(memory.NewSubscriptionStore(profiles))
	ctx := context.Background()
	_, err := profiles.Upsert(ctx, 1, "")
	require.NoError(t, err)

	assert.True(t, apperrors.IsValidation(svc.Subscribe(ctx, 1, "  ")))
	assert.True(t, apperrors.IsNotFound(svc.Subscribe(ctx, 2, "events")))

	require.NoError(t, svc.Subscribe(ctx, 1, "events"))
	require.NoError(t, svc.Subscribe(ctx, 1, "events"))
	require.NoError(t, svc.Subscribe(ctx, 1, " news "))

	types, err := svc.ListSubscriptions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"events", "events", "news"}, types)
}
