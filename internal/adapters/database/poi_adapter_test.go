package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cityguide/backend/internal/domain/entities"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

func poiRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "address", "latitude", "longitude", "description", "category", "rating", "review_count", "website",
	})
}

func TestPointOfInterestAdapter_ListAllOrdersByID(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPointOfInterestAdapter(client)

	mock.ExpectQuery(`SELECT .* FROM "points_of_interest" ORDER BY "id" ASC`).
		WillReturnRows(poiRows().
			AddRow(int64(1), "Ростовский Кремль", "Кремль, Ростов-на-Дону", 47.2315, 39.7233, "Исторический памятник", "historical", 4.9, 120, nil).
			AddRow(int64(2), "Парк Горького", "Центральный парк, Ростов-на-Дону", 47.2332, 39.7267, "Зеленая зона для отдыха", "park", 4.5, 200, "https://example.org"))

	pois, err := adapter.ListAll(context.Background())

	require.NoError(t, err)
	require.Len(t, pois, 2)
	assert.Equal(t, int64(1), pois[0].ID)
	assert.Equal(t, entities.GeoPoint{Latitude: 47.2315, Longitude: 39.7233}, pois[0].Location)
	assert.Empty(t, pois[0].Website)
	assert.Equal(t, "https://example.org", pois[1].Website)
}

func TestPointOfInterestAdapter_ListAllEmpty(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPointOfInterestAdapter(client)

	mock.ExpectQuery(`SELECT .* FROM "points_of_interest"`).WillReturnRows(poiRows())

	pois, err := adapter.ListAll(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, pois)
	assert.Empty(t, pois)
}

func TestPointOfInterestAdapter_GetByIDNotFound(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPointOfInterestAdapter(client)

	mock.ExpectQuery(`SELECT .* FROM "points_of_interest" WHERE \("id" = 99\)`).WillReturnRows(poiRows())

	_, err := adapter.GetByID(context.Background(), 99)

	assert.True(t, apperrors.IsNotFound(err))
}

func TestPointOfInterestAdapter_SeedReportsInsertedRows(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPointOfInterestAdapter(client)

	mock.ExpectExec(`INSERT INTO "points_of_interest" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := adapter.Seed(context.Background(), []entities.PointOfInterest{
		{Name: "A", Address: "a", Category: "park"},
		{Name: "B", Address: "b", Category: "art"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPointOfInterestAdapter_SeedNothing(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewPointOfInterestAdapter(client)

	inserted, err := adapter.Seed(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventAdapter_CreateAssignsID(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewEventAdapter(client)

	mock.ExpectQuery(`INSERT INTO "events" .* RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	event := &entities.Event{Name: "Concert", POIID: 2, ScheduledAt: time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)}
	err := adapter.Create(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, int64(11), event.ID)
}

func TestEventAdapter_CreateUnknownPOI(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewEventAdapter(client)

	mock.ExpectQuery(`INSERT INTO "events"`).
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})

	err := adapter.Create(context.Background(), &entities.Event{Name: "Ghost", POIID: 404})

	assert.True(t, apperrors.IsNotFound(err))
}

func TestEventAdapter_ListUpcomingAppliesLimit(t *testing.T) {
	client, mock := setupMockClient(t)
	adapter := NewEventAdapter(client)
	at := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM "events" WHERE \("scheduled_at" >= .*\) ORDER BY "scheduled_at" ASC, "id" ASC LIMIT 3`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "scheduled_at", "poi_id"}).
			AddRow(int64(1), "Concert", "", at, int64(2)))

	events, err := adapter.ListUpcoming(context.Background(), at.Add(-time.Hour), 3)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(2), events[0].POIID)
}
