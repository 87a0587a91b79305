package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/repositories"
	"github.com/cityguide/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

const eventsTable = "events"

var eventColumns = []interface{}{"id", "name", "description", "scheduled_at", "poi_id"}

// EventAdapter implements EventRepository on PostgreSQL
type EventAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewEventAdapter creates a new event adapter
func NewEventAdapter(client *postgres.Client) repositories.EventRepository {
	return &EventAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts an event. A missing POI surfaces as a not found error from the foreign key.
func (a *EventAdapter) Create(ctx context.Context, event *entities.Event) error {
	query, _, err := a.db.Insert(eventsTable).
		Rows(goqu.Record{
			"name":         event.Name,
			"description":  event.Description,
			"scheduled_at": event.ScheduledAt,
			"poi_id":       event.POIID,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build event insert", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query).Scan(&event.ID); err != nil {
		return mapPQError(err, "failed to create event")
	}

	return nil
}

// ListByPOI returns events at poiID, earliest first
func (a *EventAdapter) ListByPOI(ctx context.Context, poiID int64) ([]entities.Event, error) {
	ds := a.db.From(eventsTable).
		Select(eventColumns...).
		Where(goqu.C("poi_id").Eq(poiID)).
		Order(goqu.C("scheduled_at").Asc(), goqu.C("id").Asc())

	return a.list(ctx, ds)
}

// ListUpcoming returns up to limit events scheduled at or after from
func (a *EventAdapter) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]entities.Event, error) {
	ds := a.db.From(eventsTable).
		Select(eventColumns...).
		Where(goqu.C("scheduled_at").Gte(from)).
		Order(goqu.C("scheduled_at").Asc(), goqu.C("id").Asc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	return a.list(ctx, ds)
}

func (a *EventAdapter) list(ctx context.Context, ds *goqu.SelectDataset) ([]entities.Event, error) {
	query, _, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build event query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list events", err)
	}
	defer rows.Close()

	events := make([]entities.Event, 0)
	for rows.Next() {
		var e entities.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.ScheduledAt, &e.POIID); err != nil {
			return nil, apperrors.NewInternalError("failed to scan event", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate events", err)
	}

	return events, nil
}
