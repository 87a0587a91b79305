package repositories

import (
	"context"
	"time"

	"github.com/cityguide/backend/internal/domain/entities"
)

// PointOfInterestRepository is the read-mostly POI catalog
type PointOfInterestRepository interface {
	// ListAll returns every POI ordered by id ascending
	ListAll(ctx context.Context) ([]entities.PointOfInterest, error)

	// GetByID retrieves a POI by id
	GetByID(ctx context.Context, id int64) (*entities.PointOfInterest, error)

	// Seed inserts the given POIs, skipping any whose (name, address) already exists.
	// It returns the number of rows actually inserted.
	Seed(ctx context.Context, pois []entities.PointOfInterest) (int, error)
}

// EventRepository stores events hosted at catalog POIs
type EventRepository interface {
	// Create inserts an event and assigns its id. Unknown POIs yield a not found error.
	Create(ctx context.Context, event *entities.Event) error

	// ListByPOI returns the events at a POI ordered by schedule
	ListByPOI(ctx context.Context, poiID int64) ([]entities.Event, error)

	// ListUpcoming returns events scheduled at or after from, soonest first
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]entities.Event, error)
}
