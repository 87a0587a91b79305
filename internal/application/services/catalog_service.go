package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/repositories"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

// CatalogService handles POI seeding, lookup and events
type CatalogService struct {
	pois   repositories.PointOfInterestRepository
	events repositories.EventRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(pois repositories.PointOfInterestRepository, events repositories.EventRepository) *CatalogService {
	return &CatalogService{
		pois:   pois,
		events: events,
	}
}

// SeedDefaults inserts the built-in catalog; running it again inserts nothing
func (s *CatalogService) SeedDefaults(ctx context.Context) (int, error) {
	return s.Seed(ctx, DefaultPointsOfInterest())
}

// Seed validates and inserts pois, skipping ones already present.
// The caller's slice is left untouched.
func (s *CatalogService) Seed(ctx context.Context, pois []entities.PointOfInterest) (int, error) {
	clean := make([]entities.PointOfInterest, len(pois))
	copy(clean, pois)
	for i := range clean {
		if err := validatePOI(&clean[i]); err != nil {
			return 0, err
		}
	}

	inserted, err := s.pois.Seed(ctx, clean)
	if err != nil {
		return 0, err
	}

	log.Ctx(ctx).Info().Int("inserted", inserted).Int("requested", len(pois)).Msg("catalog seeded")
	return inserted, nil
}

// List returns the whole catalog ordered by id
func (s *CatalogService) List(ctx context.Context) ([]entities.PointOfInterest, error) {
	return s.pois.ListAll(ctx)
}

// FindByName looks a POI up by exact name first, then by substring, both case-insensitive.
// The lowest id wins among several substring matches.
func (s *CatalogService) FindByName(ctx context.Context, name string) (*entities.PointOfInterest, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, apperrors.NewValidationError("name is required")
	}

	pois, err := s.pois.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var partial *entities.PointOfInterest
	for i := range pois {
		candidate := strings.ToLower(pois[i].Name)
		if candidate == needle {
			return &pois[i], nil
		}
		if partial == nil && strings.Contains(candidate, needle) {
			partial = &pois[i]
		}
	}
	if partial != nil {
		return partial, nil
	}

	return nil, apperrors.NewNotFoundError(fmt.Sprintf("no point of interest named %q", name))
}

// AddEvent schedules an event at an existing POI
func (s *CatalogService) AddEvent(ctx context.Context, event *entities.Event) error {
	event.Name = strings.TrimSpace(event.Name)
	if event.Name == "" {
		return apperrors.NewValidationError("event name is required")
	}
	if event.ScheduledAt.IsZero() {
		return apperrors.NewValidationError("event time is required")
	}
	return s.events.Create(ctx, event)
}

// EventsAt lists events hosted by poiID
func (s *CatalogService) EventsAt(ctx context.Context, poiID int64) ([]entities.Event, error) {
	return s.events.ListByPOI(ctx, poiID)
}

// UpcomingEvents lists events at or after from, soonest first
func (s *CatalogService) UpcomingEvents(ctx context.Context, from time.Time, limit int) ([]entities.Event, error) {
	return s.events.ListUpcoming(ctx, from, limit)
}

func validatePOI(poi *entities.PointOfInterest) error {
	poi.Name = strings.TrimSpace(poi.Name)
	poi.Address = strings.TrimSpace(poi.Address)
	if poi.Name == "" || poi.Address == "" {
		return apperrors.NewValidationError("point of interest needs a name and an address")
	}
	if err := poi.Location.Validate(); err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("%s: %v", poi.Name, err))
	}
	if poi.Rating < 0 || poi.Rating > 5 {
		return apperrors.NewValidationError(fmt.Sprintf("%s: rating %v out of range [0, 5]", poi.Name, poi.Rating))
	}
	if poi.ReviewCount < 0 {
		return apperrors.NewValidationError(fmt.Sprintf("%s: negative review count", poi.Name))
	}
	return nil
}
