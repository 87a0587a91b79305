package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/repositories"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

type poiKey struct {
	name    string
	address string
}

// Catalog implements PointOfInterestRepository in memory. Ids are assigned sequentially from 1.
type Catalog struct {
	mu     sync.RWMutex
	pois   []entities.PointOfInterest
	keys   map[poiKey]struct{}
	nextID int64
}

var _ repositories.PointOfInterestRepository = (*Catalog)(nil)

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		keys:   make(map[poiKey]struct{}),
		nextID: 1,
	}
}

// ListAll returns a copy of the catalog ordered by id
func (c *Catalog) ListAll(_ context.Context) ([]entities.PointOfInterest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]entities.PointOfInterest, len(c.pois))
	copy(out, c.pois)
	return out, nil
}

// GetByID retrieves a POI by id
func (c *Catalog) GetByID(_ context.Context, id int64) (*entities.PointOfInterest, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := sort.Search(len(c.pois), func(i int) bool { return c.pois[i].ID >= id })
	if i < len(c.pois) && c.pois[i].ID == id {
		poi := c.pois[i]
		return &poi, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("point of interest %d not found", id))
}

// Seed appends POIs whose (name, address) is new and reports how many were added
func (c *Catalog) Seed(_ context.Context, pois []entities.PointOfInterest) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	inserted := 0
	for _, poi := range pois {
		key := poiKey{name: poi.Name, address: poi.Address}
		if _, dup := c.keys[key]; dup {
			continue
		}
		poi.ID = c.nextID
		c.nextID++
		c.keys[key] = struct{}{}
		c.pois = append(c.pois, poi)
		inserted++
	}
	return inserted, nil
}

// EventStore implements EventRepository in memory, checking POI references against a catalog
type EventStore struct {
	catalog repositories.PointOfInterestRepository

	mu     sync.RWMutex
	events []entities.Event
	nextID int64
}

var _ repositories.EventRepository = (*EventStore)(nil)

// NewEventStore creates an event store bound to catalog
func NewEventStore(catalog repositories.PointOfInterestRepository) *EventStore {
	return &EventStore{catalog: catalog, nextID: 1}
}

// Create inserts an event after confirming its POI exists
func (s *EventStore) Create(ctx context.Context, event *entities.Event) error {
	if _, err := s.catalog.GetByID(ctx, event.POIID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event.ID = s.nextID
	s.nextID++
	s.events = append(s.events, *event)
	return nil
}

// ListByPOI returns events at poiID, earliest first
func (s *EventStore) ListByPOI(_ context.Context, poiID int64) ([]entities.Event, error) {
	return s.filter(func(e entities.Event) bool { return e.POIID == poiID }, 0), nil
}

// ListUpcoming returns up to limit events at or after from
func (s *EventStore) ListUpcoming(_ context.Context, from time.Time, limit int) ([]entities.Event, error) {
	return s.filter(func(e entities.Event) bool { return !e.ScheduledAt.Before(from) }, limit), nil
}

func (s *EventStore) filter(keep func(entities.Event) bool, limit int) []entities.Event {
	s.mu.RLock()
	out := make([]entities.Event, 0)
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
