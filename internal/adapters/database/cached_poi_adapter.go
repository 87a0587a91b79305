package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/repositories"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

// CachedPointOfInterestAdapter keeps the whole catalog in memory after the first read.
// The catalog only changes through Seed, which drops the snapshot.
type CachedPointOfInterestAdapter struct {
	adapter repositories.PointOfInterestRepository

	mu     sync.RWMutex
	pois   []entities.PointOfInterest
	loaded bool
}

// NewCachedPointOfInterestAdapter wraps adapter with an in-process catalog snapshot
func NewCachedPointOfInterestAdapter(adapter repositories.PointOfInterestRepository) repositories.PointOfInterestRepository {
	return &CachedPointOfInterestAdapter{adapter: adapter}
}

// ListAll returns a copy of the cached catalog, loading it on first use
func (a *CachedPointOfInterestAdapter) ListAll(ctx context.Context) ([]entities.PointOfInterest, error) {
	a.mu.RLock()
	if a.loaded {
		out := clonePOIs(a.pois)
		a.mu.RUnlock()
		return out, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.loaded {
		pois, err := a.adapter.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		a.pois = pois
		a.loaded = true
		log.Ctx(ctx).Debug().Int("count", len(pois)).Msg("POI catalog loaded")
	}

	return clonePOIs(a.pois), nil
}

// GetByID serves lookups from the snapshot
func (a *CachedPointOfInterestAdapter) GetByID(ctx context.Context, id int64) (*entities.PointOfInterest, error) {
	pois, err := a.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range pois {
		if pois[i].ID == id {
			return &pois[i], nil
		}
	}

	return nil, apperrors.NewNotFoundError(fmt.Sprintf("point of interest %d not found", id))
}

// Seed writes through and invalidates the snapshot
func (a *CachedPointOfInterestAdapter) Seed(ctx context.Context, pois []entities.PointOfInterest) (int, error) {
	inserted, err := a.adapter.Seed(ctx, pois)
	a.Invalidate()
	return inserted, err
}

// Invalidate forces the next read to reload from the underlying repository
func (a *CachedPointOfInterestAdapter) Invalidate() {
	a.mu.Lock()
	a.pois = nil
	a.loaded = false
	a.mu.Unlock()
}

func clonePOIs(pois []entities.PointOfInterest) []entities.PointOfInterest {
	out := make([]entities.PointOfInterest, len(pois))
	copy(out, pois)
	return out
}
