package services

import (
	"sort"
	"strings"

	"github.com/cityguide/backend/internal/domain/entities"
)

const (
	// DefaultNearestLimit is used when no positive k is supplied
	DefaultNearestLimit = 5
	// MaxResultLimit caps the result_limit preference
	MaxResultLimit = 100
)

// RankedPOI is a catalog entry with its L1 distance from the query point
type RankedPOI struct {
	POI      entities.PointOfInterest
	Distance float64
}

// ProximityRanker orders catalog entries by Manhattan distance in degrees.
// It is pure: the input slice is never reordered and equal inputs give equal output.
type ProximityRanker struct {
	defaultLimit int
}

// NewProximityRanker creates a ranker; a non-positive defaultLimit falls back to DefaultNearestLimit
func NewProximityRanker(defaultLimit int) *ProximityRanker {
	if defaultLimit <= 0 {
		defaultLimit = DefaultNearestLimit
	}
	return &ProximityRanker{defaultLimit: defaultLimit}
}

// Nearest returns up to k POIs nearest to origin, ties broken by id ascending
func (r *ProximityRanker) Nearest(origin entities.GeoPoint, k int, pois []entities.PointOfInterest) []RankedPOI {
	if k <= 0 {
		k = r.defaultLimit
	}

	ranked := rank(origin, pois, nil)
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// WithinBox returns every POI whose coordinates lie within ±delta degrees of origin on both axes,
// ordered like Nearest
func (r *ProximityRanker) WithinBox(origin entities.GeoPoint, delta float64, pois []entities.PointOfInterest) []RankedPOI {
	return rank(origin, pois, func(p entities.PointOfInterest) bool {
		return p.Location.Latitude >= origin.Latitude-delta &&
			p.Location.Latitude <= origin.Latitude+delta &&
			p.Location.Longitude >= origin.Longitude-delta &&
			p.Location.Longitude <= origin.Longitude+delta
	})
}

// FilterByCategory keeps POIs whose category matches case-insensitively; an empty category keeps all
func FilterByCategory(pois []entities.PointOfInterest, category string) []entities.PointOfInterest {
	if category == "" {
		return pois
	}

	out := make([]entities.PointOfInterest, 0, len(pois))
	for _, p := range pois {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

func rank(origin entities.GeoPoint, pois []entities.PointOfInterest, keep func(entities.PointOfInterest) bool) []RankedPOI {
	ranked := make([]RankedPOI, 0, len(pois))
	for _, p := range pois {
		if keep != nil && !keep(p) {
			continue
		}
		ranked = append(ranked, RankedPOI{POI: p, Distance: origin.ManhattanDistance(p.Location)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Distance != ranked[j].Distance {
			return ranked[i].Distance < ranked[j].Distance
		}
		return ranked[i].POI.ID < ranked[j].POI.ID
	})
	return ranked
}
