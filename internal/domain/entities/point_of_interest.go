package entities

import "time"

// PointOfInterest is a seeded catalog entry.
type PointOfInterest struct {
	ID          int64    `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Address     string   `json:"address" db:"address"`
	Location    GeoPoint `json:"location" db:"-"`
	Description string   `json:"description" db:"description"`
	Category    string   `json:"category" db:"category"`
	Rating      float64  `json:"rating" db:"rating"`
	ReviewCount int      `json:"review_count" db:"review_count"`
	Website     string   `json:"website,omitempty" db:"website"`
}

// Common POI categories. The set is open; these are the ones seeded by default.
const (
	CategoryHistorical = "historical"
	CategoryPark       = "park"
	CategoryArt        = "art"
	CategoryRestaurant = "restaurant"
)

// Event is something scheduled at exactly one point of interest.
type Event struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`
	POIID       int64     `json:"poi_id" db:"poi_id"`
}
