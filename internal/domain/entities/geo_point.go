package entities

import (
	"fmt"
	"math"
)

// GeoPoint is a latitude/longitude pair in degrees.
// Optional locations are modelled as *GeoPoint, so (0, 0) is a real place and nil means unset.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate reports whether both coordinates are finite and inside [-90,90] / [-180,180].
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", p.Latitude)
	}
	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", p.Longitude)
	}
	return nil
}

// ManhattanDistance is the L1 distance to other in raw degrees.
// It is a cheap proximity proxy that is only meaningful at city scale.
func (p GeoPoint) ManhattanDistance(other GeoPoint) float64 {
	return math.Abs(p.Latitude-other.Latitude) + math.Abs(p.Longitude-other.Longitude)
}

// HaversineKm is the great-circle distance to other in kilometres.
func (p GeoPoint) HaversineKm(other GeoPoint) float64 {
	const earthRadiusKm = 6371.0

	lat1Rad := toRadians(p.Latitude)
	lat2Rad := toRadians(other.Latitude)
	deltaLat := toRadians(other.Latitude - p.Latitude)
	deltaLon := toRadians(other.Longitude - p.Longitude)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// String renders the point as "lat,lon".
func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Latitude, p.Longitude)
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
