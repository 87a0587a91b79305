package services

import "github.com/cityguide/backend/internal/domain/entities"

// DefaultPointsOfInterest is the initial Rostov-on-Don catalog
func DefaultPointsOfInterest() []entities.PointOfInterest {
	return []entities.PointOfInterest{
		{
			Name:        "Ростовский Кремль",
			Address:     "Кремль, Ростов-на-Дону",
			Location:    entities.GeoPoint{Latitude: 47.2315, Longitude: 39.7233},
			Description: "Исторический памятник",
			Category:    entities.CategoryHistorical,
			Rating:      4.9,
			ReviewCount: 120,
		},
		{
			Name:        "Парк Горького",
			Address:     "Центральный парк, Ростов-на-Дону",
			Location:    entities.GeoPoint{Latitude: 47.2332, Longitude: 39.7267},
			Description: "Зеленая зона для отдыха",
			Category:    entities.CategoryPark,
			Rating:      4.5,
			ReviewCount: 200,
		},
		{
			Name:        "Музей Современного Искусства",
			Address:     "Музейная ул., Ростов-на-Дону",
			Location:    entities.GeoPoint{Latitude: 47.2301, Longitude: 39.7220},
			Description: "Коллекция современного искусства",
			Category:    entities.CategoryArt,
			Rating:      4.8,
			ReviewCount: 98,
		},
	}
}
