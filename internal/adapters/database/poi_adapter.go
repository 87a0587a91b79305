package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/cityguide/backend/internal/domain/entities"
	"github.com/cityguide/backend/internal/domain/repositories"
	"github.com/cityguide/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/cityguide/backend/pkg/errors"
)

const pointsOfInterestTable = "points_of_interest"

var poiColumns = []interface{}{
	"id", "name", "address", "latitude", "longitude", "description", "category", "rating", "review_count", "website",
}

// PointOfInterestAdapter implements PointOfInterestRepository on PostgreSQL
type PointOfInterestAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPointOfInterestAdapter creates a new POI adapter
func NewPointOfInterestAdapter(client *postgres.Client) repositories.PointOfInterestRepository {
	return &PointOfInterestAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListAll returns the whole catalog ordered by id
func (a *PointOfInterestAdapter) ListAll(ctx context.Context) ([]entities.PointOfInterest, error) {
	query, _, err := a.db.From(pointsOfInterestTable).
		Select(poiColumns...).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build POI query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list POIs", err)
	}
	defer rows.Close()

	pois := make([]entities.PointOfInterest, 0)
	for rows.Next() {
		poi, err := scanPOI(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan POI", err)
		}
		pois = append(pois, poi)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate POIs", err)
	}

	return pois, nil
}

// GetByID retrieves a POI by id
func (a *PointOfInterestAdapter) GetByID(ctx context.Context, id int64) (*entities.PointOfInterest, error) {
	query, _, err := a.db.From(pointsOfInterestTable).
		Select(poiColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build POI query", err)
	}

	poi, err := scanPOI(a.client.DB().QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("point of interest %d not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get POI", err)
	}

	return &poi, nil
}

// Seed inserts all POIs in one statement; rows whose (name, address) already exist are skipped
func (a *PointOfInterestAdapter) Seed(ctx context.Context, pois []entities.PointOfInterest) (int, error) {
	if len(pois) == 0 {
		return 0, nil
	}

	rows := make([]interface{}, 0, len(pois))
	for _, poi := range pois {
		rows = append(rows, goqu.Record{
			"name":         poi.Name,
			"address":      poi.Address,
			"latitude":     poi.Location.Latitude,
			"longitude":    poi.Location.Longitude,
			"description":  poi.Description,
			"category":     poi.Category,
			"rating":       poi.Rating,
			"review_count": poi.ReviewCount,
			"website":      poi.Website,
		})
	}

	query, _, err := a.db.Insert(pointsOfInterestTable).
		Rows(rows...).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build POI seed insert", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query)
	if err != nil {
		return 0, mapPQError(err, "failed to seed POIs")
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}

	return int(inserted), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPOI(row rowScanner) (entities.PointOfInterest, error) {
	var poi entities.PointOfInterest
	var website sql.NullString
	err := row.Scan(
		&poi.ID,
		&poi.Name,
		&poi.Address,
		&poi.Location.Latitude,
		&poi.Location.Longitude,
		&poi.Description,
		&poi.Category,
		&poi.Rating,
		&poi.ReviewCount,
		&website,
	)
	poi.Website = website.String
	return poi, err
}
