package repository

import (
	"context"
	"fmt"

	"github.com/thermopolio/thermopolio/internal/models"
)

// ListRestaurants returns the restaurant catalog, ordered by name.
func (s *Storage) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	const op = "storage.ListRestaurants"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, cuisine_type, distance, rating
			  FROM restaurants
			  ORDER BY name`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Restaurant
	for rows.Next() {
		var r models.Restaurant
		if err = rows.Scan(&r.ID, &r.Name, &r.CuisineType, &r.Distance, &r.Rating); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
