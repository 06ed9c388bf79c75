package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/greggyneo/homefinder/internal/core/domain"
)

// townRadiusMeters bounds the area counted as "near a town" when attributing
// amenities to towns via their centroids.
const townRadiusMeters = 2000.0

// AmenityRepo implements ports.AmenityRepository with pgx.
type AmenityRepo struct {
	db *DB
}

// NewAmenityRepo creates a new AmenityRepo.
func NewAmenityRepo(db *DB) *AmenityRepo {
	return &AmenityRepo{db: db}
}

// UpsertBatch inserts or refreshes amenities keyed by their content hash.
// Returns the number of rows written.
func (r *AmenityRepo) UpsertBatch(ctx context.Context, features []domain.AmenityFeature) (int, error) {
	batch := &pgx.Batch{}
	for _, f := range features {
		batch.Queue(`
			INSERT INTO amenities (amenity_key, batch_id, category, name, location, properties, loaded_at)
			VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography, $7, $8)
			ON CONFLICT (amenity_key) DO UPDATE
			SET batch_id = EXCLUDED.batch_id,
			    properties = EXCLUDED.properties,
			    loaded_at = EXCLUDED.loaded_at
		`, f.Key(), f.ID, f.Category, f.Name, f.Location.Lon, f.Location.Lat,
			f.Properties, f.LoadedAt)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range features {
		if _, err := br.Exec(); err != nil {
			return 0, fmt.Errorf("batch exec: %w", err)
		}
	}
	return len(features), nil
}

// ListAll returns every amenity in the dataset.
func (r *AmenityRepo) ListAll(ctx context.Context) ([]domain.AmenityFeature, error) {
	return r.list(ctx, "")
}

// ListByCategory returns all amenities of one category.
func (r *AmenityRepo) ListByCategory(ctx context.Context, category string) ([]domain.AmenityFeature, error) {
	return r.list(ctx, category)
}

func (r *AmenityRepo) list(ctx context.Context, category string) ([]domain.AmenityFeature, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT amenity_key, category, name,
		       ST_Y(location::geometry) AS lat,
		       ST_X(location::geometry) AS lon,
		       COALESCE(properties, '{}'), loaded_at
		FROM amenities
		WHERE ($1 = '' OR category = $1)
		ORDER BY amenity_key
	`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []domain.AmenityFeature
	for rows.Next() {
		var f domain.AmenityFeature
		if err := rows.Scan(
			&f.ID, &f.Category, &f.Name,
			&f.Location.Lat, &f.Location.Lon,
			&f.Properties, &f.LoadedAt,
		); err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

// CountByCategoryNear counts amenities per category within radiusMeters of a
// point, using PostGIS ST_DWithin.
func (r *AmenityRepo) CountByCategoryNear(ctx context.Context, lat, lon, radiusMeters float64) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT category, COUNT(*)
		FROM amenities
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		GROUP BY category
	`, lon, lat, radiusMeters)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

// StatsByTown counts amenities near a town's centroid, or across the whole
// dataset when town is empty. Unknown towns yield zero counts, not an error.
func (r *AmenityRepo) StatsByTown(ctx context.Context, town string) (*domain.AmenityStats, error) {
	stats := &domain.AmenityStats{Town: town, Counts: make(map[string]int)}

	if town == "" {
		rows, err := r.db.Pool.Query(ctx, `SELECT category, COUNT(*) FROM amenities GROUP BY category`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		for rows.Next() {
			var category string
			var n int
			if err := rows.Scan(&category, &n); err != nil {
				return nil, err
			}
			stats.Counts[category] = n
			stats.Total += n
		}
		return stats, rows.Err()
	}

	var lat, lon float64
	err := r.db.Pool.QueryRow(ctx, `
		SELECT ST_Y(location::geometry), ST_X(location::geometry)
		FROM town_centroids WHERE town = $1
	`, town).Scan(&lat, &lon)
	if err == pgx.ErrNoRows {
		return stats, nil
	}
	if err != nil {
		return nil, err
	}

	counts, err := r.CountByCategoryNear(ctx, lat, lon, townRadiusMeters)
	if err != nil {
		return nil, err
	}
	stats.Counts = counts
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

// DeleteBatch removes all amenities imported under one batch ID.
func (r *AmenityRepo) DeleteBatch(ctx context.Context, batchID string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM amenities WHERE batch_id = $1`, batchID)
	return err
}

// CountBatch counts the amenities stored under one batch ID.
func (r *AmenityRepo) CountBatch(ctx context.Context, batchID string) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM amenities WHERE batch_id = $1`, batchID).Scan(&n)
	return n, err
}
