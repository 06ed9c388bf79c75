package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/greggyneo/homefinder/internal/core/domain"
	"github.com/greggyneo/homefinder/internal/core/ports"
	"github.com/greggyneo/homefinder/internal/core/proximity"
	"github.com/greggyneo/homefinder/internal/pkg/geospatial"
)

// AmenitySearchResult is one amenity search: positioned markers plus the
// viewport that frames them. Bounds is nil when nothing matched.
type AmenitySearchResult struct {
	Features []domain.PositionedAmenity `json:"features"`
	Bounds   *domain.Bounds             `json:"bounds"`
	Count    int                        `json:"count"`
}

// ImportSummary reports the outcome of a GeoJSON import.
type ImportSummary struct {
	BatchID  string `json:"batch_id"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}

// AmenityService handles amenity search, stats and imports.
type AmenityService struct {
	amenities ports.AmenityRepository
	cache     ports.CacheService
	events    ports.EventPublisher
}

// NewAmenityService creates a new AmenityService.
func NewAmenityService(amenities ports.AmenityRepository, cache ports.CacheService, events ports.EventPublisher) *AmenityService {
	return &AmenityService{amenities: amenities, cache: cache, events: events}
}

// FindNearby returns the amenities within radiusMeters of the given point,
// de-collided for display, together with the bounding box framing them.
func (s *AmenityService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, category string, limit int) (*AmenitySearchResult, error) {
	if radiusMeters <= 0 {
		radiusMeters = 1000
	}
	if radiusMeters > 10000 {
		radiusMeters = 10000
	}
	if limit <= 0 || limit > 500 {
		limit = 500
	}

	features, err := s.loadFeatures(ctx, category)
	if err != nil {
		return nil, err
	}

	center := domain.GeoPoint{Lat: lat, Lon: lon}
	matched := proximity.Nearby(center, radiusMeters, features)
	if len(matched) > limit {
		matched = matched[:limit]
	}

	positioned := proximity.LayoutForDisplay(matched)

	result := &AmenitySearchResult{Features: positioned, Count: len(positioned)}
	points := make([]domain.GeoPoint, len(positioned))
	for i, p := range positioned {
		points[i] = p.Display
	}
	if b, ok := geospatial.BoundsOf(points); ok {
		result.Bounds = &b
	}
	return result, nil
}

// ListByCategory returns all amenities of one category, or all amenities when
// category is empty.
func (s *AmenityService) ListByCategory(ctx context.Context, category string) ([]domain.AmenityFeature, error) {
	return s.loadFeatures(ctx, category)
}

// StatsByTown returns per-category amenity counts near a town's centre, or
// dataset-wide counts when town is empty.
func (s *AmenityService) StatsByTown(ctx context.Context, town string) (*domain.AmenityStats, error) {
	cacheKey := "amenities:stats:" + strings.ToUpper(town)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var stats domain.AmenityStats
			if err := json.Unmarshal(data, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.amenities.StatsByTown(ctx, town)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}
	return stats, nil
}

// ImportFeatures sanitises and upserts a GeoJSON feature collection. The
// collection's category, when given, overrides per-feature detection.
// Malformed features are counted and skipped, never imported.
func (s *AmenityService) ImportFeatures(ctx context.Context, batchID, category string, rawFeatures []map[string]any) (*ImportSummary, error) {
	if len(rawFeatures) == 0 {
		return nil, fmt.Errorf("%w: feature collection is empty", domain.ErrInvalidInput)
	}

	features, skipped := SanitiseFeatures(batchID, category, rawFeatures)
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no well-formed Point features in collection (%d skipped)", domain.ErrInvalidInput, skipped)
	}

	imported, err := s.amenities.UpsertBatch(ctx, features)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	if s.events != nil {
		_ = s.events.PublishAmenitiesImported(ctx, batchID, imported)
	}

	return &ImportSummary{BatchID: batchID, Imported: imported, Skipped: skipped}, nil
}

// SanitiseFeatures converts raw GeoJSON features into amenity rows, dropping
// the malformed ones. Shared by the HTTP import path and the import workflow.
func SanitiseFeatures(batchID, category string, rawFeatures []map[string]any) ([]domain.AmenityFeature, int) {
	now := time.Now().UTC()
	features := make([]domain.AmenityFeature, 0, len(rawFeatures))
	skipped := 0
	for _, raw := range rawFeatures {
		f, err := proximity.FeatureFromGeoJSON(raw)
		if err != nil {
			skipped++
			continue
		}
		if category != "" {
			f.Category = strings.ToUpper(strings.TrimSpace(category))
		}
		f.ID = batchID
		f.LoadedAt = now
		features = append(features, f)
	}
	return features, skipped
}

func (s *AmenityService) loadFeatures(ctx context.Context, category string) ([]domain.AmenityFeature, error) {
	category = strings.ToUpper(strings.TrimSpace(category))

	cacheKey := "amenities:all"
	if category != "" {
		cacheKey = "amenities:category:" + category
	}
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var features []domain.AmenityFeature
			if err := json.Unmarshal(data, &features); err == nil {
				return features, nil
			}
		}
	}

	var features []domain.AmenityFeature
	var err error
	if category == "" {
		features, err = s.amenities.ListAll(ctx)
	} else {
		features, err = s.amenities.ListByCategory(ctx, category)
	}
	if err != nil {
		return nil, err
	}

	// Amenity datasets change only on import, so a long TTL is safe; imports
	// invalidate these keys explicitly.
	if s.cache != nil {
		if data, err := json.Marshal(features); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}
	return features, nil
}

func (s *AmenityService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, "amenities:all")
	for _, c := range domain.AmenityCategories {
		_ = s.cache.Delete(ctx, "amenities:category:"+c)
	}
}
