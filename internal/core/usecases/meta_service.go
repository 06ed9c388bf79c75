package usecases

import (
	"context"
	"encoding/json"

	"github.com/greggyneo/homefinder/internal/core/domain"
	"github.com/greggyneo/homefinder/internal/core/ports"
)

// DatasetMeta describes the filter dimensions of the resale dataset, used by
// clients to populate dropdowns.
type DatasetMeta struct {
	Towns             []string              `json:"towns"`
	FlatTypes         []string              `json:"flat_types"`
	MonthRange        [2]string             `json:"month_range"`
	FlatTypeSpecs     []domain.FlatTypeSpec `json:"flat_type_specs"`
	AmenityCategories []string              `json:"amenity_categories"`
}

// MetaService serves dataset metadata.
type MetaService struct {
	resales ports.ResaleRepository
	lending ports.LendingRepository
	cache   ports.CacheService
}

// NewMetaService creates a new MetaService.
func NewMetaService(resales ports.ResaleRepository, lending ports.LendingRepository, cache ports.CacheService) *MetaService {
	return &MetaService{resales: resales, lending: lending, cache: cache}
}

// Get returns the dataset's towns, flat types, month range and flat specs.
func (s *MetaService) Get(ctx context.Context) (*DatasetMeta, error) {
	const cacheKey = "meta:dataset"
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var meta DatasetMeta
			if err := json.Unmarshal(data, &meta); err == nil {
				return &meta, nil
			}
		}
	}

	towns, err := s.resales.ListTowns(ctx)
	if err != nil {
		return nil, err
	}
	flatTypes, err := s.resales.ListFlatTypes(ctx)
	if err != nil {
		return nil, err
	}
	minMonth, maxMonth, err := s.resales.MonthRange(ctx)
	if err != nil {
		return nil, err
	}
	specs, err := s.lending.ListFlatTypeSpecs(ctx)
	if err != nil {
		return nil, err
	}

	meta := &DatasetMeta{
		Towns:             towns,
		FlatTypes:         flatTypes,
		MonthRange:        [2]string{minMonth, maxMonth},
		FlatTypeSpecs:     specs,
		AmenityCategories: domain.AmenityCategories,
	}

	// Dimensions only move on dataset refresh, roughly monthly.
	if s.cache != nil {
		if data, err := json.Marshal(meta); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 3600)
		}
	}
	return meta, nil
}

// Invalidate drops cached metadata after a dataset refresh.
func (s *MetaService) Invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "meta:dataset")
	}
}
