package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/greggyneo/homefinder/internal/core/domain"
	"github.com/greggyneo/homefinder/internal/core/ports"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// TrendService serves monthly price aggregates and raw transactions.
type TrendService struct {
	resales ports.ResaleRepository
	cache   ports.CacheService
}

// NewTrendService creates a new TrendService.
func NewTrendService(resales ports.ResaleRepository, cache ports.CacheService) *TrendService {
	return &TrendService{resales: resales, cache: cache}
}

// Trends returns the monthly median/average series matching the filter.
func (s *TrendService) Trends(ctx context.Context, filter domain.TrendFilter) ([]domain.TrendPoint, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("trends:%s:%s:%s:%s", filter.Town, filter.FlatType, filter.StartMonth, filter.EndMonth)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var points []domain.TrendPoint
			if err := json.Unmarshal(data, &points); err == nil {
				return points, nil
			}
		}
	}

	points, err := s.resales.Trends(ctx, filter)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(points); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}
	return points, nil
}

// Transactions returns a page of raw resale transactions plus the total count.
func (s *TrendService) Transactions(ctx context.Context, filter domain.TrendFilter, limit, offset int) ([]domain.ResaleTransaction, int, error) {
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.resales.Transactions(ctx, filter, limit, offset)
}

// MarketStats returns dataset-wide summary statistics.
func (s *TrendService) MarketStats(ctx context.Context) (*domain.MarketStats, error) {
	const cacheKey = "market:stats"
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var stats domain.MarketStats
			if err := json.Unmarshal(data, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.resales.MarketStats(ctx)
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

func validateFilter(filter domain.TrendFilter) error {
	if filter.StartMonth != "" && !monthPattern.MatchString(filter.StartMonth) {
		return fmt.Errorf("%w: start_month must be YYYY-MM", domain.ErrInvalidInput)
	}
	if filter.EndMonth != "" && !monthPattern.MatchString(filter.EndMonth) {
		return fmt.Errorf("%w: end_month must be YYYY-MM", domain.ErrInvalidInput)
	}
	if filter.StartMonth != "" && filter.EndMonth != "" && filter.StartMonth > filter.EndMonth {
		return fmt.Errorf("%w: start_month is after end_month", domain.ErrInvalidInput)
	}
	return nil
}
