package usecases

import (
	"context"
	"fmt"
	"math"

	"github.com/greggyneo/homefinder/internal/core/affordability"
	"github.com/greggyneo/homefinder/internal/core/domain"
	"github.com/greggyneo/homefinder/internal/core/ports"
)

const maxCompareTowns = 5

// ComparisonService builds side-by-side town comparisons from resale
// aggregates and amenity counts.
type ComparisonService struct {
	resales   ports.ResaleRepository
	amenities ports.AmenityRepository
}

// NewComparisonService creates a new ComparisonService.
func NewComparisonService(resales ports.ResaleRepository, amenities ports.AmenityRepository) *ComparisonService {
	return &ComparisonService{resales: resales, amenities: amenities}
}

// Compare returns one row per requested town. Towns with no transactions for
// the flat type are returned with zero aggregates rather than omitted, so the
// client table keeps a row per requested town. When income is positive an
// affordability score is attached to each row.
func (s *ComparisonService) Compare(ctx context.Context, towns []string, flatType string, income float64) ([]domain.TownComparison, error) {
	if len(towns) == 0 {
		return nil, fmt.Errorf("%w: at least one town is required", domain.ErrInvalidInput)
	}
	if len(towns) > maxCompareTowns {
		return nil, fmt.Errorf("%w: at most %d towns can be compared", domain.ErrInvalidInput, maxCompareTowns)
	}

	var maxProperty float64
	if income > 0 {
		result, err := affordability.Evaluate(domain.AffordabilityInput{
			Income:         income,
			InterestPct:    domain.DefaultInterestPct,
			TenureYears:    domain.DefaultTenureYears,
			DownPaymentPct: domain.DefaultDownPaymentPct,
		}, domain.DefaultFlatSizeSQM)
		if err != nil {
			return nil, err
		}
		maxProperty = result.MaxPropertyValue
	}

	rows := make([]domain.TownComparison, 0, len(towns))
	for _, town := range towns {
		summary, err := s.resales.TownSummary(ctx, town, flatType)
		if err != nil {
			return nil, err
		}
		if summary == nil {
			summary = &domain.TownComparison{Town: town}
		}

		if stats, err := s.amenities.StatsByTown(ctx, town); err == nil && stats != nil {
			summary.MRTCount = stats.Counts[domain.CategoryMRTStation]
			summary.SchoolCount = stats.Counts[domain.CategorySchool]
		}

		if maxProperty > 0 && summary.AvgPrice > 0 {
			summary.AffordabilityScore = math.Min(100, math.Round(100*maxProperty/summary.AvgPrice))
		}

		rows = append(rows, *summary)
	}
	return rows, nil
}
