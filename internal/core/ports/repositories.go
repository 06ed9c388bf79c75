package ports

import (
	"context"

	"github.com/greggyneo/homefinder/internal/core/domain"
)

// ResaleRepository reads resale transaction data and aggregates.
type ResaleRepository interface {
	ListTowns(ctx context.Context) ([]string, error)
	ListFlatTypes(ctx context.Context) ([]string, error)
	MonthRange(ctx context.Context) (min, max string, err error)
	Trends(ctx context.Context, filter domain.TrendFilter) ([]domain.TrendPoint, error)
	Transactions(ctx context.Context, filter domain.TrendFilter, limit, offset int) ([]domain.ResaleTransaction, int, error)
	TownSummary(ctx context.Context, town, flatType string) (*domain.TownComparison, error)
	MarketStats(ctx context.Context) (*domain.MarketStats, error)
}

// AmenityRepository persists amenity features.
type AmenityRepository interface {
	UpsertBatch(ctx context.Context, features []domain.AmenityFeature) (int, error)
	ListAll(ctx context.Context) ([]domain.AmenityFeature, error)
	ListByCategory(ctx context.Context, category string) ([]domain.AmenityFeature, error)
	CountByCategoryNear(ctx context.Context, lat, lon, radiusMeters float64) (map[string]int, error)
	StatsByTown(ctx context.Context, town string) (*domain.AmenityStats, error)
	DeleteBatch(ctx context.Context, batchID string) error
	CountBatch(ctx context.Context, batchID string) (int, error)
}

// ScenarioRepository persists saved affordability scenarios.
type ScenarioRepository interface {
	Create(ctx context.Context, s *domain.Scenario) error
	GetByID(ctx context.Context, id string) (*domain.Scenario, error)
	List(ctx context.Context, limit, offset int) ([]domain.Scenario, int, error)
	Delete(ctx context.Context, id string) error
}

// LendingRepository reads reference lending data: published mortgage rates,
// eligibility rules and flat-type floor areas.
type LendingRepository interface {
	CurrentRate(ctx context.Context) (*domain.MortgageRate, error)
	CurrentRules(ctx context.Context) (*domain.LoanRules, error)
	FlatTypeSpec(ctx context.Context, flatType string) (*domain.FlatTypeSpec, error)
	ListFlatTypeSpecs(ctx context.Context) ([]domain.FlatTypeSpec, error)
}
