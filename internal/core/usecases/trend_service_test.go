package usecases_test

import (
	"context"
	"testing"

	"github.com/greggyneo/homefinder/internal/core/domain"
	"github.com/greggyneo/homefinder/internal/core/usecases"
)

// --- Mock ResaleRepository ---

type mockResaleRepo struct {
	trendsFn       func(ctx context.Context, filter domain.TrendFilter) ([]domain.TrendPoint, error)
	transactionsFn func(ctx context.Context, filter domain.TrendFilter, limit, offset int) ([]domain.ResaleTransaction, int, error)
	townSummaryFn  func(ctx context.Context, town, flatType string) (*domain.TownComparison, error)
	marketStatsFn  func(ctx context.Context) (*domain.MarketStats, error)
	listTownsFn    func(ctx context.Context) ([]string, error)
}

func (m *mockResaleRepo) ListTowns(ctx context.Context) ([]string, error) {
	if m.listTownsFn != nil {
		return m.listTownsFn(ctx)
	}
	return []string{"ANG MO KIO", "BISHAN"}, nil
}

func (m *mockResaleRepo) ListFlatTypes(ctx context.Context) ([]string, error) {
	return []string{"3 ROOM", "4 ROOM"}, nil
}

func (m *mockResaleRepo) MonthRange(ctx context.Context) (string, string, error) {
	return "2017-01", "2025-06", nil
}

func (m *mockResaleRepo) Trends(ctx context.Context, filter domain.TrendFilter) ([]domain.TrendPoint, error) {
	if m.trendsFn != nil {
		return m.trendsFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockResaleRepo) Transactions(ctx context.Context, filter domain.TrendFilter, limit, offset int) ([]domain.ResaleTransaction, int, error) {
	if m.transactionsFn != nil {
		return m.transactionsFn(ctx, filter, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockResaleRepo) TownSummary(ctx context.Context, town, flatType string) (*domain.TownComparison, error) {
	if m.townSummaryFn != nil {
		return m.townSummaryFn(ctx, town, flatType)
	}
	return &domain.TownComparison{Town: town}, nil
}

func (m *mockResaleRepo) MarketStats(ctx context.Context) (*domain.MarketStats, error) {
	if m.marketStatsFn != nil {
		return m.marketStatsFn(ctx)
	}
	return &domain.MarketStats{}, nil
}

// --- Tests ---

func TestTrendService_Trends(t *testing.T) {
	repo := &mockResaleRepo{
		trendsFn: func(ctx context.Context, filter domain.TrendFilter) ([]domain.TrendPoint, error) {
			if filter.Town != "BISHAN" {
				t.Errorf("expected town BISHAN, got %q", filter.Town)
			}
			return []domain.TrendPoint{
				{Month: "2024-01", MedianPSM: 6800, Count: 42},
				{Month: "2024-02", MedianPSM: 6950, Count: 38},
			}, nil
		},
	}

	svc := usecases.NewTrendService(repo, nil)
	points, err := svc.Trends(context.Background(), domain.TrendFilter{Town: "BISHAN", FlatType: "4 ROOM"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Month != "2024-01" {
		t.Errorf("expected 2024-01 first, got %s", points[0].Month)
	}
}

func TestTrendService_Trends_RejectsBadMonths(t *testing.T) {
	svc := usecases.NewTrendService(&mockResaleRepo{}, nil)

	cases := []domain.TrendFilter{
		{StartMonth: "2024"},
		{EndMonth: "Jan 2024"},
		{StartMonth: "2024-06", EndMonth: "2024-01"},
	}
	for _, filter := range cases {
		if _, err := svc.Trends(context.Background(), filter); err == nil {
			t.Errorf("expected error for filter %+v", filter)
		}
	}
}

func TestTrendService_Transactions_ClampsPaging(t *testing.T) {
	repo := &mockResaleRepo{
		transactionsFn: func(ctx context.Context, filter domain.TrendFilter, limit, offset int) ([]domain.ResaleTransaction, int, error) {
			if limit != 50 {
				t.Errorf("expected limit clamped to 50, got %d", limit)
			}
			if offset != 0 {
				t.Errorf("expected offset clamped to 0, got %d", offset)
			}
			return nil, 0, nil
		},
	}

	svc := usecases.NewTrendService(repo, nil)
	_, _, err := svc.Transactions(context.Background(), domain.TrendFilter{}, 9999, -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTrendService_MarketStats(t *testing.T) {
	repo := &mockResaleRepo{
		marketStatsFn: func(ctx context.Context) (*domain.MarketStats, error) {
			return &domain.MarketStats{TotalTransactions: 190000, TotalTowns: 26}, nil
		},
	}

	svc := usecases.NewTrendService(repo, nil)
	stats, err := svc.MarketStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalTransactions != 190000 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
