package usecases_test

import (
	"context"
	"testing"

	"github.com/greggyneo/homefinder/internal/core/domain"
	"github.com/greggyneo/homefinder/internal/core/usecases"
)

func TestComparisonService_Compare(t *testing.T) {
	resales := &mockResaleRepo{
		townSummaryFn: func(ctx context.Context, town, flatType string) (*domain.TownComparison, error) {
			if flatType != "4 ROOM" {
				t.Errorf("expected flat type 4 ROOM, got %q", flatType)
			}
			return &domain.TownComparison{Town: town, Transactions: 100, AvgPrice: 600000}, nil
		},
	}
	amenities := &mockAmenityRepo{
		statsByTownFn: func(ctx context.Context, town string) (*domain.AmenityStats, error) {
			return &domain.AmenityStats{
				Town: town,
				Counts: map[string]int{
					domain.CategoryMRTStation: 3,
					domain.CategorySchool:     7,
				},
			}, nil
		},
	}

	svc := usecases.NewComparisonService(resales, amenities)
	rows, err := svc.Compare(context.Background(), []string{"BISHAN", "ANG MO KIO"}, "4 ROOM", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Town != "BISHAN" || rows[1].Town != "ANG MO KIO" {
		t.Error("rows must follow request order")
	}
	if rows[0].MRTCount != 3 || rows[0].SchoolCount != 7 {
		t.Errorf("expected amenity counts on rows, got %+v", rows[0])
	}
	if rows[0].AffordabilityScore != 0 {
		t.Error("score must be absent without an income")
	}
}

func TestComparisonService_Compare_ScoreWithIncome(t *testing.T) {
	resales := &mockResaleRepo{
		townSummaryFn: func(ctx context.Context, town, flatType string) (*domain.TownComparison, error) {
			return &domain.TownComparison{Town: town, AvgPrice: 500000}, nil
		},
	}

	svc := usecases.NewComparisonService(resales, &mockAmenityRepo{})
	rows, err := svc.Compare(context.Background(), []string{"BISHAN"}, "", 8000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].AffordabilityScore <= 0 || rows[0].AffordabilityScore > 100 {
		t.Errorf("expected score in (0,100], got %f", rows[0].AffordabilityScore)
	}
}

func TestComparisonService_Compare_Limits(t *testing.T) {
	svc := usecases.NewComparisonService(&mockResaleRepo{}, &mockAmenityRepo{})

	if _, err := svc.Compare(context.Background(), nil, "", 0); err == nil {
		t.Error("expected error for no towns")
	}
	six := []string{"A", "B", "C", "D", "E", "F"}
	if _, err := svc.Compare(context.Background(), six, "", 0); err == nil {
		t.Error("expected error for too many towns")
	}
}
