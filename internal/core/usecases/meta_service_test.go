package usecases_test

import (
	"context"
	"testing"

	"github.com/greggyneo/homefinder/internal/adapters/valkey"
	"github.com/greggyneo/homefinder/internal/core/usecases"
)

func TestMetaService_Get(t *testing.T) {
	svc := usecases.NewMetaService(&mockResaleRepo{}, &mockLendingRepo{}, nil)

	meta, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta.Towns) != 2 || meta.Towns[0] != "ANG MO KIO" {
		t.Errorf("unexpected towns: %v", meta.Towns)
	}
	if meta.MonthRange != [2]string{"2017-01", "2025-06"} {
		t.Errorf("unexpected month range: %v", meta.MonthRange)
	}
	if len(meta.AmenityCategories) == 0 {
		t.Error("expected amenity categories")
	}
}

// A failed cache client can end up behind the CacheService interface as a
// typed nil, which compares non-nil. Metadata must still come back from the
// repositories in that state.
func TestMetaService_Get_TypedNilCacheStillServes(t *testing.T) {
	svc := usecases.NewMetaService(&mockResaleRepo{}, &mockLendingRepo{}, (*valkey.Cache)(nil))

	meta, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta.Towns) != 2 {
		t.Errorf("expected towns from the repository, got %v", meta.Towns)
	}
}

func TestTrendService_MarketStats_TypedNilCache(t *testing.T) {
	svc := usecases.NewTrendService(&mockResaleRepo{}, (*valkey.Cache)(nil))

	if _, err := svc.MarketStats(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
