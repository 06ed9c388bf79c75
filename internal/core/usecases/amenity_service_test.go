package usecases_test

import (
	"context"
	"testing"

	"github.com/greggyneo/homefinder/internal/core/domain"
	"github.com/greggyneo/homefinder/internal/core/usecases"
)

// --- Mock AmenityRepository ---

type mockAmenityRepo struct {
	listAllFn        func(ctx context.Context) ([]domain.AmenityFeature, error)
	listByCategoryFn func(ctx context.Context, category string) ([]domain.AmenityFeature, error)
	upsertBatchFn    func(ctx context.Context, features []domain.AmenityFeature) (int, error)
	statsByTownFn    func(ctx context.Context, town string) (*domain.AmenityStats, error)
}

func (m *mockAmenityRepo) ListAll(ctx context.Context) ([]domain.AmenityFeature, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockAmenityRepo) ListByCategory(ctx context.Context, category string) ([]domain.AmenityFeature, error) {
	if m.listByCategoryFn != nil {
		return m.listByCategoryFn(ctx, category)
	}
	return nil, nil
}

func (m *mockAmenityRepo) UpsertBatch(ctx context.Context, features []domain.AmenityFeature) (int, error) {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, features)
	}
	return len(features), nil
}

func (m *mockAmenityRepo) CountByCategoryNear(ctx context.Context, lat, lon, radiusMeters float64) (map[string]int, error) {
	return nil, nil
}

func (m *mockAmenityRepo) StatsByTown(ctx context.Context, town string) (*domain.AmenityStats, error) {
	if m.statsByTownFn != nil {
		return m.statsByTownFn(ctx, town)
	}
	return &domain.AmenityStats{Town: town, Counts: map[string]int{}}, nil
}

func (m *mockAmenityRepo) DeleteBatch(ctx context.Context, batchID string) error { return nil }
func (m *mockAmenityRepo) CountBatch(ctx context.Context, batchID string) (int, error) {
	return 0, nil
}

type mockPublisher struct {
	importedFn func(ctx context.Context, batchID string, count int) error
}

func (m *mockPublisher) PublishAmenitiesImported(ctx context.Context, batchID string, count int) error {
	if m.importedFn != nil {
		return m.importedFn(ctx, batchID, count)
	}
	return nil
}
func (m *mockPublisher) PublishDatasetRefresh(ctx context.Context, dataset string) error { return nil }
func (m *mockPublisher) PublishBroadcast(ctx context.Context, data []byte) error         { return nil }

// --- Tests ---

func TestAmenityService_FindNearby(t *testing.T) {
	repo := &mockAmenityRepo{
		listAllFn: func(ctx context.Context) ([]domain.AmenityFeature, error) {
			return []domain.AmenityFeature{
				{Name: "Bishan", Category: domain.CategoryMRTStation, Location: domain.GeoPoint{Lat: 1.3521, Lon: 103.8198}},
				{Name: "far away", Category: domain.CategoryPark, Location: domain.GeoPoint{Lat: 1.45, Lon: 103.95}},
			}, nil
		},
	}

	svc := usecases.NewAmenityService(repo, nil, nil)
	res, err := svc.FindNearby(context.Background(), 1.3521, 103.8198, 600, "", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("expected 1 feature, got %d", res.Count)
	}
	if res.Features[0].Name != "Bishan" {
		t.Errorf("expected Bishan, got %s", res.Features[0].Name)
	}
	if res.Bounds == nil {
		t.Fatal("expected bounds for a non-empty result")
	}
	if res.Bounds.MinLat != res.Bounds.MaxLat {
		t.Error("single feature must yield degenerate bounds")
	}
}

func TestAmenityService_FindNearby_EmptyResultHasNilBounds(t *testing.T) {
	repo := &mockAmenityRepo{
		listAllFn: func(ctx context.Context) ([]domain.AmenityFeature, error) {
			return []domain.AmenityFeature{
				{Name: "far away", Category: domain.CategoryPark, Location: domain.GeoPoint{Lat: 1.45, Lon: 103.95}},
			}, nil
		},
	}

	svc := usecases.NewAmenityService(repo, nil, nil)
	res, err := svc.FindNearby(context.Background(), 1.3521, 103.8198, 600, "", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Count != 0 {
		t.Fatalf("expected 0 features, got %d", res.Count)
	}
	if res.Bounds != nil {
		t.Error("expected nil bounds for an empty result")
	}
}

func TestAmenityService_FindNearby_FiltersByCategory(t *testing.T) {
	var requested string
	repo := &mockAmenityRepo{
		listByCategoryFn: func(ctx context.Context, category string) ([]domain.AmenityFeature, error) {
			requested = category
			return nil, nil
		},
	}

	svc := usecases.NewAmenityService(repo, nil, nil)
	_, err := svc.FindNearby(context.Background(), 1.35, 103.82, 600, "school", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requested != domain.CategorySchool {
		t.Errorf("expected normalized category SCHOOL, got %q", requested)
	}
}

func TestAmenityService_ImportFeatures(t *testing.T) {
	var upserted []domain.AmenityFeature
	repo := &mockAmenityRepo{
		upsertBatchFn: func(ctx context.Context, features []domain.AmenityFeature) (int, error) {
			upserted = features
			return len(features), nil
		},
	}
	published := false
	events := &mockPublisher{
		importedFn: func(ctx context.Context, batchID string, count int) error {
			published = true
			if batchID != "batch-1" || count != 1 {
				t.Errorf("unexpected event: %s %d", batchID, count)
			}
			return nil
		},
	}

	svc := usecases.NewAmenityService(repo, nil, events)
	summary, err := svc.ImportFeatures(context.Background(), "batch-1", "clinic", []map[string]any{
		{
			"geometry":   map[string]any{"type": "Point", "coordinates": []any{103.82, 1.35}},
			"properties": map[string]any{"NAME": "Raffles Clinic"},
		},
		{
			"geometry": map[string]any{"type": "LineString"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Imported != 1 || summary.Skipped != 1 {
		t.Errorf("expected 1 imported 1 skipped, got %+v", summary)
	}
	if len(upserted) != 1 || upserted[0].Category != domain.CategoryClinic {
		t.Errorf("expected collection category to override, got %+v", upserted)
	}
	if upserted[0].ID != "batch-1" {
		t.Errorf("expected batch id on rows, got %q", upserted[0].ID)
	}
	if !published {
		t.Error("expected import event to be published")
	}
}

func TestAmenityService_ImportFeatures_AllMalformed(t *testing.T) {
	svc := usecases.NewAmenityService(&mockAmenityRepo{}, nil, nil)
	_, err := svc.ImportFeatures(context.Background(), "batch-2", "", []map[string]any{
		{"geometry": map[string]any{"type": "Polygon"}},
	})
	if err == nil {
		t.Error("expected error when nothing is importable")
	}
}

func TestAmenityService_StatsByTown(t *testing.T) {
	repo := &mockAmenityRepo{
		statsByTownFn: func(ctx context.Context, town string) (*domain.AmenityStats, error) {
			return &domain.AmenityStats{
				Town:  town,
				Total: 12,
				Counts: map[string]int{
					domain.CategoryMRTStation: 2,
					domain.CategorySchool:     10,
				},
			}, nil
		},
	}

	svc := usecases.NewAmenityService(repo, nil, nil)
	stats, err := svc.StatsByTown(context.Background(), "BISHAN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 12 || stats.Counts[domain.CategoryMRTStation] != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
