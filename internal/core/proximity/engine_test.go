package proximity

import (
	"math"
	"testing"

	"github.com/greggyneo/homefinder/internal/core/domain"
	"github.com/greggyneo/homefinder/internal/pkg/geospatial"
)

func feature(name, category string, lat, lon float64) domain.AmenityFeature {
	return domain.AmenityFeature{
		Name:     name,
		Category: category,
		Location: domain.GeoPoint{Lat: lat, Lon: lon},
	}
}

func TestNearby_SingleFeatureAtCenter(t *testing.T) {
	center := domain.GeoPoint{Lat: 1.3521, Lon: 103.8198}
	got := Nearby(center, 600, []domain.AmenityFeature{
		feature("Bishan", domain.CategoryMRTStation, 1.3521, 103.8198),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(got))
	}
	if got[0].Distance == nil || *got[0].Distance != 0 {
		t.Errorf("expected distance 0, got %v", got[0].Distance)
	}
}

func TestNearby_InclusiveBoundary(t *testing.T) {
	center := domain.GeoPoint{Lat: 1.35, Lon: 103.82}
	f := feature("on the edge", domain.CategoryPark, 1.36, 103.82)
	d := geospatial.Haversine(center.Lat, center.Lon, f.Location.Lat, f.Location.Lon)

	if got := Nearby(center, d, []domain.AmenityFeature{f}); len(got) != 1 {
		t.Error("feature exactly on the boundary must be included")
	}
	if got := Nearby(center, d-1, []domain.AmenityFeature{f}); len(got) != 0 {
		t.Error("feature beyond the radius must be excluded")
	}
}

func TestNearby_PreservesInputOrder(t *testing.T) {
	center := domain.GeoPoint{Lat: 1.35, Lon: 103.82}
	features := []domain.AmenityFeature{
		feature("far", domain.CategorySchool, 1.358, 103.82),  // ~890m
		feature("near", domain.CategoryClinic, 1.351, 103.82), // ~111m
		feature("mid", domain.CategoryPark, 1.354, 103.82),    // ~445m
	}
	got := Nearby(center, 2000, features)
	if len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
	for i, want := range []string{"far", "near", "mid"} {
		if got[i].Name != want {
			t.Errorf("position %d: expected %q, got %q", i, want, got[i].Name)
		}
	}
}

func TestNearby_SubsetWithinRadius(t *testing.T) {
	center := domain.GeoPoint{Lat: 1.35, Lon: 103.82}
	features := []domain.AmenityFeature{
		feature("a", domain.CategorySchool, 1.351, 103.821),
		feature("b", domain.CategoryClinic, 1.40, 103.90),
		feature("c", domain.CategoryPark, 1.349, 103.819),
	}
	got := Nearby(center, 500, features)
	for _, f := range got {
		if f.Distance == nil {
			t.Fatal("returned feature missing distance")
		}
		if *f.Distance > 500 {
			t.Errorf("%s returned with distance %f > radius", f.Name, *f.Distance)
		}
	}
	if len(got) != 2 {
		t.Errorf("expected 2 features within 500m, got %d", len(got))
	}
}

func TestNearby_EmptySet(t *testing.T) {
	got := Nearby(domain.GeoPoint{Lat: 1.35, Lon: 103.82}, 500, nil)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestNearby_DropsNonFiniteCoordinates(t *testing.T) {
	center := domain.GeoPoint{Lat: 1.35, Lon: 103.82}
	got := Nearby(center, 100000, []domain.AmenityFeature{
		feature("bad lat", domain.CategoryOther, math.NaN(), 103.82),
		feature("bad lon", domain.CategoryOther, 1.35, math.Inf(1)),
		feature("good", domain.CategoryOther, 1.35, 103.82),
	})
	if len(got) != 1 || got[0].Name != "good" {
		t.Errorf("expected only the well-formed feature, got %+v", got)
	}
}

func TestLayoutForDisplay_FirstOccupantUndisplaced(t *testing.T) {
	got := LayoutForDisplay([]domain.AmenityFeature{
		feature("Bishan", domain.CategoryMRTStation, 1.3521, 103.8198),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1, got %d", len(got))
	}
	if got[0].Display != got[0].Location {
		t.Errorf("sole occupant must keep its position: %+v vs %+v", got[0].Display, got[0].Location)
	}
}

func TestLayoutForDisplay_SecondDuplicateDisplacedEast(t *testing.T) {
	lat, lon := 1.35, 103.82
	got := LayoutForDisplay([]domain.AmenityFeature{
		feature("first", domain.CategorySchool, lat, lon),
		feature("second", domain.CategoryClinic, lat, lon),
	})
	if len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got[0].Display.Lat != lat || got[0].Display.Lon != lon {
		t.Error("first occupant must stay put")
	}

	// Second sits 18m due east: same latitude, longitude grown by
	// 18 / metersPerDegreeLon(lat).
	if math.Abs(got[1].Display.Lat-lat) > 1e-12 {
		t.Errorf("expected no latitude shift at angle 0, got %.12f", got[1].Display.Lat-lat)
	}
	wantLonShift := 18.0 / geospatial.MetersPerDegreeLon(lat)
	if math.Abs((got[1].Display.Lon-lon)-wantLonShift) > 1e-12 {
		t.Errorf("expected lon shift %.12f, got %.12f", wantLonShift, got[1].Display.Lon-lon)
	}

	d := geospatial.Haversine(lat, lon, got[1].Display.Lat, got[1].Display.Lon)
	if math.Abs(d-18) > 0.5 {
		t.Errorf("expected ~18m displacement, got %f", d)
	}
}

func TestLayoutForDisplay_DuplicatesFanOutDistinctly(t *testing.T) {
	var features []domain.AmenityFeature
	for i := 0; i < 5; i++ {
		features = append(features, feature("stacked", domain.CategoryClinic, 1.35, 103.82))
	}
	got := LayoutForDisplay(features)
	if len(got) != 5 {
		t.Fatalf("expected 5, got %d", len(got))
	}
	positions := make(map[domain.GeoPoint]bool)
	for _, p := range got {
		if positions[p.Display] {
			t.Errorf("duplicate display position %+v", p.Display)
		}
		positions[p.Display] = true
	}
}

func TestLayoutForDisplay_Deterministic(t *testing.T) {
	features := []domain.AmenityFeature{
		feature("a", domain.CategorySchool, 1.35, 103.82),
		feature("b", domain.CategoryClinic, 1.35, 103.82),
		feature("c", domain.CategoryPark, 1.36, 103.83),
		feature("d", domain.CategoryMRTStation, 1.35, 103.82),
	}
	first := LayoutForDisplay(features)
	second := LayoutForDisplay(features)
	if len(first) != len(second) {
		t.Fatal("layout length not stable")
	}
	for i := range first {
		if first[i].Display != second[i].Display {
			t.Errorf("position %d differs between runs: %+v vs %+v", i, first[i].Display, second[i].Display)
		}
	}
}

func TestLayoutForDisplay_GroupsAtSixDecimalPlaces(t *testing.T) {
	// 1e-7 degrees apart rounds to the same 6dp cell, so the second feature
	// is treated as a duplicate and displaced.
	got := LayoutForDisplay([]domain.AmenityFeature{
		feature("a", domain.CategorySchool, 1.3500001, 103.82),
		feature("b", domain.CategoryClinic, 1.35000005, 103.82),
	})
	if len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	if got[1].Display == got[1].Location {
		t.Error("expected the near-coincident feature to be displaced")
	}

	// 1e-4 degrees apart is a different cell; no displacement.
	got = LayoutForDisplay([]domain.AmenityFeature{
		feature("a", domain.CategorySchool, 1.3500, 103.82),
		feature("b", domain.CategoryClinic, 1.3501, 103.82),
	})
	if got[1].Display != got[1].Location {
		t.Error("expected distinct coordinates to stay undisplaced")
	}
}

func TestLayoutForDisplay_DropsMalformedAndNamesUnnamed(t *testing.T) {
	got := LayoutForDisplay([]domain.AmenityFeature{
		feature("", domain.CategoryPark, 1.35, 103.82),
		feature("broken", domain.CategoryPark, math.NaN(), 103.82),
	})
	if len(got) != 1 {
		t.Fatalf("expected malformed feature dropped, got %d entries", len(got))
	}
	if got[0].Name != domain.UnnamedAmenity {
		t.Errorf("expected fallback name, got %q", got[0].Name)
	}
}

func TestStyleFor(t *testing.T) {
	known := []string{
		domain.CategoryMRTStation,
		domain.CategorySchool,
		domain.CategoryClinic,
		domain.CategorySupermarket,
		domain.CategoryPark,
	}
	seenColors := make(map[string]string)
	for _, c := range known {
		s := StyleFor(c)
		if s == defaultStyle {
			t.Errorf("category %s mapped to default style", c)
		}
		if prev, dup := seenColors[s.Color]; dup {
			t.Errorf("color %s shared by %s and %s", s.Color, prev, c)
		}
		seenColors[s.Color] = c
	}

	if StyleFor("mrt_station") != StyleFor(domain.CategoryMRTStation) {
		t.Error("lookup must be case-insensitive")
	}
	if StyleFor(" school ") != StyleFor(domain.CategorySchool) {
		t.Error("lookup must trim whitespace")
	}
	if StyleFor("BOWLING_ALLEY") != defaultStyle {
		t.Error("unknown category must map to default")
	}
	if StyleFor("") != defaultStyle {
		t.Error("empty category must map to default")
	}
}

func TestFeatureFromGeoJSON(t *testing.T) {
	f, err := FeatureFromGeoJSON(map[string]any{
		"geometry": map[string]any{
			"type":        "Point",
			"coordinates": []any{103.8198, 1.3521},
		},
		"properties": map[string]any{"NAME": "Bishan", "amenity_type": "mrt_station"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name != "Bishan" {
		t.Errorf("expected name Bishan, got %q", f.Name)
	}
	if f.Category != domain.CategoryMRTStation {
		t.Errorf("expected normalized category, got %q", f.Category)
	}
	if f.Location.Lat != 1.3521 || f.Location.Lon != 103.8198 {
		t.Errorf("coordinates misread: %+v", f.Location)
	}

	if _, err := FeatureFromGeoJSON(map[string]any{
		"geometry": map[string]any{"type": "Polygon"},
	}); err == nil {
		t.Error("expected error for non-Point geometry")
	}
	if _, err := FeatureFromGeoJSON(map[string]any{
		"geometry": map[string]any{"type": "Point", "coordinates": []any{103.82}},
	}); err == nil {
		t.Error("expected error for short coordinate array")
	}
	if _, err := FeatureFromGeoJSON(map[string]any{
		"geometry": map[string]any{"type": "Point", "coordinates": []any{math.NaN(), 1.35}},
	}); err == nil {
		t.Error("expected error for non-finite coordinates")
	}

	f, err = FeatureFromGeoJSON(map[string]any{
		"geometry": map[string]any{"type": "Point", "coordinates": []any{103.82, 1.35}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name != domain.UnnamedAmenity {
		t.Errorf("expected fallback name, got %q", f.Name)
	}
	if f.Category != domain.CategoryOther {
		t.Errorf("expected OTHER for missing category, got %q", f.Category)
	}
}
