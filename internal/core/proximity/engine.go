// Package proximity implements the pure geospatial core of the amenity
// search: radius filtering, marker de-collision for coincident features, and
// category styling. It performs no I/O; the amenity set is injected by the
// caller on every call and observed as a single consistent snapshot.
package proximity

import (
	"fmt"
	"math"
	"strings"

	"github.com/greggyneo/homefinder/internal/core/domain"
	"github.com/greggyneo/homefinder/internal/pkg/geospatial"
)

const (
	// Duplicate markers are fanned out on a circle of this radius, one every
	// 60 degrees. 18 m keeps pins visually separate at street-level zoom.
	displaceRadiusMeters = 18.0
	displaceStepRadians  = math.Pi / 3

	// Coordinates are grouped at 6 decimal places (~0.11 m) to detect
	// features sitting on the same spot.
	coordPrecision = 1e6
)

// Nearby returns the features within radiusMeters of center, inclusive of
// the boundary. Result order is the stable input enumeration order; no sort
// by distance is applied. An empty feature set yields an empty result, not
// an error. Each returned feature carries its computed distance.
func Nearby(center domain.GeoPoint, radiusMeters float64, features []domain.AmenityFeature) []domain.AmenityFeature {
	out := make([]domain.AmenityFeature, 0, len(features))
	for _, f := range features {
		if !finitePoint(f.Location) {
			continue
		}
		d := geospatial.Haversine(center.Lat, center.Lon, f.Location.Lat, f.Location.Lon)
		if d <= radiusMeters {
			f.Distance = &d
			out = append(out, f)
		}
	}
	return out
}

// LayoutForDisplay assigns each feature a display position. The first
// feature at a rounded coordinate keeps its true position; the k-th
// duplicate (k >= 2) is displaced 18 m from it at angle (k-1)*60 degrees.
// Features with non-finite coordinates are silently dropped, so the output
// is a filtered subset: one entry per well-formed input feature, in input
// order. The layout is deterministic for a given input sequence.
func LayoutForDisplay(features []domain.AmenityFeature) []domain.PositionedAmenity {
	out := make([]domain.PositionedAmenity, 0, len(features))
	seen := make(map[[2]int64]int, len(features))

	for _, f := range features {
		if !finitePoint(f.Location) {
			continue
		}
		if f.Name == "" {
			f.Name = domain.UnnamedAmenity
		}

		key := roundedKey(f.Location)
		occurrence := seen[key]
		seen[key] = occurrence + 1

		display := f.Location
		if occurrence > 0 {
			angle := float64(occurrence-1) * displaceStepRadians
			dLat := displaceRadiusMeters * math.Sin(angle) / geospatial.MetersPerDegreeLat
			dLon := displaceRadiusMeters * math.Cos(angle) / geospatial.MetersPerDegreeLon(f.Location.Lat)
			display = domain.GeoPoint{Lat: f.Location.Lat + dLat, Lon: f.Location.Lon + dLon}
		}

		out = append(out, domain.PositionedAmenity{
			AmenityFeature: f,
			Display:        display,
			Style:          StyleFor(f.Category),
		})
	}
	return out
}

var categoryStyles = map[string]domain.CategoryStyle{
	domain.CategoryMRTStation:  {Icon: "rail", Color: "#d42e12", Label: "MRT station"},
	domain.CategorySchool:      {Icon: "school", Color: "#1d6fb8", Label: "School"},
	domain.CategoryClinic:      {Icon: "cross", Color: "#2e8b57", Label: "Clinic"},
	domain.CategorySupermarket: {Icon: "cart", Color: "#e8871e", Label: "Supermarket"},
	domain.CategoryPark:        {Icon: "tree", Color: "#3c9d4e", Label: "Park"},
}

var defaultStyle = domain.CategoryStyle{Icon: "pin", Color: "#6b7280", Label: "Amenity"}

// StyleFor maps a category to its marker style. Lookup is case-insensitive
// and total: unknown or empty categories get the default style.
func StyleFor(category string) domain.CategoryStyle {
	if s, ok := categoryStyles[strings.ToUpper(strings.TrimSpace(category))]; ok {
		return s
	}
	return defaultStyle
}

func finitePoint(p domain.GeoPoint) bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lon) && !math.IsInf(p.Lon, 0)
}

func roundedKey(p domain.GeoPoint) [2]int64 {
	return [2]int64{
		int64(math.Round(p.Lat * coordPrecision)),
		int64(math.Round(p.Lon * coordPrecision)),
	}
}

// FeatureFromGeoJSON converts one GeoJSON feature into an AmenityFeature.
// Non-Point geometries and malformed coordinate pairs return an error so
// importers can count what they skip; proximity callers drop them silently.
func FeatureFromGeoJSON(raw map[string]any) (domain.AmenityFeature, error) {
	geom, _ := raw["geometry"].(map[string]any)
	if gt, _ := geom["type"].(string); gt != "Point" {
		return domain.AmenityFeature{}, fmt.Errorf("geometry is not a Point")
	}

	coords, _ := geom["coordinates"].([]any)
	if len(coords) < 2 {
		return domain.AmenityFeature{}, fmt.Errorf("coordinates must have two elements")
	}
	lon, okLon := asFloat(coords[0])
	lat, okLat := asFloat(coords[1])
	if !okLon || !okLat {
		return domain.AmenityFeature{}, fmt.Errorf("coordinates are not finite numbers")
	}

	props, _ := raw["properties"].(map[string]any)
	f := domain.AmenityFeature{
		Category:   detectCategory(props),
		Name:       detectName(props),
		Location:   domain.GeoPoint{Lat: lat, Lon: lon},
		Properties: props,
	}
	if !finitePoint(f.Location) {
		return domain.AmenityFeature{}, fmt.Errorf("coordinates are not finite numbers")
	}
	return f, nil
}

func detectCategory(props map[string]any) string {
	for _, k := range []string{"amenity_type", "CLASS", "class"} {
		if v, ok := props[k].(string); ok && v != "" {
			return strings.ToUpper(strings.TrimSpace(v))
		}
	}
	return domain.CategoryOther
}

func detectName(props map[string]any) string {
	for _, k := range []string{"name", "Name", "NAME", "STN_NAME", "HCI_NAME", "FACILITY"} {
		if v, ok := props[k].(string); ok && v != "" {
			return v
		}
	}
	return domain.UnnamedAmenity
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
