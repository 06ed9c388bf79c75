package domain

import (
	"crypto/md5"
	"fmt"
	"time"
)

// Amenity categories recognised by the proximity engine. Anything else maps
// to CategoryOther at import time and to the default marker style at render
// time.
const (
	CategoryMRTStation  = "MRT_STATION"
	CategorySchool      = "SCHOOL"
	CategoryClinic      = "CLINIC"
	CategorySupermarket = "SUPERMARKET"
	CategoryPark        = "PARK"
	CategoryOther       = "OTHER"
)

// AmenityCategories lists the recognised categories in display order.
var AmenityCategories = []string{
	CategoryMRTStation,
	CategorySchool,
	CategoryClinic,
	CategorySupermarket,
	CategoryPark,
	CategoryOther,
}

// UnnamedAmenity is the display name used when source data carries none.
const UnnamedAmenity = "Unnamed amenity"

// AmenityFeature is a point-of-interest loaded from a GeoJSON feature.
type AmenityFeature struct {
	ID         string         `json:"id,omitempty"`
	Category   string         `json:"category"`
	Name       string         `json:"name"`
	Location   GeoPoint       `json:"location"`
	Properties map[string]any `json:"properties,omitempty"`
	Distance   *float64       `json:"distance,omitempty"` // computed field, meters
	LoadedAt   time.Time      `json:"loaded_at,omitempty"`
}

// Key derives the stable dedup key for a feature: an md5 over category, name
// and the coordinates rounded to five decimal places. Re-importing the same
// source file therefore updates rows instead of duplicating them.
func (f AmenityFeature) Key() string {
	sum := md5.Sum(fmt.Appendf(nil, "%s|%s|%.5f|%.5f", f.Category, f.Name, f.Location.Lon, f.Location.Lat))
	return fmt.Sprintf("%x", sum)
}

// PositionedAmenity is an amenity with a display position that may be
// displaced from its true location so coincident markers do not overlap.
type PositionedAmenity struct {
	AmenityFeature
	Display GeoPoint      `json:"display"`
	Style   CategoryStyle `json:"style"`
}

// CategoryStyle describes how an amenity category is drawn on the map.
type CategoryStyle struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
	Label string `json:"label"`
}

// AmenityStats holds per-category amenity counts, optionally scoped to a town.
type AmenityStats struct {
	Town   string         `json:"town"`
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
}
