package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	natsadapter "github.com/greggyneo/homefinder/internal/adapters/nats"
	"github.com/greggyneo/homefinder/internal/adapters/postgres"
	"github.com/greggyneo/homefinder/internal/core/usecases"
	"github.com/greggyneo/homefinder/internal/pkg/config"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

type Manifest struct {
	Source   string         `json:"source"`
	Datasets []DatasetEntry `json:"datasets"`
}

type DatasetEntry struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`               // "resale_csv" | "property_csv" | "amenities_geojson"
	URL      string `json:"url,omitempty"`      // remote source
	Path     string `json:"path,omitempty"`     // local file, takes precedence
	Category string `json:"category,omitempty"` // amenity category for geojson datasets
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("homefinder-importer")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	db, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns))
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	amenityRepo := postgres.NewAmenityRepo(db)

	// NATS is optional for one-off imports
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Printf("nats unavailable, skipping refresh events: %v", err)
		pub = nil
	} else {
		defer pub.Close()
	}

	// Load manifest
	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	log.Printf("HomeFinder Importer — %d datasets from %s", len(manifest.Datasets), manifest.Source)

	// Filter datasets (optional CLI arg: name list)
	nameFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			nameFilter[strings.TrimSpace(s)] = true
		}
	}

	client := &http.Client{Timeout: 120 * time.Second}

	var wg sync.WaitGroup
	sem := make(chan struct{}, 4) // max 4 concurrent downloads

	for _, dataset := range manifest.Datasets {
		if len(nameFilter) > 0 && !nameFilter[dataset.Name] {
			continue
		}

		wg.Add(1)
		go func(d DatasetEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ingestDataset(ctx, pool, amenityRepo, pub, client, d); err != nil {
				log.Printf("ERROR [%s]: %v", d.Name, err)
			}
		}(dataset)
	}

	wg.Wait()
	log.Println("import complete")
}

func ingestDataset(ctx context.Context, pool *pgxpool.Pool, amenities *postgres.AmenityRepo, pub *natsadapter.Publisher, client *http.Client, d DatasetEntry) error {
	body, err := fetchDataset(client, d)
	if err != nil {
		return err
	}
	defer body.Close()

	switch d.Kind {
	case "resale_csv":
		n, err := ingestResaleCSV(ctx, pool, body, d.Name)
		if err != nil {
			return err
		}
		log.Printf("[%s] resale transactions: %d", d.Name, n)
		if pub != nil && n > 0 {
			_ = pub.PublishDatasetRefresh(ctx, "resale_flat_prices")
		}
	case "property_csv":
		n, err := ingestPropertyCSV(ctx, pool, body, d.Name)
		if err != nil {
			return err
		}
		log.Printf("[%s] property records: %d", d.Name, n)
		if pub != nil && n > 0 {
			_ = pub.PublishDatasetRefresh(ctx, "hdb_property_information")
		}
	case "amenities_geojson":
		n, skipped, batchID, err := ingestAmenityGeoJSON(ctx, amenities, body, d.Category)
		if err != nil {
			return err
		}
		log.Printf("[%s] amenities: %d imported, %d skipped (batch %s)", d.Name, n, skipped, batchID)
		if pub != nil && n > 0 {
			_ = pub.PublishAmenitiesImported(ctx, batchID, n)
		}
	default:
		return fmt.Errorf("unknown dataset kind %q", d.Kind)
	}

	return nil
}

func fetchDataset(client *http.Client, d DatasetEntry) (io.ReadCloser, error) {
	if d.Path != "" {
		f, err := os.Open(d.Path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", d.Path, err)
		}
		return f, nil
	}

	log.Printf("[%s] downloading %s", d.Name, d.URL)
	resp, err := client.Get(d.URL)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, d.URL)
	}
	return resp.Body, nil
}

// ---------------------------------------------------------------------------
// Resale transactions CSV
// ---------------------------------------------------------------------------

func ingestResaleCSV(ctx context.Context, pool *pgxpool.Pool, r io.Reader, name string) (int, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	header, err := reader.Read()
	if err != nil {
		return 0, err
	}
	cols := indexColumns(header)

	const batchSize = 1000
	batch := &pgx.Batch{}
	count := 0
	total := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		month := getField(record, cols, "month")
		town := strings.ToUpper(getField(record, cols, "town"))
		flatType := strings.ToUpper(getField(record, cols, "flat_type"))
		block := getField(record, cols, "block")
		street := strings.ToUpper(getField(record, cols, "street_name"))
		storey := getField(record, cols, "storey_range")
		floorArea, _ := strconv.ParseFloat(getField(record, cols, "floor_area_sqm"), 64)
		flatModel := getField(record, cols, "flat_model")
		leaseStart, _ := strconv.Atoi(getField(record, cols, "lease_commence_date"))
		remainingLease := getField(record, cols, "remaining_lease")
		price, _ := strconv.ParseFloat(getField(record, cols, "resale_price"), 64)

		if month == "" || town == "" || floorArea <= 0 || price <= 0 {
			continue
		}

		batch.Queue(`
			INSERT INTO resale_flat_prices
				(month, town, flat_type, block, street_name, storey_range,
				 floor_area_sqm, flat_model, lease_commence_date, remaining_lease, resale_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT DO NOTHING
		`, month, town, flatType, block, street, storey,
			floorArea, flatModel, leaseStart, nilEmpty(remainingLease), price)

		count++
		total++

		if count >= batchSize {
			if err := flushBatch(ctx, pool, batch, count); err != nil {
				log.Printf("[%s] batch error (continuing): %v", name, err)
			}
			batch = &pgx.Batch{}
			count = 0
		}
	}

	if count > 0 {
		if err := flushBatch(ctx, pool, batch, count); err != nil {
			log.Printf("[%s] final batch error: %v", name, err)
		}
	}

	return total, nil
}

// ---------------------------------------------------------------------------
// HDB property information CSV
// ---------------------------------------------------------------------------

func ingestPropertyCSV(ctx context.Context, pool *pgxpool.Pool, r io.Reader, name string) (int, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	header, err := reader.Read()
	if err != nil {
		return 0, err
	}
	cols := indexColumns(header)

	const batchSize = 1000
	batch := &pgx.Batch{}
	count := 0
	total := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		block := getField(record, cols, "blk_no")
		street := strings.ToUpper(getField(record, cols, "street"))
		yearCompleted, _ := strconv.Atoi(getField(record, cols, "year_completed"))
		dwellings, _ := strconv.Atoi(getField(record, cols, "total_dwelling_units"))
		maxFloor, _ := strconv.Atoi(getField(record, cols, "max_floor_lvl"))

		if block == "" || street == "" {
			continue
		}

		batch.Queue(`
			INSERT INTO hdb_property_information
				(block, street_name, year_completed, total_dwelling_units, max_floor_level)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (block, street_name) DO UPDATE
			SET year_completed = EXCLUDED.year_completed,
			    total_dwelling_units = EXCLUDED.total_dwelling_units,
			    max_floor_level = EXCLUDED.max_floor_level
		`, block, street, nilZero(yearCompleted), nilZero(dwellings), nilZero(maxFloor))

		count++
		total++

		if count >= batchSize {
			if err := flushBatch(ctx, pool, batch, count); err != nil {
				return total, err
			}
			batch = &pgx.Batch{}
			count = 0
		}
	}

	if count > 0 {
		if err := flushBatch(ctx, pool, batch, count); err != nil {
			return total, err
		}
	}

	return total, nil
}

// ---------------------------------------------------------------------------
// Amenity GeoJSON
// ---------------------------------------------------------------------------

func ingestAmenityGeoJSON(ctx context.Context, amenities *postgres.AmenityRepo, r io.Reader, category string) (int, int, string, error) {
	var collection struct {
		Type     string           `json:"type"`
		Features []map[string]any `json:"features"`
	}
	if err := json.NewDecoder(r).Decode(&collection); err != nil {
		return 0, 0, "", fmt.Errorf("parse geojson: %w", err)
	}
	if collection.Type != "FeatureCollection" {
		return 0, 0, "", fmt.Errorf("expected FeatureCollection, got %q", collection.Type)
	}

	batchID := uuid.NewString()
	features, skipped := usecases.SanitiseFeatures(batchID, category, collection.Features)
	if len(features) == 0 {
		return 0, skipped, batchID, fmt.Errorf("no valid features among %d", len(collection.Features))
	}

	n, err := amenities.UpsertBatch(ctx, features)
	if err != nil {
		return 0, skipped, batchID, fmt.Errorf("upsert: %w", err)
	}
	return n, skipped, batchID, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[strings.TrimSpace(col)] = i
	}
	return m
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func nilEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nilZero(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

func flushBatch(ctx context.Context, pool *pgxpool.Pool, batch *pgx.Batch, count int) error {
	br := pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < count; i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch item %d: %w", i, err)
		}
	}
	return nil
}
