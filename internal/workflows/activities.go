package workflows

import (
	"context"
	"fmt"
	"log"

	"github.com/greggyneo/homefinder/internal/core/domain"
	"github.com/greggyneo/homefinder/internal/core/ports"
	"github.com/greggyneo/homefinder/internal/core/usecases"
)

// SanitisedBatch carries the cleaned features between activities.
type SanitisedBatch struct {
	BatchID  string
	Features []domain.AmenityFeature
	Skipped  int
}

// ImportActivities holds the activity implementations for the import workflow.
type ImportActivities struct {
	Amenities ports.AmenityRepository
	Events    ports.EventPublisher
	Cache     ports.CacheService
}

// SanitiseBatch converts raw GeoJSON features into amenity rows, dropping
// malformed geometry.
func (a *ImportActivities) SanitiseBatch(ctx context.Context, input ImportInput) (*SanitisedBatch, error) {
	features, skipped := usecases.SanitiseFeatures(input.BatchID, input.Category, input.Features)
	if len(features) == 0 {
		return nil, fmt.Errorf("batch %s: no valid features among %d", input.BatchID, len(input.Features))
	}
	return &SanitisedBatch{BatchID: input.BatchID, Features: features, Skipped: skipped}, nil
}

// PersistBatch upserts the sanitised features and returns the row count.
func (a *ImportActivities) PersistBatch(ctx context.Context, batch SanitisedBatch) (int, error) {
	n, err := a.Amenities.UpsertBatch(ctx, batch.Features)
	if err != nil {
		return 0, fmt.Errorf("upsert batch %s: %w", batch.BatchID, err)
	}
	return n, nil
}

// VerifyBatch checks that the stored row count matches the persisted count.
// Upserts may legitimately fold duplicates into existing rows, so the check
// only fails when the batch is entirely absent.
func (a *ImportActivities) VerifyBatch(ctx context.Context, batchID string, expected int) error {
	stored, err := a.Amenities.CountBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("count batch %s: %w", batchID, err)
	}
	if stored == 0 && expected > 0 {
		return fmt.Errorf("batch %s: expected %d rows, found none", batchID, expected)
	}
	return nil
}

// AnnounceImport invalidates cached amenity data and publishes the import event.
func (a *ImportActivities) AnnounceImport(ctx context.Context, batchID string, count int) error {
	if a.Cache != nil {
		_ = a.Cache.Delete(ctx, "amenities:all")
	}
	if a.Events == nil {
		log.Printf("IMPORT (no publisher) → batch=%s count=%d", batchID, count)
		return nil
	}
	return a.Events.PublishAmenitiesImported(ctx, batchID, count)
}

// RollbackBatch removes a batch (saga compensation / rollback).
func (a *ImportActivities) RollbackBatch(ctx context.Context, batchID string) error {
	if err := a.Amenities.DeleteBatch(ctx, batchID); err != nil {
		return fmt.Errorf("delete batch %s: %w", batchID, err)
	}
	log.Printf("Batch %s deleted (saga compensation)", batchID)
	return nil
}
