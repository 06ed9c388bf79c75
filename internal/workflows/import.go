package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ImportInput is the input for the amenity import workflow.
type ImportInput struct {
	BatchID  string
	Category string
	Features []map[string]any
}

// ImportResult summarises a completed import.
type ImportResult struct {
	BatchID  string
	Imported int
	Skipped  int
}

// ImportAmenitiesWorkflow orchestrates sanitising a GeoJSON batch, persisting it,
// verifying row counts, and announcing the import. If verification fails the
// batch is deleted (saga compensation).
func ImportAmenitiesWorkflow(ctx workflow.Context, input ImportInput) (*ImportResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting amenity import workflow", "batchID", input.BatchID, "features", len(input.Features))

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: Sanitise raw GeoJSON into amenity features
	var sanitised SanitisedBatch
	err := workflow.ExecuteActivity(ctx, "SanitiseBatch", input).Get(ctx, &sanitised)
	if err != nil {
		return nil, err
	}

	// Step 2: Persist the batch
	var persisted int
	err = workflow.ExecuteActivity(ctx, "PersistBatch", sanitised).Get(ctx, &persisted)
	if err != nil {
		return nil, err
	}

	// Step 3: Verify the stored row count matches what we persisted
	err = workflow.ExecuteActivity(ctx, "VerifyBatch", input.BatchID, persisted).Get(ctx, nil)
	if err != nil {
		logger.Warn("batch verification failed, rolling back", "batchID", input.BatchID, "error", err)
		// Compensate: delete the partial batch
		_ = workflow.ExecuteActivity(ctx, "RollbackBatch", input.BatchID).Get(ctx, nil)
		return nil, err
	}

	// Step 4: Announce the import
	err = workflow.ExecuteActivity(ctx, "AnnounceImport", input.BatchID, persisted).Get(ctx, nil)
	if err != nil {
		// The data is already durable; announcement failure is not fatal.
		logger.Warn("import announcement failed", "batchID", input.BatchID, "error", err)
	}

	logger.Info("Amenity import completed", "batchID", input.BatchID, "imported", persisted, "skipped", sanitised.Skipped)
	return &ImportResult{
		BatchID:  input.BatchID,
		Imported: persisted,
		Skipped:  sanitised.Skipped,
	}, nil
}
