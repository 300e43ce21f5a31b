package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/finlake/financedocflow/internal/gcp"
	"github.com/finlake/financedocflow/internal/models"
)

// LoaderConfig holds configuration for the loader service.
type LoaderConfig struct {
	ProjectID          string
	DatasetID          string
	TableID            string
	DeadLetterBucket   string // empty disables the dead-letter sink
	RegistryCollection string // empty disables the job registry
}

// rowInserter is the slice of *bigquery.Inserter the loader needs.
type rowInserter interface {
	Put(ctx context.Context, src any) error
}

// LoaderFunction holds dependencies for the stage-2 control flow: consume one
// extraction result shard and append the dual-representation row.
type LoaderFunction struct {
	storageClient *storage.Client
	inserter      rowInserter
	registry      *JobRegistry
	config        LoaderConfig
}

// NewLoader creates a new LoaderFunction instance.
func NewLoader(ctx context.Context) (*LoaderFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	config := LoaderConfig{
		ProjectID:          projectID,
		DatasetID:          gcp.GetEnv("DATASET_ID", "data_lake"),
		TableID:            gcp.GetEnv("TABLE_ID", "finance_docs"),
		DeadLetterBucket:   gcp.GetEnv("DEAD_LETTER_BUCKET", ""),
		RegistryCollection: gcp.GetEnv("JOB_REGISTRY_COLLECTION", ""),
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	bqClient, err := gcp.NewBigQueryClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}

	var registry *JobRegistry
	if config.RegistryCollection != "" {
		firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to create Firestore client: %w", err)
		}
		registry = NewJobRegistry(firestoreClient, config.RegistryCollection)
	}

	slog.Info("Loader initialized.", "dataset", config.DatasetID, "table", config.TableID)
	return &LoaderFunction{
		storageClient: storageClient,
		inserter:      bqClient.Dataset(config.DatasetID).Table(config.TableID).Inserter(),
		registry:      registry,
		config:        config,
	}, nil
}

// Process handles one result-artifact event. Non-result artifacts are a silent
// no-op. A shard that fails to deserialize is fatal for that shard; a row the
// warehouse rejects is logged and dead-lettered, but the invocation succeeds.
func (f *LoaderFunction) Process(ctx context.Context, e models.GCSEvent) error {
	if !IsResultArtifact(e.Name) {
		slog.Debug("Ignoring non-result artifact.", "object", e.Name)
		return nil
	}

	logCtx := slog.With("bucket", e.Bucket, "object", e.Name)
	logCtx.Info("Processing result artifact.")

	content, err := gcp.DownloadObject(ctx, f.storageClient, e.Bucket, e.Name)
	if err != nil {
		logCtx.Error("Failed to download result artifact", "error", err)
		return err
	}

	doc, err := models.ParseStructuredDocument(content)
	if err != nil {
		// No record can be produced without a parseable payload.
		logCtx.Error("Result artifact is not a valid structured document", "error", err)
		return err
	}

	fields, quality := ExtractFields(doc)
	for _, qerr := range quality {
		logCtx.Warn("Data quality issue during extraction", "error", qerr)
	}

	record, err := BuildRecord(e.Name, time.Now(), fields, content)
	if err != nil {
		logCtx.Error("Failed to build warehouse record", "error", err)
		return err
	}

	if err := f.inserter.Put(ctx, record.Saver()); err != nil {
		var rowErrs bigquery.PutMultiError
		if errors.As(err, &rowErrs) {
			// Row-level rejection (schema mismatch, oversized row). The event
			// must not be redelivered for this, so the invocation still succeeds
			// after the rejected row is captured for replay.
			f.handleRejectedRow(ctx, logCtx, e.Name, record, rowErrs)
			return nil
		}
		logCtx.Error("Failed to insert into warehouse", "error", err)
		return fmt.Errorf("warehouse insert for %s: %w", e.Name, err)
	}

	logCtx.Info("Record loaded with raw safety net.", "confidence", record.ConfidenceScore)
	f.markJobObserved(ctx, logCtx, e.Name)
	return nil
}

// handleRejectedRow logs each per-row error and writes the rejected row
// verbatim to the dead-letter bucket for offline replay.
func (f *LoaderFunction) handleRejectedRow(ctx context.Context, logCtx *slog.Logger, objectName string, record *models.ExtractedRecord, rowErrs bigquery.PutMultiError) {
	for _, rowErr := range rowErrs {
		logCtx.Error("Warehouse rejected row", "rowIndex", rowErr.RowIndex, "errors", rowErr.Errors)
	}

	if f.config.DeadLetterBucket == "" {
		logCtx.Warn("No dead-letter bucket configured, rejected row is lost.")
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		logCtx.Error("Failed to serialize rejected row for dead-letter", "error", err)
		return
	}

	deadLetterObject := objectName + ".rejected"
	bucket := f.storageClient.Bucket(f.config.DeadLetterBucket)
	if err := gcp.SaveToGCSAtomically(ctx, bucket, deadLetterObject, payload); err != nil {
		logCtx.Error("Failed to write rejected row to dead-letter bucket", "error", err)
		return
	}
	logCtx.Info("Rejected row captured for replay.", "deadLetterObject", deadLetterObject)
}

// markJobObserved updates the job registry for the shard's originating job.
// Best effort: the row is already durable, so registry failures only warn.
func (f *LoaderFunction) markJobObserved(ctx context.Context, logCtx *slog.Logger, objectName string) {
	if f.registry == nil {
		return
	}
	fileName, ok := FileNameFromResultObject(objectName)
	if !ok {
		logCtx.Warn("Result object outside any job prefix, registry not updated.")
		return
	}
	if err := f.registry.MarkResultObserved(ctx, fileName); err != nil {
		logCtx.Warn("Failed to update job registry", "error", err)
	}
}
