package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/finlake/financedocflow/internal/gcp"
	"github.com/finlake/financedocflow/internal/models"
)

// DispatcherConfig holds configuration for the dispatcher service.
type DispatcherConfig struct {
	ProjectID          string
	Location           string
	ProcessorID        string
	OutputBucket       string // gs:// root under which result prefixes are created
	RegistryCollection string // empty disables the job registry
}

// DispatcherFunction holds dependencies for the stage-1 control flow: filter
// an inbound document and hand it to Document AI as an asynchronous batch job.
type DispatcherFunction struct {
	docaiClient *documentai.DocumentProcessorClient
	registry    *JobRegistry
	config      DispatcherConfig
}

// NewDispatcher creates a new DispatcherFunction instance.
func NewDispatcher(ctx context.Context) (*DispatcherFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	config := DispatcherConfig{
		ProjectID:          projectID,
		Location:           gcp.GetEnv("LOCATION", "us-central1"),
		ProcessorID:        gcp.GetEnv("PROCESSOR_ID", ""),
		OutputBucket:       gcp.GetEnv("OUTPUT_BUCKET", ""),
		RegistryCollection: gcp.GetEnv("JOB_REGISTRY_COLLECTION", ""),
	}
	if config.ProcessorID == "" || config.OutputBucket == "" {
		return nil, fmt.Errorf("PROCESSOR_ID and OUTPUT_BUCKET must be set")
	}

	docaiClient, err := gcp.NewDocumentAIClient(ctx, config.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Document AI client: %w", err)
	}

	var registry *JobRegistry
	if config.RegistryCollection != "" {
		firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to create Firestore client: %w", err)
		}
		registry = NewJobRegistry(firestoreClient, config.RegistryCollection)
	}

	slog.Info("Dispatcher initialized.", "processor", config.ProcessorID, "location", config.Location)
	return &DispatcherFunction{
		docaiClient: docaiClient,
		registry:    registry,
		config:      config,
	}, nil
}

// Process handles one inbound document event. It never waits for the batch
// job to finish: a job that fails downstream simply never produces a result
// event, and no record is loaded.
func (f *DispatcherFunction) Process(ctx context.Context, e models.GCSEvent) error {
	logCtx := slog.With("bucket", e.Bucket, "object", e.Name)

	mimeType := NormalizeContentType(e.ContentType)
	if !IsProcessableContentType(mimeType) {
		logCtx.Info("Skipping non-document file.", "contentType", mimeType)
		return nil
	}

	req := buildBatchRequest(f.config, e.Bucket, e.Name, mimeType)
	op, err := f.docaiClient.BatchProcessDocuments(ctx, req)
	if err != nil {
		logCtx.Error("Failed to submit batch extraction job", "error", err)
		return fmt.Errorf("failed to submit batch job for %s: %w", e.Name, err)
	}

	// Fire-and-forget: the operation handle is logged for traceability and
	// dropped. Completion is observed, if at all, as a result event in stage 2.
	logCtx.Info("Batch extraction job submitted.", "operation", op.Name())

	if f.registry != nil {
		job := models.ExtractionJob{
			FileName:      e.Name,
			InputURI:      req.GetInputDocuments().GetGcsDocuments().GetDocuments()[0].GetGcsUri(),
			OperationName: op.Name(),
			Status:        models.JobStatusSubmitted,
			SubmittedAt:   time.Now(),
		}
		if err := f.registry.RecordSubmission(ctx, job); err != nil {
			// Registry writes are best effort; the job is already running.
			logCtx.Warn("Failed to record job in registry", "error", err)
		}
	}
	return nil
}

// buildBatchRequest constructs the single-document batch request. The output
// prefix is derived from the input object name so each job's shards land in
// their own directory and never collide with another job's.
func buildBatchRequest(cfg DispatcherConfig, bucket, name, mimeType string) *documentaipb.BatchProcessRequest {
	inputURI := fmt.Sprintf("gs://%s/%s", bucket, name)
	outputPrefix := fmt.Sprintf("%s/%s_results/", cfg.OutputBucket, name)

	return &documentaipb.BatchProcessRequest{
		Name: gcp.ProcessorPath(cfg.ProjectID, cfg.Location, cfg.ProcessorID),
		InputDocuments: &documentaipb.BatchDocumentsInputConfig{
			Source: &documentaipb.BatchDocumentsInputConfig_GcsDocuments{
				GcsDocuments: &documentaipb.GcsDocuments{
					Documents: []*documentaipb.GcsDocument{
						{GcsUri: inputURI, MimeType: mimeType},
					},
				},
			},
		},
		DocumentOutputConfig: &documentaipb.DocumentOutputConfig{
			Destination: &documentaipb.DocumentOutputConfig_GcsOutputConfig_{
				GcsOutputConfig: &documentaipb.DocumentOutputConfig_GcsOutputConfig{
					GcsUri: outputPrefix,
				},
			},
		},
		// Leave human review on so HITL applies when configured on the processor.
		SkipHumanReview: false,
	}
}
