package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/finlake/financedocflow/internal/gcp"
	"github.com/finlake/financedocflow/internal/models"
	"golang.org/x/sync/errgroup"
)

// ReconcilerConfig holds configuration for the reconciliation sweep.
type ReconcilerConfig struct {
	ProjectID          string
	RegistryCollection string
	StaleAfter         time.Duration
}

// ReconcilerFunction sweeps the job registry for submitted jobs that never
// produced a result artifact. Extraction jobs are fire-and-forget, so this is
// the only place a silently failed job becomes visible.
type ReconcilerFunction struct {
	registry *JobRegistry
	config   ReconcilerConfig
}

// NewReconciler creates a new ReconcilerFunction instance.
func NewReconciler(ctx context.Context) (*ReconcilerFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	staleMinutes, err := strconv.Atoi(gcp.GetEnv("STALE_AFTER_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("STALE_AFTER_MINUTES must be an integer: %w", err)
	}

	config := ReconcilerConfig{
		ProjectID:          projectID,
		RegistryCollection: gcp.GetEnv("JOB_REGISTRY_COLLECTION", ""),
		StaleAfter:         time.Duration(staleMinutes) * time.Minute,
	}
	if config.RegistryCollection == "" {
		return nil, fmt.Errorf("JOB_REGISTRY_COLLECTION must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &ReconcilerFunction{
		registry: NewJobRegistry(firestoreClient, config.RegistryCollection),
		config:   config,
	}, nil
}

// Process runs one sweep and reports the jobs it marked stale.
func (f *ReconcilerFunction) Process(ctx context.Context) (*models.ReconcilerResponse, error) {
	now := time.Now()
	cutoff := now.Add(-f.config.StaleAfter)
	slog.Info("Starting reconciliation sweep.", "cutoff", cutoff)

	snapshots, err := f.registry.FindUnobserved(ctx, cutoff)
	if err != nil {
		slog.Error("Reconciliation query failed", "error", err)
		return nil, err
	}

	var mu sync.Mutex
	var stale []models.StaleJob

	eg, gctx := errgroup.WithContext(ctx)
	for _, snap := range snapshots {
		snap := snap
		eg.Go(func() error {
			var job models.ExtractionJob
			if err := snap.DataTo(&job); err != nil {
				return fmt.Errorf("registry entry %s: %w", snap.Ref.ID, err)
			}
			if job.Status == models.JobStatusStale {
				return nil // already reported by an earlier sweep
			}
			if err := f.registry.MarkStale(gctx, snap.Ref); err != nil {
				return err
			}
			slog.Warn("Extraction job produced no result.",
				"file", job.FileName,
				"operation", job.OperationName,
				"submittedAt", job.SubmittedAt,
			)
			mu.Lock()
			stale = append(stale, models.StaleJob{
				FileName:      job.FileName,
				OperationName: job.OperationName,
				SubmittedAt:   job.SubmittedAt.Format(time.RFC3339),
			})
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		slog.Error("Reconciliation sweep failed", "error", err)
		return nil, err
	}

	slog.Info("Reconciliation sweep complete.", "staleCount", len(stale))
	return &models.ReconcilerResponse{
		Status:     "success",
		CheckedAt:  now.Format(time.RFC3339),
		StaleCount: len(stale),
		StaleJobs:  stale,
	}, nil
}
