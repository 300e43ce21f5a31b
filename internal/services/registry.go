package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/finlake/financedocflow/internal/models"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// resultDirMarker separates the original file name from the shard path inside
// the output bucket, matching the dispatcher's output-prefix convention.
const resultDirMarker = "_results/"

// JobRegistry tracks submitted batch jobs in Firestore so jobs that never
// produce a result can be found later. All writes are best effort from the
// pipeline's perspective; callers log and continue on failure.
type JobRegistry struct {
	client     *firestore.Client
	collection string
}

// NewJobRegistry creates a registry backed by the given collection.
func NewJobRegistry(client *firestore.Client, collection string) *JobRegistry {
	return &JobRegistry{client: client, collection: collection}
}

// RecordSubmission stores one registry entry for a freshly submitted job.
func (r *JobRegistry) RecordSubmission(ctx context.Context, job models.ExtractionJob) error {
	docID := uuid.NewString()
	if _, err := r.client.Collection(r.collection).Doc(docID).Set(ctx, job); err != nil {
		return fmt.Errorf("failed to record job submission for %s: %w", job.FileName, err)
	}
	return nil
}

// MarkResultObserved flips the observed flag on the registry entry for the
// given input file. Sibling shards of the same job re-run this harmlessly.
func (r *JobRegistry) MarkResultObserved(ctx context.Context, fileName string) error {
	docs, err := r.client.Collection(r.collection).
		Where("fileName", "==", fileName).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("failed to query registry for %s: %w", fileName, err)
	}
	if len(docs) == 0 {
		// Nothing registered: the dispatcher ran with the registry disabled,
		// or the entry write failed. Not an error for the load path.
		return nil
	}

	updates := []firestore.Update{
		{Path: "resultObserved", Value: true},
		{Path: "observedAt", Value: time.Now()},
		{Path: "status", Value: models.JobStatusObserved},
	}
	if _, err := docs[0].Ref.Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to mark result observed for %s: %w", fileName, err)
	}
	return nil
}

// FindUnobserved returns jobs submitted before the cutoff that have produced
// no result artifact yet, paired with their document refs for later updates.
func (r *JobRegistry) FindUnobserved(ctx context.Context, cutoff time.Time) ([]*firestore.DocumentSnapshot, error) {
	it := r.client.Collection(r.collection).
		Where("resultObserved", "==", false).
		Where("submittedAt", "<", cutoff).
		Documents(ctx)

	var snapshots []*firestore.DocumentSnapshot
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list unobserved jobs: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// MarkStale tags a registry entry whose job produced no result in time.
func (r *JobRegistry) MarkStale(ctx context.Context, ref *firestore.DocumentRef) error {
	updates := []firestore.Update{
		{Path: "status", Value: models.JobStatusStale},
	}
	if _, err := ref.Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to mark job %s stale: %w", ref.ID, err)
	}
	return nil
}

// FileNameFromResultObject recovers the original input file name from a result
// shard's object path, e.g. "invoice.pdf_results/0/shard-0.json" -> "invoice.pdf".
// The second return is false for objects outside any result prefix.
func FileNameFromResultObject(objectName string) (string, bool) {
	idx := strings.Index(objectName, resultDirMarker)
	if idx < 0 {
		return "", false
	}
	return objectName[:idx], true
}
