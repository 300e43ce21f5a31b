package models

import "time"

// Job registry statuses.
const (
	JobStatusSubmitted = "SUBMITTED"
	JobStatusObserved  = "OBSERVED"
	JobStatusStale     = "STALE"
)

// ExtractionJob is the Firestore registry record for one submitted batch job.
// The dispatcher writes it at submission time; the loader flips ResultObserved
// when the first matching result shard arrives; the reconciler marks jobs with
// no observed result after a timeout as stale.
type ExtractionJob struct {
	FileName       string    `firestore:"fileName,omitempty"`
	InputURI       string    `firestore:"inputUri,omitempty"`
	OperationName  string    `firestore:"operationName,omitempty"`
	Status         string    `firestore:"status,omitempty"`
	SubmittedAt    time.Time `firestore:"submittedAt,omitempty"`
	ResultObserved bool      `firestore:"resultObserved"`
	ObservedAt     time.Time `firestore:"observedAt,omitempty"`
}
