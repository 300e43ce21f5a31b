package models

// These structs define the JSON payloads for the HTTP-triggered reconciler.

// ReconcilerResponse is the output of the job-reconciler function.
type ReconcilerResponse struct {
	Status     string     `json:"status"`
	CheckedAt  string     `json:"checkedAt"`
	StaleCount int        `json:"staleCount"`
	StaleJobs  []StaleJob `json:"staleJobs,omitempty"`
}

// StaleJob describes one job with no observed result after the timeout.
type StaleJob struct {
	FileName      string `json:"fileName"`
	OperationName string `json:"operationName"`
	SubmittedAt   string `json:"submittedAt"`
}
