package models

import (
	"time"

	"cloud.google.com/go/bigquery"
)

// ExtractedRecord is one row of the warehouse table. The golden columns are
// nullable: a document where no recognized entity was found still produces a
// row, because RawData always carries the complete extraction result as the
// safety net for later remapping.
type ExtractedRecord struct {
	FileName           string               `bigquery:"file_name"`
	ProcessedTimestamp time.Time            `bigquery:"processed_timestamp"`
	InvoiceID          bigquery.NullString  `bigquery:"invoice_id"`
	TotalAmount        bigquery.NullFloat64 `bigquery:"total_amount"`
	VendorName         bigquery.NullString  `bigquery:"vendor_name"`
	ConfidenceScore    float64              `bigquery:"confidence_score"`
	RawData            bigquery.NullJSON    `bigquery:"raw_data"`
}

// Saver wraps the record for streaming insertion. The insert ID is derived
// from the result object name, so a redelivered event replays with the same ID
// and BigQuery's best-effort dedup suppresses the duplicate row.
func (r *ExtractedRecord) Saver() *bigquery.StructSaver {
	return &bigquery.StructSaver{
		Struct:   r,
		InsertID: r.FileName,
	}
}
