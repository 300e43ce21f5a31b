package services

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/finlake/financedocflow/internal/models"
)

// BuildRecord assembles the dual-representation warehouse row: the golden
// columns from extraction plus the complete raw artifact as a JSON column.
// Missing golden columns are nulls, never errors; a raw artifact that cannot
// be parsed as JSON is fatal because the safety net would be broken.
func BuildRecord(fileName string, processedAt time.Time, fields ExtractedFields, rawArtifact []byte) (*models.ExtractedRecord, error) {
	var raw any
	if err := json.Unmarshal(rawArtifact, &raw); err != nil {
		return nil, fmt.Errorf("raw payload is not valid JSON: %w", err)
	}

	record := &models.ExtractedRecord{
		FileName:           fileName,
		ProcessedTimestamp: processedAt,
		ConfidenceScore:    fields.Confidence,
		RawData:            bigquery.NullJSON{JSONVal: string(rawArtifact), Valid: true},
	}
	if fields.InvoiceID != nil {
		record.InvoiceID = bigquery.NullString{StringVal: *fields.InvoiceID, Valid: true}
	}
	if fields.TotalAmount != nil {
		record.TotalAmount = bigquery.NullFloat64{Float64: *fields.TotalAmount, Valid: true}
	}
	if fields.VendorName != nil {
		record.VendorName = bigquery.NullString{StringVal: *fields.VendorName, Valid: true}
	}
	return record, nil
}
