package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRecordAllFieldsNull(t *testing.T) {
	raw := []byte(`{"text":"hello","entities":[]}`)
	now := time.Now()

	record, err := BuildRecord("doc.pdf_results/0/shard-0.json", now, ExtractedFields{}, raw)
	require.NoError(t, err)

	assert.Equal(t, "doc.pdf_results/0/shard-0.json", record.FileName)
	assert.Equal(t, now, record.ProcessedTimestamp)
	assert.False(t, record.InvoiceID.Valid)
	assert.False(t, record.TotalAmount.Valid)
	assert.False(t, record.VendorName.Valid)
	assert.Zero(t, record.ConfidenceScore)
	// The raw payload is mandatory even when every typed field is null.
	assert.True(t, record.RawData.Valid)
}

func TestBuildRecordTypedFields(t *testing.T) {
	invoiceID := "INV-42"
	amount := 1234.56
	vendor := "Acme Co"
	fields := ExtractedFields{
		InvoiceID:   &invoiceID,
		TotalAmount: &amount,
		VendorName:  &vendor,
		Confidence:  0.85,
	}

	record, err := BuildRecord("shard.json", time.Now(), fields, []byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, "INV-42", record.InvoiceID.StringVal)
	assert.True(t, record.InvoiceID.Valid)
	assert.Equal(t, 1234.56, record.TotalAmount.Float64)
	assert.True(t, record.TotalAmount.Valid)
	assert.Equal(t, "Acme Co", record.VendorName.StringVal)
	assert.True(t, record.VendorName.Valid)
	assert.Equal(t, 0.85, record.ConfidenceScore)
}

func TestBuildRecordRawPayloadRoundTrip(t *testing.T) {
	raw := []byte(`{
		"text": "Invoice INV-42 from Acme Co",
		"entities": [
			{"type": "invoice_id", "mentionText": "INV-42", "confidence": 0.9},
			{"type": "exotic_label", "mentionText": "whatever", "confidence": 0.1}
		],
		"pages": [{"pageNumber": 1, "dimension": {"width": 612, "height": 792}}]
	}`)

	record, err := BuildRecord("shard.json", time.Now(), ExtractedFields{}, raw)
	require.NoError(t, err)

	// The safety net must reproduce the original structure exactly,
	// independent of what the typed columns captured.
	reencoded, err := json.Marshal(record.RawData.JSONVal)
	require.NoError(t, err)

	var original, roundTripped any
	require.NoError(t, json.Unmarshal(raw, &original))
	require.NoError(t, json.Unmarshal(reencoded, &roundTripped))
	assert.Equal(t, original, roundTripped)
}

func TestBuildRecordInvalidRawPayload(t *testing.T) {
	_, err := BuildRecord("shard.json", time.Now(), ExtractedFields{}, []byte("not json"))
	assert.Error(t, err)
}

func TestRecordSaverInsertID(t *testing.T) {
	record, err := BuildRecord("doc.pdf_results/0/shard-0.json", time.Now(), ExtractedFields{}, []byte(`{}`))
	require.NoError(t, err)

	// Redelivery of the same result event must replay with the same insert ID
	// so the warehouse can suppress the duplicate.
	saver := record.Saver()
	assert.Equal(t, "doc.pdf_results/0/shard-0.json", saver.InsertID)
	assert.Same(t, record, saver.Struct)
}
