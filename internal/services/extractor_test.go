package services

import (
	"testing"

	"github.com/finlake/financedocflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		mention string
		want    float64
		wantErr bool
	}{
		{"dollar with thousands separator", "$1,234.56", 1234.56, false},
		{"plain number", "42.50", 42.50, false},
		{"leading whitespace", " $99.00", 99.00, false},
		{"millions", "$1,000,000", 1000000, false},
		{"words", "twelve dollars", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.mention)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFieldsEmptyDocument(t *testing.T) {
	fields, quality := ExtractFields(&models.StructuredDocument{})

	assert.Zero(t, fields.Confidence)
	assert.Nil(t, fields.InvoiceID)
	assert.Nil(t, fields.TotalAmount)
	assert.Nil(t, fields.VendorName)
	assert.Empty(t, quality)
}

func TestExtractFieldsGoldenColumns(t *testing.T) {
	doc := &models.StructuredDocument{
		Entities: []models.Entity{
			{Type: "invoice_id", MentionText: "INV-42", Confidence: 0.9},
			{Type: "supplier_name", MentionText: "Acme Co", Confidence: 0.7},
		},
	}

	fields, quality := ExtractFields(doc)

	require.NotNil(t, fields.InvoiceID)
	assert.Equal(t, "INV-42", *fields.InvoiceID)
	require.NotNil(t, fields.VendorName)
	assert.Equal(t, "Acme Co", *fields.VendorName)
	assert.Nil(t, fields.TotalAmount)
	assert.InDelta(t, 0.8, fields.Confidence, 1e-9)
	assert.Empty(t, quality)
}

func TestExtractFieldsTotalAmount(t *testing.T) {
	doc := &models.StructuredDocument{
		Entities: []models.Entity{
			{Type: "total_amount", MentionText: "$1,234.56", Confidence: 0.95},
		},
	}

	fields, quality := ExtractFields(doc)

	require.NotNil(t, fields.TotalAmount)
	assert.Equal(t, 1234.56, *fields.TotalAmount)
	assert.Empty(t, quality)
}

func TestExtractFieldsUnknownTypesFeedConfidenceOnly(t *testing.T) {
	doc := &models.StructuredDocument{
		Entities: []models.Entity{
			{Type: "invoice_id", MentionText: "INV-1", Confidence: 1.0},
			{Type: "due_date", MentionText: "2026-01-01", Confidence: 0.5},
			{Type: "line_item", MentionText: "widgets", Confidence: 0.5},
		},
	}

	fields, quality := ExtractFields(doc)

	require.NotNil(t, fields.InvoiceID)
	assert.Nil(t, fields.TotalAmount)
	assert.Nil(t, fields.VendorName)
	// All three entities count toward the mean, recognized or not.
	assert.InDelta(t, 2.0/3.0, fields.Confidence, 1e-9)
	assert.Empty(t, quality)
}

func TestExtractFieldsLastSeenWins(t *testing.T) {
	doc := &models.StructuredDocument{
		Entities: []models.Entity{
			{Type: "invoice_id", MentionText: "INV-1", Confidence: 0.4},
			{Type: "invoice_id", MentionText: "INV-2", Confidence: 0.6},
		},
	}

	fields, _ := ExtractFields(doc)

	require.NotNil(t, fields.InvoiceID)
	assert.Equal(t, "INV-2", *fields.InvoiceID)
}

func TestExtractFieldsMalformedAmount(t *testing.T) {
	doc := &models.StructuredDocument{
		Entities: []models.Entity{
			{Type: "total_amount", MentionText: "N/A", Confidence: 0.3},
			{Type: "invoice_id", MentionText: "INV-7", Confidence: 0.9},
		},
	}

	fields, quality := ExtractFields(doc)

	// The malformed amount is surfaced, not swallowed, and the column stays null.
	require.Len(t, quality, 1)
	assert.ErrorContains(t, quality[0], "total_amount")
	assert.Nil(t, fields.TotalAmount)
	require.NotNil(t, fields.InvoiceID)
	// The malformed entity still counts toward the confidence mean.
	assert.InDelta(t, 0.6, fields.Confidence, 1e-9)
}

func TestExtractFieldsMalformedAmountKeepsEarlierValue(t *testing.T) {
	doc := &models.StructuredDocument{
		Entities: []models.Entity{
			{Type: "total_amount", MentionText: "$10.00", Confidence: 0.8},
			{Type: "total_amount", MentionText: "ten-ish", Confidence: 0.2},
		},
	}

	fields, quality := ExtractFields(doc)

	require.Len(t, quality, 1)
	require.NotNil(t, fields.TotalAmount)
	assert.Equal(t, 10.00, *fields.TotalAmount)
}
