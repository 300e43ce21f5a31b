package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/finlake/financedocflow/internal/models"
)

// Entity type labels the processor was trained on. The processor's vocabulary
// is open-ended; anything outside this set only feeds the confidence mean.
const (
	entityTypeInvoiceID    = "invoice_id"
	entityTypeTotalAmount  = "total_amount"
	entityTypeSupplierName = "supplier_name"
)

// ExtractedFields holds the golden columns pulled from one structured document.
// Nil pointers mean the document contained no usable entity for that column.
type ExtractedFields struct {
	InvoiceID   *string
	TotalAmount *float64
	VendorName  *string
	Confidence  float64
}

// currencyCleaner strips currency symbols and thousands separators before
// numeric parsing.
var currencyCleaner = strings.NewReplacer("$", "", ",", "")

// ParseAmount converts an extracted monetary mention like "$1,234.56" into a
// number. Failures are returned, not swallowed: the caller owns the policy of
// what a malformed amount means for the record.
func ParseAmount(mention string) (float64, error) {
	cleaned := strings.TrimSpace(currencyCleaner.Replace(mention))
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q: %w", mention, err)
	}
	return amount, nil
}

// entitySetters is the closed mapping from recognized type label to golden
// column. Setters assign only on success, so a later malformed mention never
// clobbers an earlier good value.
var entitySetters = map[string]func(f *ExtractedFields, mention string) error{
	entityTypeInvoiceID: func(f *ExtractedFields, mention string) error {
		f.InvoiceID = &mention
		return nil
	},
	entityTypeTotalAmount: func(f *ExtractedFields, mention string) error {
		amount, err := ParseAmount(mention)
		if err != nil {
			return err
		}
		f.TotalAmount = &amount
		return nil
	},
	entityTypeSupplierName: func(f *ExtractedFields, mention string) error {
		f.VendorName = &mention
		return nil
	},
}

// ExtractFields walks the entity list once, filling golden columns and
// aggregating confidence. When multiple entities share a recognized type, the
// last one wins; entity order is whatever the processor emitted.
//
// The returned error slice carries data-quality issues (currently only
// malformed amounts). They never abort extraction: the affected column stays
// null and the raw payload remains the safety net.
func ExtractFields(doc *models.StructuredDocument) (ExtractedFields, []error) {
	var fields ExtractedFields
	var quality []error

	var totalConf float64
	for _, entity := range doc.Entities {
		totalConf += entity.Confidence

		setter, ok := entitySetters[entity.Type]
		if !ok {
			continue
		}
		if err := setter(&fields, entity.MentionText); err != nil {
			quality = append(quality, fmt.Errorf("entity %q: %w", entity.Type, err))
		}
	}

	if count := len(doc.Entities); count > 0 {
		fields.Confidence = totalConf / float64(count)
	}
	return fields, quality
}
