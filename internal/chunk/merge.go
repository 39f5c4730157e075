package chunk

import (
	"strings"

	"github.com/google/uuid"

	"github.com/restobooks/invoice-pipeline/internal/extraction"
	"github.com/restobooks/invoice-pipeline/internal/normalize"
)

// MergeKey identifies fragments of the same logical invoice split across a
// chunk boundary: normalized vendor plus lowercased invoice number. A
// fragment missing either field gets a unique fallback key and is never
// merged with anything.
func MergeKey(inv extraction.RawInvoice) string {
	vendor := normalize.VendorKey(inv.Vendor)
	number := strings.ToLower(strings.TrimSpace(inv.InvoiceNumber))
	if vendor == "" || number == "" {
		return "unmergeable:" + uuid.New().String()
	}
	return vendor + "|" + number
}

// MergeInvoices collapses the accumulated per-chunk invoices into one invoice
// per MergeKey, preserving first-seen order. Header fields follow first-wins
// with back-fill from later fragments; confidence-bearing fields prefer the
// higher-confidence value; line items concatenate in arrival order. Numeric
// fields are never summed here — total-vs-sum reconciliation happens during
// normalization.
func MergeInvoices(invoices []extraction.RawInvoice) []extraction.RawInvoice {
	merged := make([]extraction.RawInvoice, 0, len(invoices))
	index := make(map[string]int, len(invoices))

	for _, inv := range invoices {
		key := MergeKey(inv)
		at, seen := index[key]
		if !seen {
			index[key] = len(merged)
			merged = append(merged, inv)
			continue
		}
		merged[at] = mergeInto(merged[at], inv)
	}
	return merged
}

func mergeInto(dst, src extraction.RawInvoice) extraction.RawInvoice {
	if dst.InvoiceDate == "" {
		dst.InvoiceDate = src.InvoiceDate
	}
	if dst.DueDate == "" {
		dst.DueDate = src.DueDate
	}
	if dst.PaymentTerms == "" {
		dst.PaymentTerms = src.PaymentTerms
	}
	if dst.TotalAmount.IsZero() {
		dst.TotalAmount = src.TotalAmount
	}
	if src.Confidence > dst.Confidence {
		dst.Confidence = src.Confidence
	}
	if src.DeliveryLocation != nil {
		if dst.DeliveryLocation == nil ||
			src.DeliveryLocation.Confidence > dst.DeliveryLocation.Confidence {
			dst.DeliveryLocation = src.DeliveryLocation
		}
	}
	dst.LineItems = append(dst.LineItems, src.LineItems...)
	return dst
}
