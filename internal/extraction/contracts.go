package extraction

import (
	"context"

	"github.com/shopspring/decimal"
)

// RawLineItem is one extracted invoice line, as reported by the service.
type RawLineItem struct {
	ItemCode    string          `json:"item_code,omitempty"`
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Confidence  float64         `json:"confidence,omitempty"`
}

// DeliveryLocation is the free-text ship-to block, when the service finds one.
type DeliveryLocation struct {
	Name       string  `json:"name"`
	Address    string  `json:"address,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// RawInvoice is the per-chunk extraction output. It is ephemeral: fragments
// of the same logical invoice may arrive from different chunks and are merged
// before normalization.
type RawInvoice struct {
	Vendor           string            `json:"vendor"`
	InvoiceNumber    string            `json:"invoice_number,omitempty"`
	InvoiceDate      string            `json:"invoice_date"`
	DueDate          string            `json:"due_date,omitempty"`
	PaymentTerms     string            `json:"payment_terms,omitempty"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	Confidence       float64           `json:"confidence,omitempty"`
	DeliveryLocation *DeliveryLocation `json:"delivery_location,omitempty"`
	LineItems        []RawLineItem     `json:"line_items"`
}

// Result is what one service call produced: one or more invoices plus the
// raw response text, retained for audit only.
type Result struct {
	Invoices []RawInvoice
	RawText  string
}

// Extractor is the interface the chunk planner depends on.
type Extractor interface {
	// Extract runs the document-understanding service over a single image or
	// page-range document. note is free-text context (absolute page range)
	// passed through to the model. No retries happen here; the caller owns
	// retry policy.
	Extract(ctx context.Context, doc []byte, mediaType string, note string) (*Result, error)
}
