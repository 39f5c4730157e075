package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/restobooks/invoice-pipeline/constants"
)

// NormalizedLine is one catalog-matched invoice line.
type NormalizedLine struct {
	ItemCode      string              `json:"item_code,omitempty"`
	Description   string              `json:"description"`
	Qty           decimal.Decimal     `json:"qty"`
	UnitCost      decimal.Decimal     `json:"unit_cost"`
	LineTotal     decimal.Decimal     `json:"line_total"`
	OCRConfidence float64             `json:"ocr_confidence,omitempty"`
	ItemID        *uuid.UUID          `json:"item_id,omitempty"`
	VendorItemID  *uuid.UUID          `json:"vendor_item_id,omitempty"`
	MatchType     constants.MatchType `json:"match_type"`
}

// NormalizedInvoice is the canonical pipeline output, constructed once per
// merged raw invoice and immutable afterwards. It is the unit handed to the
// persistence boundary. An empty Warnings slice signals a fully resolved,
// fully reconciled invoice.
type NormalizedInvoice struct {
	VendorName    string           `json:"vendor_name"`
	VendorID      *uuid.UUID       `json:"vendor_id,omitempty"`
	VenueID       *uuid.UUID       `json:"venue_id,omitempty"`
	VenueName     string           `json:"venue_name,omitempty"`
	InvoiceNumber string           `json:"invoice_number,omitempty"`
	InvoiceDate   string           `json:"invoice_date"`
	DueDate       string           `json:"due_date,omitempty"`
	PaymentTerms  string           `json:"payment_terms,omitempty"`
	TotalAmount   decimal.Decimal  `json:"total_amount"`
	OCRConfidence float64          `json:"ocr_confidence,omitempty"`
	Lines         []NormalizedLine `json:"lines"`
	Warnings      []string         `json:"warnings"`
}
