package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/restobooks/invoice-pipeline/constants"
	"github.com/restobooks/invoice-pipeline/internal/catalog"
	"github.com/restobooks/invoice-pipeline/internal/common"
	"github.com/restobooks/invoice-pipeline/internal/entity"
	"github.com/restobooks/invoice-pipeline/internal/extraction"
	"github.com/restobooks/invoice-pipeline/internal/normalize"
)

var totalTolerance = decimal.RequireFromString(constants.TotalTolerance)

// Normalizer converts one merged raw invoice into the canonical schema,
// resolving catalog references and validating totals. Every step is
// independently failure-tolerant: a miss becomes a warning on the output,
// never an error — unmatched references are completed by a human later.
type Normalizer struct {
	resolver *catalog.Resolver
	logger   *slog.Logger
}

func NewNormalizer(resolver *catalog.Resolver, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{resolver: resolver, logger: logger}
}

// Normalize runs the five normalization steps over raw and returns the
// canonical invoice with accumulated warnings.
func (n *Normalizer) Normalize(ctx context.Context, raw extraction.RawInvoice) entity.NormalizedInvoice {
	inv := entity.NormalizedInvoice{
		VendorName:    raw.Vendor,
		InvoiceNumber: raw.InvoiceNumber,
		PaymentTerms:  raw.PaymentTerms,
		TotalAmount:   raw.TotalAmount,
		OCRConfidence: raw.Confidence,
		Warnings:      []string{},
	}

	// 1) vendor
	vendor, err := n.resolver.ResolveVendor(ctx, raw.Vendor)
	switch {
	case err == nil:
		id := vendor.ID
		inv.VendorID = &id
	case errors.Is(err, common.ErrNotFound):
		inv.Warnings = append(inv.Warnings,
			fmt.Sprintf("vendor %q not found in master vendor list", raw.Vendor))
	default:
		n.logger.Error("normalize.vendor.lookup_failed", "vendor", raw.Vendor, "error", err)
		inv.Warnings = append(inv.Warnings,
			fmt.Sprintf("vendor lookup failed for %q: %v", raw.Vendor, err))
	}

	// 2) delivery venue
	if raw.DeliveryLocation != nil && raw.DeliveryLocation.Name != "" {
		venue, err := n.resolver.ResolveVenue(ctx, raw.DeliveryLocation.Name)
		switch {
		case err == nil:
			id := venue.ID
			inv.VenueID = &id
			inv.VenueName = venue.Name
		case errors.Is(err, common.ErrNotFound):
			inv.Warnings = append(inv.Warnings,
				fmt.Sprintf("delivery location %q not matched to a venue", raw.DeliveryLocation.Name))
		default:
			n.logger.Error("normalize.venue.lookup_failed", "location", raw.DeliveryLocation.Name, "error", err)
			inv.Warnings = append(inv.Warnings,
				fmt.Sprintf("venue lookup failed for %q: %v", raw.DeliveryLocation.Name, err))
		}
	}

	// 3) dates
	inv.InvoiceDate = normalize.Date(raw.InvoiceDate)
	if raw.InvoiceDate != "" && !normalize.IsISODate(inv.InvoiceDate) {
		inv.Warnings = append(inv.Warnings,
			fmt.Sprintf("invoice date %q could not be normalized to YYYY-MM-DD", raw.InvoiceDate))
	}
	if raw.DueDate != "" {
		inv.DueDate = normalize.Date(raw.DueDate)
		if !normalize.IsISODate(inv.DueDate) {
			inv.Warnings = append(inv.Warnings,
				fmt.Sprintf("due date %q could not be normalized to YYYY-MM-DD", raw.DueDate))
		}
	}

	// 4) line items
	inv.Lines = make([]entity.NormalizedLine, 0, len(raw.LineItems))
	for i, li := range raw.LineItems {
		line := entity.NormalizedLine{
			ItemCode:      li.ItemCode,
			Description:   li.Description,
			Qty:           li.Qty,
			UnitCost:      li.UnitPrice,
			LineTotal:     li.LineTotal,
			OCRConfidence: li.Confidence,
			MatchType:     constants.MatchNone,
		}
		if inv.VendorID != nil {
			mapping, matchType, err := n.resolver.MatchLine(ctx, *inv.VendorID, li.ItemCode, li.Description)
			switch {
			case err == nil:
				itemID := mapping.ItemID
				vendorItemID := mapping.VendorItemID
				line.ItemID = &itemID
				line.VendorItemID = &vendorItemID
				line.MatchType = matchType
			case errors.Is(err, common.ErrNotFound):
				inv.Warnings = append(inv.Warnings,
					fmt.Sprintf("line %d (%q) not matched to a catalog item", i+1, li.Description))
			default:
				n.logger.Error("normalize.line.lookup_failed", "line", i+1, "error", err)
				inv.Warnings = append(inv.Warnings,
					fmt.Sprintf("line %d (%q) catalog lookup failed: %v", i+1, li.Description, err))
			}
		}
		inv.Lines = append(inv.Lines, line)
	}

	// 5) total vs recomputed line sum; the stated total stays authoritative
	sum := decimal.Zero
	for _, li := range raw.LineItems {
		sum = sum.Add(li.LineTotal)
	}
	if sum.Sub(raw.TotalAmount).Abs().GreaterThan(totalTolerance) {
		inv.Warnings = append(inv.Warnings,
			fmt.Sprintf("extracted total %s does not match line item sum %s",
				raw.TotalAmount.StringFixed(2), sum.StringFixed(2)))
	}

	return inv
}
