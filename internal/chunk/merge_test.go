package chunk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restobooks/invoice-pipeline/internal/extraction"
)

func line(desc string, total string) extraction.RawLineItem {
	return extraction.RawLineItem{
		Description: desc,
		Qty:         decimal.NewFromInt(1),
		UnitPrice:   decimal.RequireFromString(total),
		LineTotal:   decimal.RequireFromString(total),
	}
}

func TestMergeInvoicesCombinesFragments(t *testing.T) {
	a1 := extraction.RawInvoice{
		Vendor:        "Acme Foods",
		InvoiceNumber: "A100",
		InvoiceDate:   "2025-03-04",
		TotalAmount:   decimal.RequireFromString("30.00"),
		Confidence:    0.8,
		LineItems:     []extraction.RawLineItem{line("tomatoes", "10.00")},
	}
	b := extraction.RawInvoice{
		Vendor:        "Valley Produce",
		InvoiceNumber: "V-7",
		InvoiceDate:   "2025-03-05",
		TotalAmount:   decimal.RequireFromString("5.00"),
		LineItems:     []extraction.RawLineItem{line("basil", "5.00")},
	}
	a2 := extraction.RawInvoice{
		Vendor:        "ACME FOODS, LLC", // same vendor after normalization
		InvoiceNumber: "a100",
		DueDate:       "2025-04-04",
		Confidence:    0.9,
		LineItems:     []extraction.RawLineItem{line("onions", "20.00")},
	}

	merged := MergeInvoices([]extraction.RawInvoice{a1, b, a2})
	require.Len(t, merged, 2)

	a := merged[0]
	assert.Equal(t, "Acme Foods", a.Vendor, "first-seen header wins")
	assert.Equal(t, "A100", a.InvoiceNumber)
	assert.Equal(t, "2025-03-04", a.InvoiceDate)
	assert.Equal(t, "2025-04-04", a.DueDate, "missing field back-filled from later fragment")
	assert.Equal(t, 0.9, a.Confidence, "higher confidence preferred")
	require.Len(t, a.LineItems, 2)
	assert.Equal(t, "tomatoes", a.LineItems[0].Description)
	assert.Equal(t, "onions", a.LineItems[1].Description)
	assert.True(t, a.TotalAmount.Equal(decimal.RequireFromString("30.00")),
		"totals are never summed during merge")

	assert.Equal(t, "Valley Produce", merged[1].Vendor)
	require.Len(t, merged[1].LineItems, 1)
}

func TestMergeInvoicesPrefersHigherConfidenceLocation(t *testing.T) {
	lo := &extraction.DeliveryLocation{Name: "Main St", Confidence: 0.4}
	hi := &extraction.DeliveryLocation{Name: "Main Street Kitchen", Confidence: 0.9}

	merged := MergeInvoices([]extraction.RawInvoice{
		{Vendor: "Acme", InvoiceNumber: "1", DeliveryLocation: lo},
		{Vendor: "Acme", InvoiceNumber: "1", DeliveryLocation: hi},
	})
	require.Len(t, merged, 1)
	assert.Equal(t, "Main Street Kitchen", merged[0].DeliveryLocation.Name)
}

func TestMergeInvoicesNeverMergesHeaderlessFragments(t *testing.T) {
	noNumber := extraction.RawInvoice{Vendor: "Acme Foods"}
	noVendor := extraction.RawInvoice{InvoiceNumber: "A100"}

	merged := MergeInvoices([]extraction.RawInvoice{noNumber, noNumber, noVendor})
	assert.Len(t, merged, 3, "fragments missing vendor or invoice number keep unique keys")
}
