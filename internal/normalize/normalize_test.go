package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVendorKeyEquivalence(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"legal suffix and punctuation", "The Chef's Warehouse, LLC.", "chefs warehouse"},
		{"case", "SYSCO", "sysco"},
		{"parenthetical aside", "Acme Foods (West Region)", "Acme Foods"},
		{"dba prefix", "Smith Holdings dba Valley Produce", "Valley Produce"},
		{"stacked suffixes", "Acme Foods Co Inc", "Acme Foods"},
		{"acronym alias", "USF", "US Foods"},
		{"whitespace", "  Acme   Foods  ", "Acme Foods"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, VendorKey(tt.b), VendorKey(tt.a))
		})
	}
}

func TestVendorKeyIdempotent(t *testing.T) {
	inputs := []string{
		"The Chef's Warehouse, LLC.",
		"Smith Holdings dba Valley Produce",
		"USF",
		"Performance Food Group, Inc.",
		"",
		"the the co",
	}
	for _, in := range inputs {
		once := VendorKey(in)
		assert.Equal(t, once, VendorKey(once), "VendorKey not idempotent for %q", in)
	}
}

func TestVendorKeyKeepsSingleSuffixWord(t *testing.T) {
	// a vendor literally named "Co" must not normalize to empty
	assert.Equal(t, "co", VendorKey("Co"))
}

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-03-04", "2025-03-04"},
		{"03/04/2025", "2025-03-04"},
		{"3/4/2025", "2025-03-04"},
		{"Jan 2, 2026", "2026-01-02"},
		{"2026/01/02", "2026-01-02"},
		{"not a date", "not a date"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Date(tt.in), "Date(%q)", tt.in)
	}
}

func TestIsISODate(t *testing.T) {
	assert.True(t, IsISODate("2025-03-04"))
	assert.False(t, IsISODate("03/04/2025"))
	assert.False(t, IsISODate("not a date"))
}
