package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Vendor is an active catalog vendor row.
type Vendor struct {
	ID             uuid.UUID
	Name           string
	NormalizedName string
}

// Venue is an active delivery location row.
type Venue struct {
	ID   uuid.UUID
	Name string
}

// ItemMapping ties a vendor-specific item to a catalog item.
type ItemMapping struct {
	ItemID       uuid.UUID
	VendorItemID uuid.UUID
}

// Store is the read-only catalog lookup surface the resolver depends on. All
// lookups are scoped to active rows; misses return common.ErrNotFound.
// Tenant scoping is implicit in the vendor/venue ids already on the query
// path.
type Store interface {
	// VendorByNormalizedName matches the precomputed normalized_name column
	// exactly.
	VendorByNormalizedName(ctx context.Context, normalized string) (*Vendor, error)
	// VenueByName matches the venue name exactly, case-insensitively.
	VenueByName(ctx context.Context, name string) (*Venue, error)
	// VenueMatchingToken returns the first active venue whose name contains
	// token, case-insensitively.
	VenueMatchingToken(ctx context.Context, token string) (*Venue, error)
	// ItemByVendorCode resolves a vendor item code, consulting both the
	// current vendor_items table and the legacy vendor_item_codes table.
	ItemByVendorCode(ctx context.Context, vendorID uuid.UUID, code string) (*ItemMapping, error)
	// ItemByVendorDescription matches the full line description exactly,
	// case-insensitively and whitespace-trimmed, against the vendor's stored
	// item descriptions.
	ItemByVendorDescription(ctx context.Context, vendorID uuid.UUID, description string) (*ItemMapping, error)
}
