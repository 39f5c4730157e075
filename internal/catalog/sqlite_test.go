package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restobooks/invoice-pipeline/constants"
	"github.com/restobooks/invoice-pipeline/internal/common"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

type seed struct {
	vendorID  uuid.UUID
	venueID   uuid.UUID
	itemID    uuid.UUID
	mappingID uuid.UUID
	legacyID  uuid.UUID
}

func seedCatalog(t *testing.T, store *SQLiteStore) seed {
	t.Helper()
	s := seed{
		vendorID:  uuid.New(),
		venueID:   uuid.New(),
		itemID:    uuid.New(),
		mappingID: uuid.New(),
		legacyID:  uuid.New(),
	}
	ctx := context.Background()
	exec := func(q string, args ...any) {
		_, err := store.db.ExecContext(ctx, q, args...)
		require.NoError(t, err)
	}
	exec(`INSERT INTO vendors (id, name, normalized_name) VALUES (?, ?, ?)`,
		s.vendorID.String(), "Acme Foods, LLC", "acme foods")
	exec(`INSERT INTO vendors (id, name, normalized_name, is_active) VALUES (?, ?, ?, 0)`,
		uuid.NewString(), "Retired Vendor", "retired vendor")
	exec(`INSERT INTO venues (id, name) VALUES (?, ?)`,
		s.venueID.String(), "Riverside Bar & Grill")
	exec(`INSERT INTO vendor_items (id, vendor_id, item_id, item_code, description) VALUES (?, ?, ?, ?, ?)`,
		s.mappingID.String(), s.vendorID.String(), s.itemID.String(), "TOM-1", "Roma Tomatoes")
	exec(`INSERT INTO vendor_item_codes (id, vendor_id, item_id, code) VALUES (?, ?, ?, ?)`,
		s.legacyID.String(), s.vendorID.String(), s.itemID.String(), "OLD-9")
	return s
}

func TestSQLiteVendorLookup(t *testing.T) {
	store := openTestStore(t)
	s := seedCatalog(t, store)
	ctx := context.Background()

	v, err := store.VendorByNormalizedName(ctx, "acme foods")
	require.NoError(t, err)
	assert.Equal(t, s.vendorID, v.ID)
	assert.Equal(t, "Acme Foods, LLC", v.Name)

	_, err = store.VendorByNormalizedName(ctx, "retired vendor")
	assert.ErrorIs(t, err, common.ErrNotFound, "inactive vendors are invisible")

	_, err = store.VendorByNormalizedName(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteVenueLookups(t *testing.T) {
	store := openTestStore(t)
	s := seedCatalog(t, store)
	ctx := context.Background()

	v, err := store.VenueByName(ctx, "riverside bar & grill")
	require.NoError(t, err)
	assert.Equal(t, s.venueID, v.ID)

	v, err = store.VenueMatchingToken(ctx, "Riverside")
	require.NoError(t, err)
	assert.Equal(t, s.venueID, v.ID)

	_, err = store.VenueMatchingToken(ctx, "harbor")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteItemLookups(t *testing.T) {
	store := openTestStore(t)
	s := seedCatalog(t, store)
	ctx := context.Background()

	m, err := store.ItemByVendorCode(ctx, s.vendorID, "TOM-1")
	require.NoError(t, err)
	assert.Equal(t, s.itemID, m.ItemID)
	assert.Equal(t, s.mappingID, m.VendorItemID)

	// codes absent from vendor_items fall through to the legacy table
	m, err = store.ItemByVendorCode(ctx, s.vendorID, "OLD-9")
	require.NoError(t, err)
	assert.Equal(t, s.itemID, m.ItemID)
	assert.Equal(t, s.legacyID, m.VendorItemID)

	_, err = store.ItemByVendorCode(ctx, s.vendorID, "NOPE")
	assert.ErrorIs(t, err, common.ErrNotFound)

	m, err = store.ItemByVendorDescription(ctx, s.vendorID, "  roma tomatoes ")
	require.NoError(t, err)
	assert.Equal(t, s.itemID, m.ItemID)

	otherVendor := uuid.New()
	_, err = store.ItemByVendorCode(ctx, otherVendor, "TOM-1")
	assert.ErrorIs(t, err, common.ErrNotFound, "mappings are scoped per vendor")
}

func TestSQLiteResolverEndToEnd(t *testing.T) {
	store := openTestStore(t)
	s := seedCatalog(t, store)
	ctx := context.Background()
	r := NewResolver(store, nil)

	vendor, err := r.ResolveVendor(ctx, "ACME Foods, LLC.")
	require.NoError(t, err)
	assert.Equal(t, s.vendorID, vendor.ID)

	venue, err := r.ResolveVenue(ctx, "Dinner at Riverside")
	require.NoError(t, err)
	assert.Equal(t, s.venueID, venue.ID)

	mapping, matchType, err := r.MatchLine(ctx, s.vendorID, "", "Roma Tomatoes")
	require.NoError(t, err)
	assert.Equal(t, s.itemID, mapping.ItemID)
	assert.Equal(t, constants.MatchExact, matchType)
}
