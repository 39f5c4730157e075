package catalog

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/restobooks/invoice-pipeline/internal/common"
)

// SQLiteStore implements Store over an embedded database. Used for local
// development runs and store-level tests; production reads go through
// PostgresStore.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func OpenSQLite(dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, common.WrapError(err, "open sqlite catalog")
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates the catalog tables. Schema mirrors db/ent/schema; kept as
// plain DDL here so a dev catalog can be stood up without codegen.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS vendors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		normalized_name TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS vendors_normalized_name ON vendors (normalized_name);
	CREATE TABLE IF NOT EXISTS venues (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);
	CREATE TABLE IF NOT EXISTS vendor_items (
		id TEXT PRIMARY KEY,
		vendor_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		item_code TEXT,
		description TEXT,
		is_active INTEGER NOT NULL DEFAULT 1
	);
	CREATE TABLE IF NOT EXISTS vendor_item_codes (
		id TEXT PRIMARY KEY,
		vendor_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		code TEXT NOT NULL
	);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return common.WrapError(err, "migrate sqlite catalog")
	}
	return nil
}

func (s *SQLiteStore) VendorByNormalizedName(ctx context.Context, normalized string) (*Vendor, error) {
	const q = `SELECT id, name, normalized_name
	           FROM vendors
	           WHERE normalized_name = ? AND is_active = 1
	           LIMIT 1`
	var v Vendor
	var id string
	err := s.db.QueryRowContext(ctx, q, normalized).Scan(&id, &v.Name, &v.NormalizedName)
	if err != nil {
		return nil, s.mapErr("vendor_by_normalized_name", err)
	}
	v.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, common.WrapError(err, "vendor id")
	}
	return &v, nil
}

func (s *SQLiteStore) VenueByName(ctx context.Context, name string) (*Venue, error) {
	const q = `SELECT id, name
	           FROM venues
	           WHERE lower(name) = lower(?) AND is_active = 1
	           LIMIT 1`
	return s.scanVenue(ctx, "venue_by_name", q, name)
}

func (s *SQLiteStore) VenueMatchingToken(ctx context.Context, token string) (*Venue, error) {
	const q = `SELECT id, name
	           FROM venues
	           WHERE lower(name) LIKE '%' || lower(?) || '%' AND is_active = 1
	           ORDER BY name
	           LIMIT 1`
	return s.scanVenue(ctx, "venue_matching_token", q, strings.TrimSpace(token))
}

func (s *SQLiteStore) scanVenue(ctx context.Context, op, q string, arg any) (*Venue, error) {
	var v Venue
	var id string
	err := s.db.QueryRowContext(ctx, q, arg).Scan(&id, &v.Name)
	if err != nil {
		return nil, s.mapErr(op, err)
	}
	v.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, common.WrapError(err, "venue id")
	}
	return &v, nil
}

func (s *SQLiteStore) ItemByVendorCode(ctx context.Context, vendorID uuid.UUID, code string) (*ItemMapping, error) {
	const current = `SELECT item_id, id
	                 FROM vendor_items
	                 WHERE vendor_id = ? AND item_code = ? AND is_active = 1
	                 LIMIT 1`
	m, err := s.scanMapping(ctx, "item_by_vendor_code", current, vendorID.String(), code)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	const legacy = `SELECT item_id, id
	                FROM vendor_item_codes
	                WHERE vendor_id = ? AND code = ?
	                LIMIT 1`
	return s.scanMapping(ctx, "item_by_vendor_code_legacy", legacy, vendorID.String(), code)
}

func (s *SQLiteStore) ItemByVendorDescription(ctx context.Context, vendorID uuid.UUID, description string) (*ItemMapping, error) {
	const q = `SELECT item_id, id
	           FROM vendor_items
	           WHERE vendor_id = ?
	             AND lower(trim(description)) = lower(trim(?))
	             AND is_active = 1
	           LIMIT 1`
	return s.scanMapping(ctx, "item_by_vendor_description", q, vendorID.String(), description)
}

func (s *SQLiteStore) scanMapping(ctx context.Context, op, q string, args ...any) (*ItemMapping, error) {
	var itemID, mappingID string
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&itemID, &mappingID)
	if err != nil {
		return nil, s.mapErr(op, err)
	}
	var m ItemMapping
	if m.ItemID, err = uuid.Parse(itemID); err != nil {
		return nil, common.WrapError(err, "item id")
	}
	if m.VendorItemID, err = uuid.Parse(mappingID); err != nil {
		return nil, common.WrapError(err, "vendor item id")
	}
	return &m, nil
}

func (s *SQLiteStore) mapErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	s.logger.Error("catalog.query_failed", "op", op, "error", err)
	return common.WrapError(err, "catalog "+op)
}
