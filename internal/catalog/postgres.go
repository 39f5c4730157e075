package catalog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/restobooks/invoice-pipeline/internal/common"
)

// PostgresStore implements Store over a pgx pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{pool: pool, logger: logger}
}

// Open creates a pgx pool from config, mirroring the connection knobs used
// across the back office.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to catalog database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse catalog DSN", "error", err)
		return nil, err
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "invoice-pipeline"

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to catalog database", "error", err)
		return nil, err
	}
	logger.Info("connected to catalog database")
	return pool, nil
}

// HealthCheck pings the pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return pool.Ping(ctx)
}

func (s *PostgresStore) VendorByNormalizedName(ctx context.Context, normalized string) (*Vendor, error) {
	const q = `SELECT id, name, normalized_name
	           FROM vendors
	           WHERE normalized_name = $1 AND is_active
	           LIMIT 1`
	var v Vendor
	err := s.pool.QueryRow(ctx, q, normalized).Scan(&v.ID, &v.Name, &v.NormalizedName)
	if err != nil {
		return nil, s.mapErr("vendor_by_normalized_name", err)
	}
	return &v, nil
}

func (s *PostgresStore) VenueByName(ctx context.Context, name string) (*Venue, error) {
	const q = `SELECT id, name
	           FROM venues
	           WHERE lower(name) = lower($1) AND is_active
	           LIMIT 1`
	var v Venue
	err := s.pool.QueryRow(ctx, q, name).Scan(&v.ID, &v.Name)
	if err != nil {
		return nil, s.mapErr("venue_by_name", err)
	}
	return &v, nil
}

func (s *PostgresStore) VenueMatchingToken(ctx context.Context, token string) (*Venue, error) {
	const q = `SELECT id, name
	           FROM venues
	           WHERE name ILIKE '%' || $1 || '%' AND is_active
	           ORDER BY name
	           LIMIT 1`
	var v Venue
	err := s.pool.QueryRow(ctx, q, token).Scan(&v.ID, &v.Name)
	if err != nil {
		return nil, s.mapErr("venue_matching_token", err)
	}
	return &v, nil
}

func (s *PostgresStore) ItemByVendorCode(ctx context.Context, vendorID uuid.UUID, code string) (*ItemMapping, error) {
	// current mapping table first, then the legacy one kept for invoices
	// imported before the vendor_items migration
	const current = `SELECT item_id, id
	                 FROM vendor_items
	                 WHERE vendor_id = $1 AND item_code = $2 AND is_active
	                 LIMIT 1`
	var m ItemMapping
	err := s.pool.QueryRow(ctx, current, vendorID, code).Scan(&m.ItemID, &m.VendorItemID)
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, s.mapErr("item_by_vendor_code", err)
	}

	const legacy = `SELECT item_id, id
	                FROM vendor_item_codes
	                WHERE vendor_id = $1 AND code = $2
	                LIMIT 1`
	err = s.pool.QueryRow(ctx, legacy, vendorID, code).Scan(&m.ItemID, &m.VendorItemID)
	if err != nil {
		return nil, s.mapErr("item_by_vendor_code_legacy", err)
	}
	return &m, nil
}

func (s *PostgresStore) ItemByVendorDescription(ctx context.Context, vendorID uuid.UUID, description string) (*ItemMapping, error) {
	const q = `SELECT item_id, id
	           FROM vendor_items
	           WHERE vendor_id = $1
	             AND lower(trim(description)) = lower(trim($2))
	             AND is_active
	           LIMIT 1`
	var m ItemMapping
	err := s.pool.QueryRow(ctx, q, vendorID, description).Scan(&m.ItemID, &m.VendorItemID)
	if err != nil {
		return nil, s.mapErr("item_by_vendor_description", err)
	}
	return &m, nil
}

func (s *PostgresStore) mapErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrNotFound
	}
	s.logger.Error("catalog.query_failed", "op", op, "error", err)
	return common.WrapError(err, "catalog "+op)
}
