package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/restobooks/invoice-pipeline/constants"
	"github.com/restobooks/invoice-pipeline/internal/common"
	"github.com/restobooks/invoice-pipeline/internal/normalize"
)

// Resolver turns free-text vendor, venue, and line-item strings into catalog
// identifiers. Matching is deterministic and confidence-tiered: exact lookups
// only, because fuzzy description matching mis-attributed spend in practice.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

func NewResolver(store Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// ResolveVendor matches the normalized vendor name against the catalog's
// precomputed normalized_name column. Misses return common.ErrNotFound.
func (r *Resolver) ResolveVendor(ctx context.Context, rawName string) (*Vendor, error) {
	key := normalize.VendorKey(rawName)
	if key == "" {
		return nil, common.ErrNotFound
	}
	v, err := r.store.VendorByNormalizedName(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			r.logger.Info("normalize.vendor.miss", "raw", rawName, "key", key)
		}
		return nil, err
	}
	return v, nil
}

// ResolveVenue tries an exact case-insensitive name match first, then each
// location-name token longer than three characters as a substring match,
// stopping at the first hit.
func (r *Resolver) ResolveVenue(ctx context.Context, locationName string) (*Venue, error) {
	name := strings.TrimSpace(locationName)
	if name == "" {
		return nil, common.ErrNotFound
	}

	v, err := r.store.VenueByName(ctx, name)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	for _, token := range venueTokens(name) {
		v, err := r.store.VenueMatchingToken(ctx, token)
		if err == nil {
			r.logger.Info("normalize.venue.token_match", "location", name, "token", token, "venue", v.Name)
			return v, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}
	return nil, common.ErrNotFound
}

// MatchLine applies the strict priority order: vendor item code first
// (current and legacy mapping tables), then exact description text. No fuzzy
// fallback — unmatched lines are left for human review.
func (r *Resolver) MatchLine(ctx context.Context, vendorID uuid.UUID, itemCode, description string) (*ItemMapping, constants.MatchType, error) {
	if code := strings.TrimSpace(itemCode); code != "" {
		m, err := r.store.ItemByVendorCode(ctx, vendorID, code)
		if err == nil {
			return m, constants.MatchExact, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, constants.MatchNone, err
		}
	}

	if desc := strings.TrimSpace(description); desc != "" {
		m, err := r.store.ItemByVendorDescription(ctx, vendorID, desc)
		if err == nil {
			return m, constants.MatchExact, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, constants.MatchNone, err
		}
	}

	return nil, constants.MatchNone, common.ErrNotFound
}

// venueTokens splits a location name into candidate substring tokens.
func venueTokens(name string) []string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9')
	})
	var out []string
	for _, f := range fields {
		if len(f) > constants.VenueTokenMinLen {
			out = append(out, f)
		}
	}
	return out
}
