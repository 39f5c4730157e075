package constants

// MatchType records how a line item was tied to a catalog item.
type MatchType string

const (
	// MatchExact means the line was matched by vendor item code or by exact
	// description text.
	MatchExact MatchType = "exact"
	// MatchFuzzy is reserved; fuzzy description matching produced wrong
	// mappings in practice and is not attempted.
	MatchFuzzy MatchType = "fuzzy"
	// MatchNone means the line is left for manual review.
	MatchNone MatchType = "none"
)

const (
	// DefaultChunkPages is the initial page-window width for multi-page
	// documents.
	DefaultChunkPages = 10

	// TotalTolerance is the largest absolute difference between the stated
	// invoice total and the recomputed line sum that does not raise a
	// warning.
	TotalTolerance = "0.01"

	// VenueTokenMinLen is the shortest location-name token considered for
	// substring venue matching.
	VenueTokenMinLen = 3
)
