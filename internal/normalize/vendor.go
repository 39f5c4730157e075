package normalize

import (
	"regexp"
	"strings"
)

// vendorAliases expands known acronyms and shorthand before suffix stripping.
// Keys and values are already in normalized (lowercase) form.
var vendorAliases = map[string]string{
	"cw":   "chefs warehouse",
	"tcw":  "chefs warehouse",
	"usf":  "us foods",
	"pfg":  "performance food group",
	"bimbo": "bimbo bakeries",
	"sysco sf": "sysco san francisco",
}

// legalSuffixes are dropped from the end of a vendor name, repeatedly, so
// "Acme Foods Co Inc" and "Acme Foods" normalize to the same key.
var legalSuffixes = []string{
	"llc", "llp", "inc", "incorporated", "co", "corp", "corporation",
	"ltd", "limited", "company",
}

var (
	reParenthetical = regexp.MustCompile(`\([^)]*\)`)
	reApostrophe    = regexp.MustCompile(`['’]`)
	rePunctuation   = regexp.MustCompile(`[^a-z0-9 ]+`)
	reWhitespace    = regexp.MustCompile(`\s+`)
)

// VendorKey reduces a free-text vendor name to a deterministic lookup key.
// The same key is stored in the catalog's normalized_name column, so the
// transform must be idempotent: VendorKey(VendorKey(x)) == VendorKey(x).
func VendorKey(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	s = reParenthetical.ReplaceAllString(s, " ")
	// "chef's" and "chefs" must collide, so apostrophes vanish rather than
	// split the word.
	s = reApostrophe.ReplaceAllString(s, "")
	s = rePunctuation.ReplaceAllString(s, " ")
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	s = strings.TrimPrefix(s, "the ")
	// "dba" marks the trade name; keep what follows it.
	if i := strings.Index(s, " dba "); i >= 0 {
		s = s[i+len(" dba "):]
	}
	s = strings.TrimPrefix(s, "dba ")

	words := strings.Fields(s)
	for len(words) > 1 && isLegalSuffix(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	s = strings.Join(words, " ")

	if alias, ok := vendorAliases[s]; ok {
		s = alias
	}
	return s
}

func isLegalSuffix(w string) bool {
	for _, suf := range legalSuffixes {
		if w == suf {
			return true
		}
	}
	return false
}
