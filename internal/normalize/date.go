package normalize

import (
	"regexp"
	"strings"
	"time"
)

var (
	reISODate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reUSDate  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// genericLayouts are tried in order after the fast paths.
var genericLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 January 2006",
	"2006/01/02",
	"Jan 2 2006",
}

// Date rewrites a free-text date to YYYY-MM-DD. ISO input passes through
// unchanged; MM/DD/YYYY is rewritten; other known layouts are attempted.
// Unparsable input is returned as-is, so callers must check the result with
// IsISODate before trusting it.
func Date(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw
	}
	if reISODate.MatchString(s) {
		return s
	}
	if m := reUSDate.FindStringSubmatch(s); m != nil {
		if t, err := time.Parse("1/2/2006", s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return raw
}

// IsISODate reports whether s is already in YYYY-MM-DD form.
func IsISODate(s string) bool {
	return reISODate.MatchString(strings.TrimSpace(s))
}
