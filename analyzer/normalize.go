package analyzer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeName trims, NFKC-normalizes and collapses internal whitespace so
// that OCR artifacts like full-width characters or doubled spaces do not
// defeat matching.
func normalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}

// normalizeKey folds a name into the case-insensitive form used for equality
// and alias lookups.
func normalizeKey(s string) string {
	return strings.ToLower(normalizeName(s))
}

// NormalizeKey exposes the lookup-key folding so callers indexing by
// canonical name agree with the catalog and alias table.
func NormalizeKey(s string) string {
	return normalizeKey(s)
}
