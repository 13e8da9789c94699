package textutil

import (
	"sort"
	"strings"
)

// honorifics and generational suffixes that create false mismatches between
// the analytics feed and the politician directory.
var droppedNameTokens = map[string]struct{}{
	"jr": {}, "sr": {}, "ii": {}, "iii": {}, "iv": {},
	"mr": {}, "mrs": {}, "ms": {}, "dr": {},
	"sen": {}, "senator": {}, "rep": {}, "representative": {},
	"gov": {}, "governor": {},
}

// NormalizeName reduces a raw person name to its canonical comparison form:
// lowercase, punctuation stripped, whitespace collapsed, honorific and suffix
// tokens removed, hyphens treated as token separators. It is idempotent and
// never fails; garbage input yields an empty string.
func NormalizeName(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '.' || r == ',' || r == '\'':
			b.WriteByte(' ')
		case r >= 'a' && r <= 'z', r == ' ', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	fields := strings.FieldsFunc(b.String(), func(r rune) bool {
		return r == ' ' || r == '-'
	})

	tokens := fields[:0]
	for _, tok := range fields {
		if _, drop := droppedNameTokens[tok]; drop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return strings.Join(tokens, " ")
}

// TokenSortKey reorders the whitespace-delimited tokens of a canonical name
// alphabetically, making comparisons robust to "Last, First" versus
// "First Last" ordering.
func TokenSortKey(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// SlugifyName derives a deterministic identity key from a raw name: the
// canonical form with spaces replaced by underscores. Distinct people whose
// names normalize identically share a slug; callers that need uniqueness must
// reconcile against an existing directory first.
func SlugifyName(raw string) string {
	normalized := NormalizeName(raw)
	slug := strings.ReplaceAll(normalized, " ", "_")
	slug = strings.ReplaceAll(slug, "'", "")
	return strings.ReplaceAll(slug, ".", "")
}
