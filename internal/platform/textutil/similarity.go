package textutil

import "github.com/pmezard/go-difflib/difflib"

// Similarity scores two canonical names in [0,1] using the longest-matching-
// blocks ratio, computed both on the inputs directly and on their token-sorted
// forms, returning the larger of the two. The raw comparison stays sensitive
// to character-level typos; the token-sorted comparison is order-invariant.
// Returns 0 when either input is empty.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}
	raw := sequenceRatio(a, b)
	tok := sequenceRatio(TokenSortKey(a), TokenSortKey(b))
	if tok > raw {
		return tok
	}
	return raw
}

func sequenceRatio(a, b string) float64 {
	return difflib.NewMatcher(splitChars(a), splitChars(b)).Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
