package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lowercases", in: "Jane Doe", want: "jane doe"},
		{name: "strips punctuation", in: "O'Brien, Jr.", want: "obrien"},
		{name: "drops honorifics", in: "Sen. Robert A. Smith Jr.", want: "robert a smith"},
		{name: "collapses whitespace", in: "  Jane   Q.   Doe ", want: "jane q doe"},
		{name: "hyphen splits tokens", in: "Mary-Kate Olsen", want: "mary kate olsen"},
		{name: "strips digits and symbols", in: "Jane Doe (D-CA) #3", want: "jane doe d ca"},
		{name: "representative title", in: "Representative John Smith III", want: "john smith"},
		{name: "empty input", in: "", want: ""},
		{name: "garbage input", in: "123 !!! 456", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeName(tc.in))
		})
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{"O'Brien, Jr.", "Sen. Jane Q. Doe", "Mary-Kate Olsen", "ms smith", ""}
	for _, in := range inputs {
		once := NormalizeName(in)
		assert.Equal(t, once, NormalizeName(once), "normalize(normalize(%q))", in)
	}
}

func TestNormalizeNameCaseAndPunctuationInsensitive(t *testing.T) {
	assert.Equal(t, NormalizeName("obrien"), NormalizeName("O'Brien, Jr."))
	assert.Equal(t, NormalizeName("jane doe"), NormalizeName("DOE, Jane"))
}

func TestTokenSortKey(t *testing.T) {
	assert.Equal(t, "doe jane", TokenSortKey("jane doe"))
	assert.Equal(t, "doe jane", TokenSortKey("doe jane"))
	assert.Equal(t, "", TokenSortKey(""))
	assert.Equal(t, "a b c", TokenSortKey("c  a b"))
}

func TestSlugifyName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Robert A. Smith Jr.", want: "robert_a_smith"},
		{in: "Jane Q. Doe", want: "jane_q_doe"},
		{in: "jane q doe", want: "jane_q_doe"},
		{in: "O'Brien", want: "obrien"},
		{in: "", want: ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, SlugifyName(tc.in), "slug of %q", tc.in)
	}
}

func TestSlugifyNameDeterministicForSharedCanonicalForm(t *testing.T) {
	// Distinct raw spellings with the same canonical form share a slug.
	assert.Equal(t, SlugifyName("Jane Q. Doe"), SlugifyName("jane q doe"))
}
