package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityIdentity(t *testing.T) {
	for _, s := range []string{"jane doe", "a", "robert a smith"} {
		assert.Equal(t, 1.0, Similarity(s, s), "score(%q, %q)", s, s)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"jane doe", "jane m doe"},
		{"alex smith", "alexandra smith"},
		{"john smith", "smith john"},
	}
	for _, p := range pairs {
		assert.Equal(t, Similarity(p[0], p[1]), Similarity(p[1], p[0]), "score(%q, %q)", p[0], p[1])
	}
}

func TestSimilarityEmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "jane doe"))
	assert.Equal(t, 0.0, Similarity("jane doe", ""))
	assert.Equal(t, 0.0, Similarity("", ""))
}

func TestSimilarityTokenOrderInvariance(t *testing.T) {
	// "Last, First" orderings collapse to the same token-sorted key, so the
	// token-sorted comparison should dominate.
	score := Similarity(NormalizeName("John Smith"), NormalizeName("Smith, John"))
	assert.GreaterOrEqual(t, score, 0.92)
	assert.Equal(t, 1.0, score)
}

func TestSimilarityBelowThresholdForDifferentPeople(t *testing.T) {
	score := Similarity(NormalizeName("Alex Smith"), NormalizeName("Alexandra Smith"))
	assert.Less(t, score, 0.92)
	assert.Greater(t, score, 0.0)
}
