package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoliticianDirectory struct {
	snapshot map[string]any
	err      error
}

func (d *fakePoliticianDirectory) Snapshot(context.Context) (map[string]any, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.snapshot, nil
}

func loadTestIndex(t *testing.T, dir *fakePoliticianDirectory) *PoliticianIndex {
	t.Helper()
	return LoadPoliticianIndex(context.Background(), PoliticianIndexDeps{Directory: dir})
}

func TestLoadPoliticianIndexFieldPriority(t *testing.T) {
	dir := &fakePoliticianDirectory{snapshot: map[string]any{
		"pol_1": map[string]any{"name": "Jane Doe"},
		"pol_2": map[string]any{"full_name": "John Smith"},
		"pol_3": map[string]any{"politician_name": "Alexandra Smith"},
		"pol_4": map[string]any{"display_name": "Robert Jones"},
		"pol_5": map[string]any{"name": "", "full_name": "Maria Garcia"},
	}}
	index := loadTestIndex(t, dir)
	require.Equal(t, 5, index.Len())

	for name, want := range map[string]string{
		"Jane Doe":        "pol_1",
		"John Smith":      "pol_2",
		"Alexandra Smith": "pol_3",
		"Robert Jones":    "pol_4",
		"Maria Garcia":    "pol_5",
	} {
		key, ok := index.BestMatch(name, 0.92)
		require.True(t, ok, "expected match for %q", name)
		assert.Equal(t, want, key)
	}
}

func TestLoadPoliticianIndexSkipsMalformedRecords(t *testing.T) {
	dir := &fakePoliticianDirectory{snapshot: map[string]any{
		"pol_1": map[string]any{"name": "Jane Doe"},
		"pol_2": "not an object",
		"pol_3": map[string]any{"party": "independent"},
		"pol_4": map[string]any{"name": 42},
		"pol_5": map[string]any{"name": "   "},
	}}
	index := loadTestIndex(t, dir)
	assert.Equal(t, 1, index.Len())
}

func TestLoadPoliticianIndexFailureYieldsEmptyIndex(t *testing.T) {
	dir := &fakePoliticianDirectory{err: errors.New("permission denied")}
	index := loadTestIndex(t, dir)
	assert.Equal(t, 0, index.Len())

	_, ok := index.BestMatch("Jane Doe", 0.92)
	assert.False(t, ok)
}

func TestBestMatchEmptyIndexNeverScores(t *testing.T) {
	index := loadTestIndex(t, &fakePoliticianDirectory{})
	_, ok := index.BestMatch("Jane Doe", 0.0)
	assert.False(t, ok)
}

func TestBestMatchExactAfterNormalization(t *testing.T) {
	dir := &fakePoliticianDirectory{snapshot: map[string]any{
		"pol_123": map[string]any{"name": "Jane Doe"},
	}}
	index := loadTestIndex(t, dir)

	key, ok := index.BestMatch("JANE DOE", 0.92)
	require.True(t, ok)
	assert.Equal(t, "pol_123", key)
}

func TestBestMatchTokenSortedOrdering(t *testing.T) {
	dir := &fakePoliticianDirectory{snapshot: map[string]any{
		"pol_123": map[string]any{"name": "Jane Doe"},
	}}
	index := loadTestIndex(t, dir)

	key, ok := index.BestMatch("Doe, Jane", 0.92)
	require.True(t, ok)
	assert.Equal(t, "pol_123", key)
}

func TestBestMatchBelowThresholdMisses(t *testing.T) {
	dir := &fakePoliticianDirectory{snapshot: map[string]any{
		"pol_9": map[string]any{"name": "Alexandra Smith"},
	}}
	index := loadTestIndex(t, dir)

	_, ok := index.BestMatch("Alex Smith", 0.92)
	assert.False(t, ok)
}

func TestBestMatchEmptyQueryMisses(t *testing.T) {
	dir := &fakePoliticianDirectory{snapshot: map[string]any{
		"pol_1": map[string]any{"name": "Jane Doe"},
	}}
	index := loadTestIndex(t, dir)

	_, ok := index.BestMatch("...", 0.92)
	assert.False(t, ok)
}
