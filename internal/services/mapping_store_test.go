package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voterlens/polisync/internal/domain"
)

type fakeMappingRepository struct {
	entries   []domain.MappingEntry
	loadErr   error
	saveErr   error
	saveCalls int
	saved     []domain.MappingEntry
}

func (r *fakeMappingRepository) Load(context.Context) ([]domain.MappingEntry, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	out := make([]domain.MappingEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *fakeMappingRepository) Save(_ context.Context, entries []domain.MappingEntry) error {
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = make([]domain.MappingEntry, len(entries))
	copy(r.saved, entries)
	return nil
}

func (r *fakeMappingRepository) Path() string { return "politician_mapping.json" }

func newTestMappingStore(t *testing.T, repo *fakeMappingRepository) *MappingStore {
	t.Helper()
	store, err := NewMappingStore(context.Background(), MappingStoreDeps{
		Repository: repo,
		Logger:     zap.NewNop(),
	})
	require.NoError(t, err)
	return store
}

func TestNewMappingStoreRequiresRepository(t *testing.T) {
	_, err := NewMappingStore(context.Background(), MappingStoreDeps{})
	assert.Error(t, err)
}

func TestNewMappingStoreSwallowsLoadFailure(t *testing.T) {
	repo := &fakeMappingRepository{loadErr: errors.New("corrupt file")}
	store := newTestMappingStore(t, repo)
	assert.Equal(t, 0, store.Len())
}

func TestLookupExactAfterNormalization(t *testing.T) {
	repo := &fakeMappingRepository{entries: []domain.MappingEntry{
		{RawName: "O'Brien, Jr.", IdentityKey: "pol_obrien"},
	}}
	store := newTestMappingStore(t, repo)

	key, ok := store.Lookup("obrien", 0.90)
	require.True(t, ok)
	assert.Equal(t, "pol_obrien", key)
}

func TestLookupExactBypassesScoring(t *testing.T) {
	// A later entry would score 1.0, but the earlier normalized-exact hit
	// must win without scoring at all.
	repo := &fakeMappingRepository{entries: []domain.MappingEntry{
		{RawName: "Jane Doe", IdentityKey: "exact_key"},
		{RawName: "jane doe", IdentityKey: "duplicate_key"},
	}}
	store := newTestMappingStore(t, repo)

	key, ok := store.Lookup("JANE DOE", 0.90)
	require.True(t, ok)
	assert.Equal(t, "exact_key", key)
}

func TestLookupFuzzyAboveThreshold(t *testing.T) {
	repo := &fakeMappingRepository{entries: []domain.MappingEntry{
		{RawName: "Jane M. Doe", IdentityKey: "pol_jane"},
	}}
	store := newTestMappingStore(t, repo)

	key, ok := store.Lookup("Jane Doe", 0.80)
	require.True(t, ok)
	assert.Equal(t, "pol_jane", key)
}

func TestLookupBelowThresholdMisses(t *testing.T) {
	repo := &fakeMappingRepository{entries: []domain.MappingEntry{
		{RawName: "Alexandra Smith", IdentityKey: "pol_9"},
	}}
	store := newTestMappingStore(t, repo)

	_, ok := store.Lookup("Alex Smith", 0.92)
	assert.False(t, ok)
}

func TestLookupTieBreaksByStoredOrder(t *testing.T) {
	// Both entries are equidistant from the query; the first wins.
	repo := &fakeMappingRepository{entries: []domain.MappingEntry{
		{RawName: "Jon Smythe A", IdentityKey: "first"},
		{RawName: "Jon Smythe B", IdentityKey: "second"},
	}}
	store := newTestMappingStore(t, repo)

	key, ok := store.Lookup("Jon Smythe C", 0.80)
	require.True(t, ok)
	assert.Equal(t, "first", key)
}

func TestLookupEmptyNameMisses(t *testing.T) {
	repo := &fakeMappingRepository{entries: []domain.MappingEntry{
		{RawName: "Jane Doe", IdentityKey: "pol_jane"},
	}}
	store := newTestMappingStore(t, repo)

	_, ok := store.Lookup("  ", 0.90)
	assert.False(t, ok)
}

func TestAddPersistsImmediately(t *testing.T) {
	repo := &fakeMappingRepository{}
	store := newTestMappingStore(t, repo)

	require.NoError(t, store.Add(context.Background(), "Jane Doe", "pol_jane"))
	assert.Equal(t, 1, repo.saveCalls)
	assert.Equal(t, []domain.MappingEntry{{RawName: "Jane Doe", IdentityKey: "pol_jane"}}, repo.saved)
}

func TestAddEmptyArgumentsIsWarnedNoOp(t *testing.T) {
	repo := &fakeMappingRepository{}
	store := newTestMappingStore(t, repo)

	require.NoError(t, store.Add(context.Background(), "", "pol_jane"))
	require.NoError(t, store.Add(context.Background(), "Jane Doe", ""))
	assert.Zero(t, repo.saveCalls)
	assert.Equal(t, 0, store.Len())
}

func TestAddPropagatesSaveFailure(t *testing.T) {
	repo := &fakeMappingRepository{saveErr: errors.New("disk full")}
	store := newTestMappingStore(t, repo)

	err := store.Add(context.Background(), "Jane Doe", "pol_jane")
	assert.Error(t, err)
}

func TestAddOverwritesExistingRawKey(t *testing.T) {
	repo := &fakeMappingRepository{entries: []domain.MappingEntry{
		{RawName: "Jane Doe", IdentityKey: "old"},
		{RawName: "John Smith", IdentityKey: "pol_john"},
	}}
	store := newTestMappingStore(t, repo)

	require.NoError(t, store.Add(context.Background(), "Jane Doe", "new"))
	entries := store.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.MappingEntry{RawName: "Jane Doe", IdentityKey: "new"}, entries[0])
}

func TestExportRendersPersistedForm(t *testing.T) {
	repo := &fakeMappingRepository{entries: []domain.MappingEntry{
		{RawName: "Jane Doe", IdentityKey: "pol_jane"},
	}}
	store := newTestMappingStore(t, repo)

	assert.Equal(t, "{\n  \"Jane Doe\": \"pol_jane\"\n}", string(store.Export()))
}
