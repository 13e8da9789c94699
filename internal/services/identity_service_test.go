package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voterlens/polisync/internal/domain"
)

func newTestResolver(t *testing.T, repo *fakeMappingRepository, dir *fakePoliticianDirectory) *IdentityResolver {
	t.Helper()
	if dir == nil {
		dir = &fakePoliticianDirectory{}
	}
	resolver, err := NewIdentityResolver(IdentityResolverDeps{
		Mappings: newTestMappingStore(t, repo),
		Index:    loadTestIndex(t, dir),
	})
	require.NoError(t, err)
	return resolver
}

func TestNewIdentityResolverRequiresMappings(t *testing.T) {
	_, err := NewIdentityResolver(IdentityResolverDeps{})
	assert.Error(t, err)
}

func TestResolveEmptyNameIsInvalid(t *testing.T) {
	resolver := newTestResolver(t, &fakeMappingRepository{}, nil)

	_, err := resolver.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrIdentityInvalidInput)
}

func TestResolveMappingFileWinsOverIndex(t *testing.T) {
	repo := &fakeMappingRepository{entries: []domain.MappingEntry{
		{RawName: "Jane Doe", IdentityKey: "legacy_jane"},
	}}
	dir := &fakePoliticianDirectory{snapshot: map[string]any{
		"pol_123": map[string]any{"name": "Jane Doe"},
	}}
	resolver := newTestResolver(t, repo, dir)

	key, err := resolver.Resolve(context.Background(), "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "legacy_jane", key)
	assert.Zero(t, repo.saveCalls, "mapping hit must not rewrite the file")
}

func TestResolveIndexMatchIsRecorded(t *testing.T) {
	repo := &fakeMappingRepository{}
	dir := &fakePoliticianDirectory{snapshot: map[string]any{
		"pol_123": map[string]any{"name": "Jane Doe"},
	}}
	resolver := newTestResolver(t, repo, dir)

	key, err := resolver.Resolve(context.Background(), "Doe, Jane")
	require.NoError(t, err)
	assert.Equal(t, "pol_123", key)

	require.Equal(t, 1, repo.saveCalls)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, "Doe, Jane", repo.saved[0].RawName, "raw spelling is the mapping key")
	assert.Equal(t, "pol_123", repo.saved[0].IdentityKey)
}

func TestResolveFallsBackToSlug(t *testing.T) {
	repo := &fakeMappingRepository{}
	resolver := newTestResolver(t, repo, nil)

	key, err := resolver.Resolve(context.Background(), "Robert A. Smith Jr.")
	require.NoError(t, err)
	assert.Equal(t, "robert_a_smith", key)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, "Robert A. Smith Jr.", repo.saved[0].RawName)
}

func TestResolveSecondCallPerformsNoWrite(t *testing.T) {
	repo := &fakeMappingRepository{}
	resolver := newTestResolver(t, repo, nil)

	first, err := resolver.Resolve(context.Background(), "Jane Doe")
	require.NoError(t, err)
	require.Equal(t, 1, repo.saveCalls)

	second, err := resolver.Resolve(context.Background(), "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.saveCalls, "resolution is idempotent once recorded")
}

func TestResolvePersistFailureStillReturnsKey(t *testing.T) {
	repo := &fakeMappingRepository{saveErr: errors.New("disk full")}
	resolver := newTestResolver(t, repo, nil)

	key, err := resolver.Resolve(context.Background(), "Jane Doe")
	assert.Equal(t, "jane_doe", key)
	assert.ErrorIs(t, err, ErrMappingPersist)
}

func TestResolveFuzzyMappingHit(t *testing.T) {
	repo := &fakeMappingRepository{entries: []domain.MappingEntry{
		{RawName: "Jane M Doe", IdentityKey: "pol_7"},
	}}
	resolver, err := NewIdentityResolver(IdentityResolverDeps{
		Mappings:         newTestMappingStore(t, repo),
		Index:            loadTestIndex(t, &fakePoliticianDirectory{}),
		MappingThreshold: 0.80,
	})
	require.NoError(t, err)

	key, err := resolver.Resolve(context.Background(), "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "pol_7", key)
	assert.Zero(t, repo.saveCalls)
}
