package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/voterlens/polisync/internal/platform/textutil"
)

func defaultSlugger(raw string) string { return textutil.SlugifyName(raw) }

var (
	errIdentityMappingsRequired = errors.New("identity: mapping store is required")

	// ErrIdentityInvalidInput indicates the caller passed an empty name.
	ErrIdentityInvalidInput = errors.New("identity: name is required")

	// ErrMappingPersist indicates resolution succeeded but recording the
	// mapping did not. The returned key is still valid; only its durability
	// failed.
	ErrMappingPersist = errors.New("identity: mapping persist failed")
)

const (
	// DefaultMappingThreshold gates fuzzy matches against the local mapping file.
	DefaultMappingThreshold = 0.90
	// DefaultIndexThreshold gates fuzzy matches against the remote directory.
	// It is stricter: a false merge against the shared directory silently
	// conflates two real people, while the mapping file is operator-reviewed.
	DefaultIndexThreshold = 0.92
)

// IdentityResolver assigns a stable identity key to each raw candidate name
// using a fixed three-tier policy: the local mapping file, then the remote
// politician index, then a synthetic slug.
type IdentityResolver struct {
	mappings *MappingStore
	index    *PoliticianIndex
	logger   *zap.Logger

	mappingThreshold float64
	indexThreshold   float64
	slug             func(string) string
}

// IdentityResolverDeps wires the candidate pools and tuning for the resolver.
type IdentityResolverDeps struct {
	Mappings *MappingStore
	Index    *PoliticianIndex
	Logger   *zap.Logger

	MappingThreshold float64
	IndexThreshold   float64
	Slugger          func(string) string
}

// NewIdentityResolver constructs an IdentityResolver with the provided dependencies.
func NewIdentityResolver(deps IdentityResolverDeps) (*IdentityResolver, error) {
	if deps.Mappings == nil {
		return nil, errIdentityMappingsRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	mappingThreshold := deps.MappingThreshold
	if mappingThreshold <= 0 {
		mappingThreshold = DefaultMappingThreshold
	}
	indexThreshold := deps.IndexThreshold
	if indexThreshold <= 0 {
		indexThreshold = DefaultIndexThreshold
	}
	slug := deps.Slugger
	if slug == nil {
		slug = defaultSlugger
	}

	return &IdentityResolver{
		mappings:         deps.Mappings,
		index:            deps.Index,
		logger:           logger,
		mappingThreshold: mappingThreshold,
		indexThreshold:   indexThreshold,
		slug:             slug,
	}, nil
}

// Resolve returns the identity key for a raw name. The mapping file is
// consulted first and wins unconditionally; a hit there performs no writes,
// so repeated resolution is idempotent. A remote index match or a synthetic
// slug is recorded back into the mapping file before returning. When that
// write fails the key is still returned, wrapped with ErrMappingPersist so
// callers can distinguish durability failure from resolution failure.
func (r *IdentityResolver) Resolve(ctx context.Context, rawName string) (string, error) {
	if strings.TrimSpace(rawName) == "" {
		return "", ErrIdentityInvalidInput
	}

	if key, ok := r.mappings.Lookup(rawName, r.mappingThreshold); ok {
		return key, nil
	}

	if key, ok := r.index.BestMatch(rawName, r.indexThreshold); ok {
		r.logger.Info("mapped name to existing politician",
			zap.String("name", rawName),
			zap.String("identity", key),
		)
		if err := r.mappings.Add(ctx, rawName, key); err != nil {
			return key, fmt.Errorf("%w: %v", ErrMappingPersist, err)
		}
		return key, nil
	}

	r.logger.Warn("no mapping found, generating identity from name", zap.String("name", rawName))
	key := r.slug(rawName)
	if err := r.mappings.Add(ctx, rawName, key); err != nil {
		return key, fmt.Errorf("%w: %v", ErrMappingPersist, err)
	}
	return key, nil
}
