package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/voterlens/polisync/internal/domain"
	"github.com/voterlens/polisync/internal/platform/textutil"
	"github.com/voterlens/polisync/internal/repositories"
	"github.com/voterlens/polisync/internal/repositories/file"
)

var errMappingRepositoryRequired = errors.New("mapping: repository is required")

// MappingStore holds the persisted raw-name to identity-key table in memory
// and provides exact and fuzzy lookup over it. Entries keep their file order
// so repeated lookups tie-break identically across runs.
//
// Entries stay keyed by the raw string as first seen. Two raw spellings that
// share a canonical form each get their own entry; the normalized-exact scan
// in Lookup shadows the later one, but both remain in the file.
type MappingStore struct {
	repo   repositories.MappingRepository
	logger *zap.Logger

	entries []domain.MappingEntry
	byRaw   map[string]int
}

// MappingStoreDeps wires the persistence and logging dependencies.
type MappingStoreDeps struct {
	Repository repositories.MappingRepository
	Logger     *zap.Logger
}

// NewMappingStore loads the persisted table. A missing, corrupt, or unreadable
// file degrades to an empty table with a warning; it never fails construction.
func NewMappingStore(ctx context.Context, deps MappingStoreDeps) (*MappingStore, error) {
	if deps.Repository == nil {
		return nil, errMappingRepositoryRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := deps.Repository.Load(ctx)
	if err != nil {
		logger.Warn("failed to load mapping file, starting empty", zap.Error(err))
		entries = nil
	}

	byRaw := make(map[string]int, len(entries))
	for i, entry := range entries {
		byRaw[entry.RawName] = i
	}

	if len(entries) > 0 {
		logger.Debug("loaded mappings", zap.Int("count", len(entries)))
	}

	return &MappingStore{
		repo:    deps.Repository,
		logger:  logger,
		entries: entries,
		byRaw:   byRaw,
	}, nil
}

// Lookup finds the identity key for a raw name. Stored names whose canonical
// form equals the query's win outright, bypassing similarity scoring. Failing
// that, the single highest-scoring entry at or above the threshold wins, with
// ties broken by stored order.
func (s *MappingStore) Lookup(rawName string, threshold float64) (string, bool) {
	if strings.TrimSpace(rawName) == "" {
		return "", false
	}

	normalized := textutil.NormalizeName(rawName)

	for _, entry := range s.entries {
		if textutil.NormalizeName(entry.RawName) == normalized {
			return entry.IdentityKey, true
		}
	}

	bestKey := ""
	bestScore := 0.0
	found := false
	for _, entry := range s.entries {
		score := textutil.Similarity(normalized, textutil.NormalizeName(entry.RawName))
		if score > bestScore && score >= threshold {
			bestScore = score
			bestKey = entry.IdentityKey
			found = true
		}
	}

	if found {
		s.logger.Debug("fuzzy mapping match",
			zap.String("name", rawName),
			zap.String("identity", bestKey),
			zap.Float64("score", bestScore),
		)
	}
	return bestKey, found
}

// Add upserts an entry keyed by the exact raw string and immediately rewrites
// the persisted table. Empty arguments are rejected with a warning, not an
// error; a failed write propagates.
func (s *MappingStore) Add(ctx context.Context, rawName, identityKey string) error {
	if rawName == "" || identityKey == "" {
		s.logger.Warn("refusing to add invalid mapping",
			zap.String("name", rawName),
			zap.String("identity", identityKey),
		)
		return nil
	}

	if pos, ok := s.byRaw[rawName]; ok {
		s.entries[pos].IdentityKey = identityKey
	} else {
		s.entries = append(s.entries, domain.MappingEntry{RawName: rawName, IdentityKey: identityKey})
		s.byRaw[rawName] = len(s.entries) - 1
	}

	if err := s.repo.Save(ctx, s.entries); err != nil {
		return fmt.Errorf("mapping: persist: %w", err)
	}

	s.logger.Debug("added mapping", zap.String("name", rawName), zap.String("identity", identityKey))
	return nil
}

// Entries returns a copy of the table in stored order.
func (s *MappingStore) Entries() []domain.MappingEntry {
	out := make([]domain.MappingEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len reports the number of stored entries.
func (s *MappingStore) Len() int {
	return len(s.entries)
}

// Export renders the table in its persisted JSON form, for backups.
func (s *MappingStore) Export() []byte {
	return file.EncodeMappings(s.entries)
}
