package services

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/voterlens/polisync/internal/platform/textutil"
	"github.com/voterlens/polisync/internal/repositories"
)

// display name fields checked on each directory record, in priority order.
var displayNameFields = []string{"name", "full_name", "politician_name", "display_name"}

// PoliticianIndex is a one-time snapshot of the remote politician directory,
// keyed by canonical display name. It is loaded once per run and never
// refreshed; a long-running process must restart to see new identities.
type PoliticianIndex struct {
	logger  *zap.Logger
	entries []indexEntry
	byNorm  map[string]int
}

type indexEntry struct {
	normalized string
	identity   string
}

// PoliticianIndexDeps wires the directory reader and logger.
type PoliticianIndexDeps struct {
	Directory repositories.PoliticianDirectory
	Logger    *zap.Logger
}

// LoadPoliticianIndex builds the snapshot. Any load failure is non-fatal and
// yields an empty index, letting resolution degrade to synthetic IDs. Records
// with no usable display name are skipped. Directory keys are walked in
// lexicographic order so duplicate canonical names resolve deterministically.
func LoadPoliticianIndex(ctx context.Context, deps PoliticianIndexDeps) *PoliticianIndex {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	index := &PoliticianIndex{
		logger: logger,
		byNorm: make(map[string]int),
	}

	if deps.Directory == nil {
		return index
	}

	snap, err := deps.Directory.Snapshot(ctx)
	if err != nil {
		logger.Warn("failed to load politician index (non-fatal)", zap.Error(err))
		return index
	}

	ids := make([]string, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if id == "" {
			continue
		}
		payload, ok := snap[id].(map[string]any)
		if !ok {
			continue
		}
		name := displayName(payload)
		if name == "" {
			continue
		}
		normalized := textutil.NormalizeName(name)
		if normalized == "" {
			continue
		}
		if pos, exists := index.byNorm[normalized]; exists {
			index.entries[pos].identity = id
			continue
		}
		index.entries = append(index.entries, indexEntry{normalized: normalized, identity: id})
		index.byNorm[normalized] = len(index.entries) - 1
	}

	if len(index.entries) > 0 {
		logger.Info("loaded politician index", zap.Int("count", len(index.entries)))
	}
	return index
}

// BestMatch finds the identity whose directory name best matches the raw
// name: canonical-exact first, otherwise the highest similarity at or above
// the threshold, ties broken by index order. An empty index never matches.
func (ix *PoliticianIndex) BestMatch(rawName string, threshold float64) (string, bool) {
	if ix == nil || len(ix.entries) == 0 {
		return "", false
	}

	query := textutil.NormalizeName(rawName)
	if query == "" {
		return "", false
	}

	if pos, ok := ix.byNorm[query]; ok {
		return ix.entries[pos].identity, true
	}

	bestID := ""
	bestScore := 0.0
	for _, entry := range ix.entries {
		score := textutil.Similarity(query, entry.normalized)
		if score > bestScore {
			bestScore = score
			bestID = entry.identity
		}
	}

	if bestID != "" && bestScore >= threshold {
		ix.logger.Debug("fuzzy index match",
			zap.String("name", rawName),
			zap.String("identity", bestID),
			zap.Float64("score", bestScore),
		)
		return bestID, true
	}
	return "", false
}

// Len reports the number of distinct indexed names.
func (ix *PoliticianIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

func displayName(payload map[string]any) string {
	for _, field := range displayNameFields {
		if value, ok := payload[field].(string); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
