package repositories

import (
	"context"

	"github.com/voterlens/polisync/internal/domain"
)

// MappingRepository persists the raw-name to identity-key table that makes
// resolution reproducible across runs.
type MappingRepository interface {
	// Load reads the full persisted table in its stored order. A missing
	// file yields an empty slice, not an error.
	Load(ctx context.Context) ([]domain.MappingEntry, error)
	// Save rewrites the full persisted table. Failures must propagate.
	Save(ctx context.Context, entries []domain.MappingEntry) error
	// Path reports the location of the backing file.
	Path() string
}

// PoliticianDirectory reads the remote politician identity collection.
type PoliticianDirectory interface {
	// Snapshot returns the raw subtree keyed by politician ID. Values are
	// untyped; malformed records are skipped by the consumer.
	Snapshot(ctx context.Context) (map[string]any, error)
}

// IssueWriter persists the final grouped issue positions, replacing the
// entire subtree at the configured path.
type IssueWriter interface {
	ReplaceAll(ctx context.Context, issues map[string]map[string]int) error
}

// IssueSource executes a query against the tabular source and materialises
// the result set as ordered column-name to value records.
type IssueSource interface {
	QueryRows(ctx context.Context, query string) ([]map[string]any, error)
}
