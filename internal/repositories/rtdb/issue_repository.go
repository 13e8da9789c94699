package rtdb

import (
	"context"
	"errors"
	"fmt"

	platformrtdb "github.com/voterlens/polisync/internal/platform/rtdb"
)

// IssueWriter overwrites the politician issues subtree with each run's result.
type IssueWriter struct {
	provider *platformrtdb.Provider
	path     string
}

// NewIssueWriter constructs a writer targeting the given path.
func NewIssueWriter(provider *platformrtdb.Provider, path string) (*IssueWriter, error) {
	if provider == nil {
		return nil, errors.New("issue writer: rtdb provider is required")
	}
	return &IssueWriter{provider: provider, path: normalizePath(path, "/politician_issues")}, nil
}

// ReplaceAll sets the subtree to exactly the supplied payload, removing
// whatever was stored there before.
func (w *IssueWriter) ReplaceAll(ctx context.Context, issues map[string]map[string]int) error {
	client, err := w.provider.Client(ctx)
	if err != nil {
		return err
	}
	if err := client.NewRef(w.path).Set(ctx, issues); err != nil {
		return fmt.Errorf("issue writer: write %s: %w", w.path, err)
	}
	return nil
}

// Path reports the subtree location.
func (w *IssueWriter) Path() string {
	return w.path
}
