// Package rtdb implements the remote-store repositories against the Firebase
// Realtime Database.
package rtdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	platformrtdb "github.com/voterlens/polisync/internal/platform/rtdb"
)

// PoliticianDirectory reads the politician identity collection subtree.
type PoliticianDirectory struct {
	provider *platformrtdb.Provider
	path     string
}

// NewPoliticianDirectory constructs a directory reader for the given path.
func NewPoliticianDirectory(provider *platformrtdb.Provider, path string) (*PoliticianDirectory, error) {
	if provider == nil {
		return nil, errors.New("politician directory: rtdb provider is required")
	}
	return &PoliticianDirectory{provider: provider, path: normalizePath(path, "/politicians")}, nil
}

// Snapshot fetches the whole subtree keyed by politician ID. A subtree that is
// absent or not an object decodes to an empty map.
func (d *PoliticianDirectory) Snapshot(ctx context.Context) (map[string]any, error) {
	client, err := d.provider.Client(ctx)
	if err != nil {
		return nil, err
	}

	var snap map[string]any
	if err := client.NewRef(d.path).Get(ctx, &snap); err != nil {
		return nil, fmt.Errorf("politician directory: read %s: %w", d.path, err)
	}
	return snap, nil
}

// Path reports the directory location.
func (d *PoliticianDirectory) Path() string {
	return d.path
}

func normalizePath(path, fallback string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		path = fallback
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}
