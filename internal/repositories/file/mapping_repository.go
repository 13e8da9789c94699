// Package file persists the politician name mapping as a flat, pretty-printed
// JSON object on local disk. The file is the single source of truth for
// reproducible identity resolution, so entry order from the file is preserved
// in memory and every mutation rewrites the whole file.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/voterlens/polisync/internal/domain"
)

// DefaultMappingFile is the conventional mapping file location.
const DefaultMappingFile = "politician_mapping.json"

// MappingRepository stores mapping entries in a single JSON file.
type MappingRepository struct {
	path string
}

// NewMappingRepository constructs a repository backed by the given file path.
func NewMappingRepository(path string) (*MappingRepository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("mapping repository: file path is required")
	}
	return &MappingRepository{path: path}, nil
}

// Path reports the backing file location.
func (r *MappingRepository) Path() string {
	return r.path
}

// Load reads the persisted table, preserving the key order of the file. A
// missing file is an empty table; malformed content is an error the caller
// may choose to recover from.
func (r *MappingRepository) Load(_ context.Context) ([]domain.MappingEntry, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mapping repository: read %s: %w", r.path, err)
	}
	entries, err := DecodeMappings(data)
	if err != nil {
		return nil, fmt.Errorf("mapping repository: parse %s: %w", r.path, err)
	}
	return entries, nil
}

// Save rewrites the full table. The write is not atomic; a crash mid-write can
// corrupt the file, which the next Load treats as an empty starting mapping.
func (r *MappingRepository) Save(_ context.Context, entries []domain.MappingEntry) error {
	if err := os.WriteFile(r.path, EncodeMappings(entries), 0o644); err != nil {
		return fmt.Errorf("mapping repository: write %s: %w", r.path, err)
	}
	return nil
}

// DecodeMappings parses a flat JSON object into entries, keeping key order.
// encoding/json maps would lose the order, so the object is walked token by
// token instead.
func DecodeMappings(data []byte) ([]domain.MappingEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var entries []domain.MappingEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value for key %q: %w", key, err)
		}
		entries = append(entries, domain.MappingEntry{RawName: key, IdentityKey: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return entries, nil
}

// EncodeMappings renders entries as a pretty-printed flat JSON object in
// entry order, matching the layout prior tooling expects.
func EncodeMappings(entries []domain.MappingEntry) []byte {
	if len(entries) == 0 {
		return []byte("{}")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  ")
		key, _ := json.Marshal(entry.RawName)
		buf.Write(key)
		buf.WriteString(": ")
		value, _ := json.Marshal(entry.IdentityKey)
		buf.Write(value)
	}
	buf.WriteString("\n}")
	return buf.Bytes()
}
