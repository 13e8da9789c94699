package services

import (
	"context"
	"time"
)

// NameResolver resolves a raw candidate name to a stable identity key.
type NameResolver interface {
	Resolve(ctx context.Context, rawName string) (string, error)
}

// RunCompletedMessage summarises a finished sync run for downstream consumers.
type RunCompletedMessage struct {
	RunID       string        `json:"runId"`
	StartedAt   time.Time     `json:"startedAt"`
	Duration    time.Duration `json:"duration"`
	Rows        int           `json:"rows"`
	SkippedRows int           `json:"skippedRows"`
	Politicians int           `json:"politicians"`
}

// RunEventPublisher announces completed sync runs.
type RunEventPublisher interface {
	PublishRunCompleted(ctx context.Context, message RunCompletedMessage) (string, error)
}

// MappingExporter renders the current mapping table in its persisted form.
type MappingExporter interface {
	Export() []byte
}

// BackupUploader stores a mapping snapshot off-box after a successful run.
type BackupUploader interface {
	Upload(ctx context.Context, data []byte) error
}
