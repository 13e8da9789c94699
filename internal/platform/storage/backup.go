package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
)

const backupContentType = "application/json"

var (
	errBackupClientRequired = errors.New("storage backup: client is required")
	errBackupBucketRequired = errors.New("storage backup: bucket name is required")
	errBackupEmptyPayload   = errors.New("storage backup: payload is empty")
)

// MappingBackup uploads mapping file snapshots to a Cloud Storage bucket.
// Each upload writes a new timestamped object so earlier snapshots survive.
type MappingBackup struct {
	client *gcs.Client
	bucket string
	prefix string
	now    func() time.Time
}

// BackupOption customises backup behaviour.
type BackupOption func(*MappingBackup)

// WithObjectPrefix sets the object name prefix (defaults to "mappings").
func WithObjectPrefix(prefix string) BackupOption {
	return func(b *MappingBackup) {
		if trimmed := strings.Trim(strings.TrimSpace(prefix), "/"); trimmed != "" {
			b.prefix = trimmed
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) BackupOption {
	return func(b *MappingBackup) {
		if clock != nil {
			b.now = clock
		}
	}
}

// NewMappingBackup constructs a Cloud Storage backed mapping backup.
func NewMappingBackup(client *gcs.Client, bucket string, opts ...BackupOption) (*MappingBackup, error) {
	if client == nil {
		return nil, errBackupClientRequired
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errBackupBucketRequired
	}

	backup := &MappingBackup{
		client: client,
		bucket: strings.TrimSpace(bucket),
		prefix: "mappings",
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(backup)
		}
	}
	return backup, nil
}

// Upload writes the mapping snapshot to a new timestamped object.
func (b *MappingBackup) Upload(ctx context.Context, data []byte) error {
	if b == nil || b.client == nil {
		return errBackupClientRequired
	}
	if len(data) == 0 {
		return errBackupEmptyPayload
	}

	object := b.objectName(b.now().UTC())
	writer := b.client.Bucket(b.bucket).Object(object).NewWriter(ctx)
	writer.ContentType = backupContentType

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("storage backup: write %s: %w", object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("storage backup: close %s: %w", object, err)
	}
	return nil
}

func (b *MappingBackup) objectName(ts time.Time) string {
	return path.Join(b.prefix, fmt.Sprintf("politician_mapping-%s.json", ts.Format("20060102T150405Z")))
}
