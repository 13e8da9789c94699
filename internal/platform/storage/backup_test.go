package storage

import (
	"context"
	"testing"
	"time"

	gcs "cloud.google.com/go/storage"
)

func TestNewMappingBackupValidates(t *testing.T) {
	if _, err := NewMappingBackup(nil, "bucket"); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewMappingBackup(&gcs.Client{}, "  "); err == nil {
		t.Fatal("expected error for empty bucket")
	}
}

func TestUploadRejectsEmptyPayload(t *testing.T) {
	backup, err := NewMappingBackup(&gcs.Client{}, "backups")
	if err != nil {
		t.Fatalf("NewMappingBackup: %v", err)
	}
	if err := backup.Upload(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestObjectNameIsTimestampedUnderPrefix(t *testing.T) {
	ts := time.Date(2026, 3, 2, 6, 30, 0, 0, time.UTC)
	backup, err := NewMappingBackup(&gcs.Client{}, "backups",
		WithObjectPrefix("/snapshots/"),
		WithClock(func() time.Time { return ts }),
	)
	if err != nil {
		t.Fatalf("NewMappingBackup: %v", err)
	}

	got := backup.objectName(ts)
	want := "snapshots/politician_mapping-20260302T063000Z.json"
	if got != want {
		t.Fatalf("objectName = %q, want %q", got, want)
	}
}
