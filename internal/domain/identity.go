package domain

import "time"

// MappingEntry pairs a raw candidate name, exactly as first seen in the
// analytics feed, with the politician identity key it resolved to. The raw
// string is the storage key on purpose: the mapping file must replay
// byte-for-byte across runs, even when two raw spellings share a canonical
// form.
type MappingEntry struct {
	RawName     string
	IdentityKey string
}

// SyncSummary reports the outcome of one pipeline run.
type SyncSummary struct {
	RunID       string
	StartedAt   time.Time
	Duration    time.Duration
	Rows        int
	SkippedRows int
	Politicians int
}
