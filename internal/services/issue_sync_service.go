package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/voterlens/polisync/internal/domain"
	"github.com/voterlens/polisync/internal/repositories"
)

var (
	errSyncSourceRequired   = errors.New("issue_sync: source is required")
	errSyncWriterRequired   = errors.New("issue_sync: writer is required")
	errSyncResolverRequired = errors.New("issue_sync: resolver is required")
)

const (
	defaultNameColumn  = "POLITICIAN_NAME"
	defaultIssueColumn = "ISSUE_COL"
	defaultValueColumn = "ISSUE_VALUE"
)

// IssueSyncService runs the full pipeline: fetch candidate-issue rows from the
// warehouse, resolve each candidate to an identity key, group the transformed
// positions per identity, and replace the remote issues subtree.
type IssueSyncService struct {
	source   repositories.IssueSource
	writer   repositories.IssueWriter
	resolver NameResolver
	logger   *zap.Logger

	events   RunEventPublisher
	backup   BackupUploader
	exporter MappingExporter
	now      func() time.Time
	newRunID func() string

	nameColumn  string
	issueColumn string
	valueColumn string
}

// IssueSyncDeps wires the pipeline collaborators. Events, Backup, and
// Exporter are optional; the rest are required.
type IssueSyncDeps struct {
	Source   repositories.IssueSource
	Writer   repositories.IssueWriter
	Resolver NameResolver
	Logger   *zap.Logger

	Events   RunEventPublisher
	Backup   BackupUploader
	Exporter MappingExporter
	Clock    func() time.Time

	NameColumn  string
	IssueColumn string
	ValueColumn string
}

// NewIssueSyncService constructs an IssueSyncService with the provided dependencies.
func NewIssueSyncService(deps IssueSyncDeps) (*IssueSyncService, error) {
	if deps.Source == nil {
		return nil, errSyncSourceRequired
	}
	if deps.Writer == nil {
		return nil, errSyncWriterRequired
	}
	if deps.Resolver == nil {
		return nil, errSyncResolverRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &IssueSyncService{
		source:      deps.Source,
		writer:      deps.Writer,
		resolver:    deps.Resolver,
		logger:      logger,
		events:      deps.Events,
		backup:      deps.Backup,
		exporter:    deps.Exporter,
		now:         func() time.Time { return clock().UTC() },
		newRunID:    func() string { return strings.ToLower(ulid.Make().String()) },
		nameColumn:  columnOrDefault(deps.NameColumn, defaultNameColumn),
		issueColumn: columnOrDefault(deps.IssueColumn, defaultIssueColumn),
		valueColumn: columnOrDefault(deps.ValueColumn, defaultValueColumn),
	}, nil
}

// Run executes the pipeline for the given query. Rows missing the name or
// issue column are skipped; a failed mapping persist keeps the resolved key
// and continues. The whole issues subtree is replaced in a single write.
func (s *IssueSyncService) Run(ctx context.Context, query string) (domain.SyncSummary, error) {
	started := s.now()
	runID := s.newRunID()
	logger := s.logger.With(zap.String("run_id", runID))

	logger.Info("starting politician issues sync")

	rows, err := s.source.QueryRows(ctx, query)
	if err != nil {
		return domain.SyncSummary{}, fmt.Errorf("issue_sync: fetch rows: %w", err)
	}

	grouped := make(map[string]map[string]int)
	skipped := 0
	for _, row := range rows {
		name := stringValue(row[s.nameColumn])
		issueCol := stringValue(row[s.issueColumn])
		if name == "" || issueCol == "" {
			skipped++
			continue
		}

		identity, err := s.resolver.Resolve(ctx, name)
		if err != nil {
			if errors.Is(err, ErrMappingPersist) {
				// The key is valid; only its durability failed.
				logger.Warn("mapping persist failed, continuing with resolved key",
					zap.String("name", name),
					zap.Error(err),
				)
			} else {
				skipped++
				logger.Warn("skipping unresolvable row", zap.String("name", name), zap.Error(err))
				continue
			}
		}

		issues, ok := grouped[identity]
		if !ok {
			issues = make(map[string]int)
			grouped[identity] = issues
		}
		issues[IssueDisplayName(issueCol)] = TransformIssueValue(row[s.valueColumn])
	}

	if err := s.writer.ReplaceAll(ctx, grouped); err != nil {
		return domain.SyncSummary{}, fmt.Errorf("issue_sync: store issues: %w", err)
	}

	summary := domain.SyncSummary{
		RunID:       runID,
		StartedAt:   started,
		Duration:    s.now().Sub(started),
		Rows:        len(rows),
		SkippedRows: skipped,
		Politicians: len(grouped),
	}

	logger.Info("stored politician issues",
		zap.Int("rows", summary.Rows),
		zap.Int("skipped", summary.SkippedRows),
		zap.Int("politicians", summary.Politicians),
	)

	s.publishCompletion(ctx, logger, summary)
	s.backupMappings(ctx, logger)

	return summary, nil
}

func (s *IssueSyncService) publishCompletion(ctx context.Context, logger *zap.Logger, summary domain.SyncSummary) {
	if s.events == nil {
		return
	}
	message := RunCompletedMessage{
		RunID:       summary.RunID,
		StartedAt:   summary.StartedAt,
		Duration:    summary.Duration,
		Rows:        summary.Rows,
		SkippedRows: summary.SkippedRows,
		Politicians: summary.Politicians,
	}
	if id, err := s.events.PublishRunCompleted(ctx, message); err != nil {
		logger.Warn("failed to publish run completion event", zap.Error(err))
	} else {
		logger.Debug("published run completion event", zap.String("message_id", id))
	}
}

func (s *IssueSyncService) backupMappings(ctx context.Context, logger *zap.Logger) {
	if s.backup == nil || s.exporter == nil {
		return
	}
	if err := s.backup.Upload(ctx, s.exporter.Export()); err != nil {
		logger.Warn("failed to back up mapping file", zap.Error(err))
	}
}

func columnOrDefault(column, fallback string) string {
	if trimmed := strings.TrimSpace(column); trimmed != "" {
		return trimmed
	}
	return fallback
}

func stringValue(value any) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}
