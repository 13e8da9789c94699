package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	cloudstorage "cloud.google.com/go/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voterlens/polisync/internal/platform/jobs"
	platformstorage "github.com/voterlens/polisync/internal/platform/storage"
	rtdbrepo "github.com/voterlens/polisync/internal/repositories/rtdb"
	snowflakerepo "github.com/voterlens/polisync/internal/repositories/snowflake"
	"github.com/voterlens/polisync/internal/services"
)

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run the full Snowflake to Firebase issues sync",
		Long: `Fetch candidate issue ratings from the configured Snowflake view,
resolve each candidate to a politician identity, and replace the issues
subtree in Firebase Realtime Database.

Example:
  polisync sync
  polisync sync --env-file ./deploy/.env`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), rootOpts)
		},
	}
	return cmd
}

func runSync(parent context.Context, opts *RootOptions) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, opts, false)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	source, err := snowflakerepo.Open(a.cfg.Snowflake, logger.Named("snowflake"))
	if err != nil {
		return fmt.Errorf("open snowflake connection: %w", err)
	}
	defer func() {
		if err := source.Close(); err != nil {
			logger.Warn("snowflake close error", zap.Error(err))
		}
	}()

	writer, err := rtdbrepo.NewIssueWriter(a.provider, a.cfg.Matching.IssuesPath)
	if err != nil {
		return fmt.Errorf("initialise issue writer: %w", err)
	}

	deps := services.IssueSyncDeps{
		Source:     source,
		Writer:     writer,
		Resolver:   a.resolver,
		Logger:     logger.Named("sync"),
		Exporter:   a.mappings,
		NameColumn: "POLITICIAN_NAME",
	}

	if topic := a.cfg.Pipeline.CompletionTopic; topic != "" {
		client, err := pubsub.NewClient(ctx, a.cfg.Firebase.ProjectID)
		if err != nil {
			return fmt.Errorf("initialise pubsub client: %w", err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("pubsub close error", zap.Error(err))
			}
		}()
		publisher, err := jobs.NewPubSubRunPublisher(client.Topic(topic))
		if err != nil {
			return fmt.Errorf("initialise run publisher: %w", err)
		}
		deps.Events = publisher
	}

	if bucket := a.cfg.Pipeline.BackupBucket; bucket != "" {
		client, err := cloudstorage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("initialise storage client: %w", err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("storage close error", zap.Error(err))
			}
		}()
		var backupOpts []platformstorage.BackupOption
		if prefix := a.cfg.Pipeline.BackupObject; prefix != "" {
			backupOpts = append(backupOpts, platformstorage.WithObjectPrefix(prefix))
		}
		backup, err := platformstorage.NewMappingBackup(client, bucket, backupOpts...)
		if err != nil {
			return fmt.Errorf("initialise mapping backup: %w", err)
		}
		deps.Backup = backup
	}

	svc, err := services.NewIssueSyncService(deps)
	if err != nil {
		return fmt.Errorf("initialise sync service: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, a.cfg.Pipeline.QueryTimeout)
	defer cancel()

	query := snowflakerepo.BuildUnpivotQuery(a.cfg.Snowflake.View, a.cfg.Snowflake.NameColumn)
	summary, err := svc.Run(runCtx, query)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d rows (%d skipped), %d politicians in %s\n",
		summary.RunID, summary.Rows, summary.SkippedRows, summary.Politicians,
		summary.Duration.Round(time.Millisecond))
	return nil
}
