package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/voterlens/polisync/internal/domain"
	"github.com/voterlens/polisync/internal/platform/config"
	"github.com/voterlens/polisync/internal/platform/observability"
	"github.com/voterlens/polisync/internal/platform/rtdb"
	"github.com/voterlens/polisync/internal/platform/secrets"
	"github.com/voterlens/polisync/internal/repositories"
	filerepo "github.com/voterlens/polisync/internal/repositories/file"
	rtdbrepo "github.com/voterlens/polisync/internal/repositories/rtdb"
	"github.com/voterlens/polisync/internal/services"
)

// app bundles the wired collaborators shared by the commands. Close releases
// them in reverse construction order.
type app struct {
	logger   *zap.Logger
	cfg      config.Config
	provider *rtdb.Provider
	mappings *services.MappingStore
	resolver *services.IdentityResolver
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// readOnlyMappingRepository loads the mapping file but never writes it back.
// Used by resolve --dry-run.
type readOnlyMappingRepository struct {
	repositories.MappingRepository
}

func (readOnlyMappingRepository) Save(context.Context, []domain.MappingEntry) error { return nil }

func newApp(ctx context.Context, opts *RootOptions, readOnly bool) (*app, error) {
	baseLogger, err := observability.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("initialise logger: %w", err)
	}

	a := &app{logger: baseLogger.Named("polisync")}
	a.closers = append(a.closers, func() { _ = baseLogger.Sync() })

	envValues, err := config.EnvironmentValues(config.WithEnvFile(opts.EnvFile))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("read environment values: %w", err)
	}

	fetcher, err := secrets.NewFetcher(ctx,
		secrets.WithLogger(a.logger.Named("secrets")),
		secrets.WithDefaultProject(envValues["POLISYNC_FIREBASE_PROJECT_ID"]),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initialise secret fetcher: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := fetcher.Close(); err != nil {
			a.logger.Warn("secret fetcher close error", zap.Error(err))
		}
	})

	cfg, err := config.Load(ctx,
		config.WithEnvFile(opts.EnvFile),
		config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	a.cfg = cfg

	a.provider = rtdb.NewProvider(cfg.Firebase)
	a.closers = append(a.closers, a.provider.Close)

	var mappingRepo repositories.MappingRepository
	fileRepo, err := filerepo.NewMappingRepository(cfg.Matching.MappingFile)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open mapping file: %w", err)
	}
	mappingRepo = fileRepo
	if readOnly {
		mappingRepo = readOnlyMappingRepository{MappingRepository: fileRepo}
	}

	a.mappings, err = services.NewMappingStore(ctx, services.MappingStoreDeps{
		Repository: mappingRepo,
		Logger:     a.logger.Named("mappings"),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load mapping store: %w", err)
	}

	directory, err := rtdbrepo.NewPoliticianDirectory(a.provider, cfg.Matching.PoliticiansPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initialise politician directory: %w", err)
	}
	index := services.LoadPoliticianIndex(ctx, services.PoliticianIndexDeps{
		Directory: directory,
		Logger:    a.logger.Named("index"),
	})

	a.resolver, err = services.NewIdentityResolver(services.IdentityResolverDeps{
		Mappings:         a.mappings,
		Index:            index,
		Logger:           a.logger.Named("identity"),
		MappingThreshold: cfg.Matching.MappingThreshold,
		IndexThreshold:   cfg.Matching.IndexThreshold,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("initialise identity resolver: %w", err)
	}

	return a, nil
}
