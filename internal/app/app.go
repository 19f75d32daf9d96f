package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"ReadLater/internal/config"
	"ReadLater/internal/extraction"
	"ReadLater/internal/infrastructure/cache"
	"ReadLater/internal/infrastructure/firecrawl"
	"ReadLater/internal/infrastructure/llm"
	"ReadLater/internal/infrastructure/scheduler"
	"ReadLater/internal/infrastructure/storage"
	"ReadLater/internal/infrastructure/telegram"
	"ReadLater/internal/infrastructure/webpage"
	"ReadLater/internal/logging"
	"ReadLater/internal/ports"
	"ReadLater/internal/transport/rest"
	"ReadLater/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	Importer   *usecase.Importer
	Bulk       *usecase.BulkImporter
	Items      *usecase.Items
	Summaries  *usecase.Summaries
	Discovery  *usecase.Discovery
	reconciler *usecase.Reconciler
	notifier   ports.Notifier
}

// New opens the item store, migrates it and builds every use case.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	db, dialect, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, fmt.Errorf("open item store: %w", err)
	}
	if err := storage.Migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate item store: %w", err)
	}
	store := storage.NewItemRepository(db, dialect)

	fc := firecrawl.NewClient(firecrawl.Options{
		Endpoint:          cfg.Firecrawl.Endpoint,
		APIKey:            cfg.Firecrawl.APIKey,
		Timeout:           cfg.Extraction.Timeout,
		RequestsPerMinute: cfg.Extraction.RequestsPerMin,
		Logger:            baseLogger.With("component", "extraction.firecrawl"),
	})
	registry := extraction.NewRegistry()
	registry.Register(fc)
	registry.Register(webpage.NewProvider(nil, cfg.Extraction.UserAgent, baseLogger.With("component", "extraction.local")))

	provider, err := registry.Resolve(cfg.Extraction.Provider)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	baseLogger.Info("extraction provider selected", "provider", provider.Name())

	a := &Application{cfg: cfg, logger: baseLogger, db: db}

	var discoveryCache ports.DiscoveryCache
	if cfg.Redis.URL != "" {
		client, err := cache.Dial(ctx, cfg.Redis.URL)
		if err != nil {
			baseLogger.Warn("redis unavailable, discovery cache disabled", "error", err)
		} else {
			a.redis = client
			discoveryCache = cache.NewRedisCache(client, cfg.Discovery.CacheTTL)
		}
	}

	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		a.notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	a.Importer = usecase.NewImporter(usecase.ImporterDeps{
		Store:     store,
		Extractor: provider,
		Logger:    baseLogger.With("component", "importer"),
	})
	a.Bulk = usecase.NewBulkImporter(a.Importer, baseLogger.With("component", "bulk"))
	a.Items = usecase.NewItems(store)
	a.Summaries = usecase.NewSummaries(store, llm.NewChatClient(cfg.LLM), baseLogger.With("component", "summaries"))
	a.Discovery = usecase.NewDiscovery(usecase.DiscoveryDeps{
		Mapper:      provider,
		Searcher:    fc,
		Cache:       discoveryCache,
		MapLimit:    cfg.Discovery.MapLimit,
		SearchLimit: cfg.Discovery.SearchLimit,
		SearchTBS:   cfg.Discovery.SearchTBS,
		Logger:      baseLogger.With("component", "discovery"),
	})

	if cfg.Reconciler.Enabled {
		a.reconciler = usecase.NewReconciler(
			store,
			scheduler.NewTickerScheduler(cfg.Reconciler.Interval),
			cfg.Reconciler.StaleAfter,
			baseLogger.With("component", "reconciler"),
		)
	}
	return a, nil
}

// Notifier returns the configured notifier, or nil.
func (a *Application) Notifier() ports.Notifier {
	return a.notifier
}

// Serve runs the HTTP API and the optional reconciler until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	if a.reconciler != nil {
		if err := a.reconciler.Start(ctx); err != nil {
			return fmt.Errorf("start reconciler: %w", err)
		}
	}

	server := rest.NewServer(a.cfg.Server, a.cfg.Auth, rest.Services{
		Importer:  a.Importer,
		Bulk:      a.Bulk,
		Items:     a.Items,
		Summaries: a.Summaries,
		Discovery: a.Discovery,
		Notifier:  a.notifier,
	}, a.logger.With("component", "http"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		a.logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.shutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		serveErr = errors.Join(serveErr, fmt.Errorf("shutdown http server: %w", err))
	}
	if a.reconciler != nil {
		if err := a.reconciler.Stop(shutdownCtx); err != nil {
			serveErr = errors.Join(serveErr, fmt.Errorf("stop reconciler: %w", err))
		}
	}
	return serveErr
}

// ReconcileOnce runs a single stale-item sweep regardless of configuration.
func (a *Application) ReconcileOnce(ctx context.Context) (int64, error) {
	r := a.reconciler
	if r == nil {
		store, err := a.sweeper()
		if err != nil {
			return 0, err
		}
		r = usecase.NewReconciler(store, nil, a.cfg.Reconciler.StaleAfter, a.logger.With("component", "reconciler"))
	}
	return r.RunOnce(ctx, time.Now())
}

func (a *Application) sweeper() (ports.StaleItemSweeper, error) {
	dialect, err := storage.DialectFor(a.cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	return storage.NewItemRepository(a.db, dialect), nil
}

// Close releases the database and cache connections.
func (a *Application) Close() error {
	var err error
	if a.redis != nil {
		err = errors.Join(err, a.redis.Close())
	}
	if a.db != nil {
		err = errors.Join(err, a.db.Close())
	}
	return err
}

func (a *Application) shutdownTimeout() time.Duration {
	if a.cfg.Server.ShutdownTimeout > 0 {
		return a.cfg.Server.ShutdownTimeout
	}
	return 10 * time.Second
}
