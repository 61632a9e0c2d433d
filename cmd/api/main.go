// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/mrstore-pos/internal/adapters/db"
	redis_a "github.com/ammerola/mrstore-pos/internal/adapters/redis_adapter"
	"github.com/ammerola/mrstore-pos/internal/adapters/storage"
	"github.com/ammerola/mrstore-pos/internal/core/services"
	"github.com/ammerola/mrstore-pos/internal/handlers"
	"github.com/ammerola/mrstore-pos/internal/handlers/middleware"
	"github.com/ammerola/mrstore-pos/internal/pkg/config"
	"github.com/ammerola/mrstore-pos/internal/pkg/logger"
	"github.com/ammerola/mrstore-pos/internal/workers"
)

// Build information injected at compile time
var (
	Version   = "dev"
	BuildTime = "unknown"
	GoVersion = "unknown"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	rollback := flag.Bool("rollback", false, "roll back the last migration and exit")
	flag.Parse()

	slogger := logger.SetupLogger(&logger.LogConfig{Level: "debug", Format: "json"}).Slog()

	slogger.Info("starting mrstore point of sale",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("go_version", GoVersion),
	)

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	secrets, err := config.NewSecretsProvider(ctx, cfg.AWS, slogger)
	if err != nil {
		slogger.Error("failed to initialize secrets provider", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.ApplySecrets(ctx, secrets); err != nil {
		slogger.Error("failed to apply secrets", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(&logger.LogConfig{
		Level:          cfg.App.LogLevel,
		Format:         cfg.App.LogFormat,
		AddSource:      cfg.App.Debug,
		Environment:    cfg.App.Environment,
		ServiceName:    cfg.App.Name,
		ServiceVersion: Version,
	}).Slog()
	slogger.Info("configuration loaded",
		slog.String("environment", cfg.App.Environment),
		slog.String("log_level", cfg.App.LogLevel),
		slog.String("timezone", cfg.App.Timezone),
	)

	if *migrateOnly || *rollback {
		if err := migrateCommand(ctx, cfg, *rollback, slogger); err != nil {
			slogger.Error("migration command failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	// Migrations run automatically outside production
	if !cfg.IsProduction() {
		if err := runMigrations(ctx, cfg, slogger); err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	deps, err := initializeDependencies(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer deps.cleanup()

	server := setupHTTPServer(cfg, deps, slogger)

	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go pruneDrafts(pruneCtx, deps.sales, cfg.App.DraftTTL, slogger)

	serverErrors := make(chan error, 1)
	go func() {
		slogger.Info("starting HTTP server",
			slog.String("address", cfg.GetServerAddress()),
			slog.Bool("tls", cfg.Server.TLSEnabled),
		)

		if cfg.Server.TLSEnabled {
			serverErrors <- server.ListenAndServeTLS(cfg.Server.TLSCertFile, cfg.Server.TLSKeyFile)
		} else {
			serverErrors <- server.ListenAndServe()
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slogger.Error("server error", slog.String("error", err.Error()))
		}
	case sig := <-shutdown:
		slogger.Info("shutdown signal received",
			slog.String("signal", sig.String()),
		)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
			server.Close()
		}

		if open := deps.sales.OpenDrafts(); open > 0 {
			slogger.Warn("discarding open drafts on shutdown", slog.Int("drafts", open))
		}

		slogger.Info("server shutdown complete")
	}
}

// dependencies holds all application dependencies
type dependencies struct {
	database       *db.Database
	redisClient    *redis.Client
	cache          *redis_a.Cache
	asynqClient    *asynq.Client
	asynqInspector *asynq.Inspector
	sales          *services.SaleService
	handlers       *handlers.Handlers
}

func (d *dependencies) cleanup() {
	if d.asynqInspector != nil {
		d.asynqInspector.Close()
	}
	if d.asynqClient != nil {
		d.asynqClient.Close()
	}
	if d.redisClient != nil {
		d.redisClient.Close()
	}
	if d.database != nil {
		d.database.Close()
	}
}

func initializeDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*dependencies, error) {
	deps := &dependencies{}

	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	logger.Info("connecting to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Name),
	)

	database, err := db.NewDatabase(ctx, databaseConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.database = database

	logger.Info("connecting to Redis",
		slog.String("host", cfg.Redis.Host),
		slog.String("port", cfg.Redis.Port),
	)

	redisClient := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.Addr(),
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
		DialTimeout:     cfg.Redis.DialTimeout,
		ReadTimeout:     cfg.Redis.ReadTimeout,
		WriteTimeout:    cfg.Redis.WriteTimeout,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
		ConnMaxIdleTime: cfg.Redis.IdleTimeout,
	})
	deps.redisClient = redisClient

	// The cache degrades to direct reads, so an unreachable Redis is not fatal
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, reports will not be cached",
			slog.String("error", err.Error()))
	}
	deps.cache = redis_a.NewCache(redisClient, cfg.Redis.TTL, logger)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	deps.asynqClient = asynq.NewClient(asynqRedisOpt)
	deps.asynqInspector = asynq.NewInspector(asynqRedisOpt)
	events := workers.NewTaskPublisher(deps.asynqClient)

	archives, err := storage.New(ctx, archiveOptions(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize archive storage: %w", err)
	}

	opts := services.Options{
		Location:  loc,
		Now:       time.Now,
		ReportTTL: cfg.Redis.TTL,
	}
	store := db.NewStore(database, loc, logger)

	deps.sales = services.NewSaleService(store, deps.cache, events, opts, logger)
	reports := services.NewReportService(store, deps.cache, opts, logger)
	closings := services.NewClosingService(store, events, opts, logger)
	catalog := services.NewCatalogService(store, deps.cache, logger)

	deps.handlers = &handlers.Handlers{
		Drafts:   handlers.NewDraftHandler(deps.sales, logger),
		Reports:  handlers.NewReportHandler(reports, loc, logger),
		Closings: handlers.NewClosingHandler(closings, archives, loc, logger),
		Catalog:  handlers.NewCatalogHandler(catalog, logger),
		Export:   handlers.NewExportHandler(catalog, reports, closings, loc, logger),
	}
	if cfg.Server.EnableHealthCheck {
		deps.handlers.Health = handlers.NewHealthHandler(handlers.HealthDeps{
			DB:          database,
			Redis:       redisClient,
			Queues:      deps.asynqInspector,
			Cache:       deps.cache,
			Drafts:      deps.sales,
			Version:     Version,
			Environment: cfg.App.Environment,
		}, logger)
	}

	logger.Info("all dependencies initialized successfully",
		slog.String("archive_backend", cfg.App.Archive))
	return deps, nil
}

func setupHTTPServer(cfg *config.Config, deps *dependencies, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	deps.handlers.RegisterRoutes(mux)

	mws := []func(http.Handler) http.Handler{
		middleware.RequestID(cfg.Security.RequestIDHeader),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.RateLimit(cfg.Security.RateLimitRequests, cfg.Security.RateLimitDuration),
	}
	if len(cfg.Security.AllowedOrigins) > 0 {
		mws = append(mws, middleware.CORS(cfg.Security.AllowedOrigins))
	}
	if cfg.Security.SecureHeaders {
		mws = append(mws, middleware.SecureHeaders)
	}
	if cfg.Server.RequestTimeout > 0 {
		mws = append(mws, middleware.Timeout(cfg.Server.RequestTimeout))
	}
	mws = append(mws, middleware.Compression, middleware.ContentTypeJSON)

	return &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        middleware.Chain(mux, mws...),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

// pruneDrafts discards drafts untouched for longer than ttl
func pruneDrafts(ctx context.Context, sales *services.SaleService, ttl time.Duration, logger *slog.Logger) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sales.PruneDrafts(ctx, ttl); n > 0 {
				logger.InfoContext(ctx, "pruned stale drafts", slog.Int("drafts", n))
			}
		}
	}
}

func databaseConfig(cfg *config.Config) *db.Config {
	return &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     cfg.Database.MaxConnections,
		MinConnections:     cfg.Database.MinConnections,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}
}

func archiveOptions(cfg *config.Config) storage.Options {
	return storage.Options{
		Backend: cfg.App.Archive,
		Dir:     cfg.App.ArchiveDir,
		S3: &storage.S3Config{
			Region:          cfg.AWS.Region,
			Bucket:          cfg.AWS.S3Bucket,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Endpoint:        cfg.AWS.S3Endpoint,
			UsePathStyle:    cfg.AWS.UsePathStyle,
		},
	}
}

func migrationConfig(cfg *config.Config) *db.MigrationConfig {
	return &db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
		TableName:   "schema_migrations",
		SchemaName:  "public",
	}
}

func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("running database migrations")
	return db.RunMigrationsWithRetry(ctx, migrationConfig(cfg), logger, 3)
}

func migrateCommand(ctx context.Context, cfg *config.Config, rollback bool, logger *slog.Logger) error {
	if !rollback {
		return runMigrations(ctx, cfg, logger)
	}

	migrator, err := db.NewMigrator(migrationConfig(cfg), logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Down(ctx); err != nil {
		return err
	}
	version, dirty, err := migrator.Version(ctx)
	if err != nil {
		return err
	}
	logger.Info("rollback complete",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty))
	return nil
}
