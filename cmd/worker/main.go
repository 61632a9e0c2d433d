// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
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
	"github.com/ammerola/mrstore-pos/internal/pkg/config"
	"github.com/ammerola/mrstore-pos/internal/pkg/logger"
	"github.com/ammerola/mrstore-pos/internal/workers"
)

func main() {
	slogger := logger.SetupLogger(&logger.LogConfig{Level: "info", Format: "json"}).Slog()

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

	slogger = logger.SetupLogger(&logger.LogConfig{
		Level:          cfg.App.LogLevel,
		Format:         cfg.App.LogFormat,
		Environment:    cfg.App.Environment,
		ServiceName:    cfg.App.Name + "-worker",
		ServiceVersion: cfg.App.Version,
	}).Slog()
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr),
		slog.String("timezone", cfg.App.Timezone))

	loc, err := cfg.App.Location()
	if err != nil {
		slogger.Error("invalid store timezone", slog.String("error", err.Error()))
		os.Exit(1)
	}

	database, err := initDatabase(ctx, cfg, slogger)
	if err != nil {
		slogger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	defer redisClient.Close()
	cache := redis_a.NewCache(redisClient, cfg.Redis.TTL, slogger)

	archives, err := storage.New(ctx, storage.Options{
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
	}, slogger)
	if err != nil {
		slogger.Error("failed to initialize archive storage", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}

	// Closings made here enqueue their archive through the same queues
	client := asynq.NewClient(redisOpt)
	defer client.Close()
	events := workers.NewTaskPublisher(client)

	opts := services.Options{Location: loc, Now: time.Now, ReportTTL: cfg.Redis.TTL}
	store := db.NewStore(database, loc, slogger)
	reports := services.NewReportService(store, cache, opts, slogger)
	closings := services.NewClosingService(store, events, opts, slogger)
	catalog := services.NewCatalogService(store, cache, slogger)

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		StrictPriority:  cfg.Asynq.StrictPriority,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
		RetryDelayFunc:  exponentialBackoff,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc: healthCheck,
		Logger:          newAsynqLogger(slogger),
	})

	mux := asynq.NewServeMux()
	mux.Use(taskContext)

	closingProcessor := workers.NewClosingProcessor(closings, reports, archives, loc, slogger)
	mux.HandleFunc(workers.TypeCloseRegister, closingProcessor.CloseRegister)
	mux.HandleFunc(workers.TypeArchiveClosing, closingProcessor.ArchiveClosing)

	notificationProcessor := workers.NewNotificationProcessor(catalog, slogger)
	mux.HandleFunc(workers.TypeLowStock, notificationProcessor.LowStock)

	reportsProcessor := workers.NewReportsProcessor(reports, slogger)
	mux.HandleFunc(workers.TypeWarmReports, reportsProcessor.WarmReports)

	scheduler, err := newScheduler(redisOpt, loc, slogger)
	if err != nil {
		slogger.Error("failed to configure scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var closeScheduler *workers.CloseScheduler
	if cfg.App.CloseCron != "" {
		closeScheduler, err = workers.NewCloseScheduler(cfg.App.CloseCron, client, loc, slogger)
		if err != nil {
			slogger.Error("failed to configure nightly close", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Run(mux); err != nil {
			slogger.Error("failed to run worker server", slog.String("error", err.Error()))
			shutdown <- syscall.SIGTERM
		}
	}()

	if err := scheduler.Start(); err != nil {
		slogger.Error("failed to start scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if closeScheduler != nil {
		closeScheduler.Start()
	}

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues),
		slog.String("close_cron", cfg.App.CloseCron),
		slog.String("archive_backend", cfg.App.Archive))

	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	if closeScheduler != nil {
		closeScheduler.Stop()
	}
	scheduler.Shutdown()
	srv.Shutdown()
	slogger.Info("worker shutdown complete")
}

// newScheduler registers the hourly report warm. The nightly close runs on
// workers.CloseScheduler because its payload depends on the firing time.
func newScheduler(redisOpt asynq.RedisClientOpt, loc *time.Location, logger *slog.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: loc,
		Logger:   newAsynqLogger(logger),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				logger.Error("failed to enqueue scheduled task", slog.String("error", err.Error()))
				return
			}
			logger.Info("scheduled task enqueued",
				slog.String("type", info.Type),
				slog.String("task_id", info.ID))
		},
	})

	warm, err := workers.NewWarmReportsTask(workers.DefaultWarmDays)
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register("@hourly", warm); err != nil {
		return nil, fmt.Errorf("failed to register warm schedule: %w", err)
	}

	return scheduler, nil
}

func initDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*db.Database, error) {
	dbConfig := &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     5, // Fewer connections for worker
		MinConnections:     1,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}

	return db.NewDatabase(ctx, dbConfig, logger)
}

// taskContext tags the context so every log line carries the task
func taskContext(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		ctx = logger.With(ctx, logger.ContextKeyTaskType, t.Type())
		if id, ok := asynq.GetTaskID(ctx); ok {
			ctx = logger.With(ctx, logger.ContextKeyTaskID, id)
		}
		start := time.Now()
		err := next.ProcessTask(ctx, t)
		slog.DebugContext(ctx, "task processed",
			slog.Duration("duration", time.Since(start)),
			slog.Bool("ok", err == nil))
		return err
	})
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("payload", string(task.Payload())),
		slog.Int("retried", retried),
		slog.Int("max_retry", maxRetry),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, e error, t *asynq.Task) time.Duration {
	baseDelay := time.Second
	maxDelay := 10 * time.Minute
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

func healthCheck(err error) {
	if err != nil {
		slog.Error("worker health check failed", slog.String("error", err.Error()))
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
