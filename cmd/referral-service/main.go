package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/LavaJover/shvark-referral-service/internal/app/background"
	"github.com/LavaJover/shvark-referral-service/internal/app/setup"
	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/delivery/http/handlers"
	"github.com/LavaJover/shvark-referral-service/internal/dispatcher"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init logger
	logger := setupLogger(cfg)
	// Init database
	db := postgres.MustInitDB(cfg)
	// Run migrations
	if err := migrate.RunMigrations(db, cfg.MigrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Init kafka publisher
	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	publisher := kafka.NewKafkaPublisher(brokers)
	defer publisher.Close()

	// Init metrics
	referralMetrics := metrics.NewReferralMetrics()

	// Init repositories
	accountRepo := repository.NewDefaultAccountRepository(db)
	transactionRepo := repository.NewDefaultTransactionRepository(db)
	commissionRepo := repository.NewDefaultCommissionRepository(db)
	levelRepo := repository.NewDefaultCommissionLevelRepository(db)
	rankSettingRepo := repository.NewDefaultRankSettingRepository(db)
	awardRepo := repository.NewDefaultRankAwardRepository(db)
	walletRepo := repository.NewDefaultWalletRepository(db)
	graphRepo := repository.NewDefaultReferralGraphRepository(db)
	jobRepo := repository.NewDefaultJobRepository(db)

	// Init dispatcher with per-lane policies
	jobDispatcher, err := dispatcher.NewDispatcher(jobRepo, lanePolicies(cfg), referralMetrics, logger)
	if err != nil {
		log.Fatalf("failed to init dispatcher: %v", err)
	}

	// Init usecases
	commissionUsecase := usecase.NewDefaultCommissionUsecase(
		accountRepo,
		graphRepo,
		levelRepo,
		rankSettingRepo,
		commissionRepo,
		transactionRepo,
		jobDispatcher,
		referralMetrics,
		logger,
	)
	rankUsecase := usecase.NewDefaultRankUsecase(
		accountRepo,
		rankSettingRepo,
		awardRepo,
		graphRepo,
		jobDispatcher,
		referralMetrics,
		logger,
	)
	disbursementUsecase, err := usecase.NewDefaultDisbursementUsecase(
		commissionRepo,
		accountRepo,
		awardRepo,
		publisher,
		referralMetrics,
		logger,
	)
	if err != nil {
		log.Fatalf("failed to init disbursement usecase: %v", err)
	}
	walletUsecase := usecase.NewDefaultWalletUsecase(walletRepo, commissionRepo)

	// Bind job handlers
	setup.RegisterJobHandlers(jobDispatcher, commissionUsecase, rankUsecase, disbursementUsecase)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start scheduled producers
	tasks := background.NewBackgroundTasks(jobDispatcher, cfg.Schedule, logger)
	tasks.StartAll(ctx)

	// Ops HTTP server
	mux := http.NewServeMux()
	opsHandler := handlers.NewOpsHandler(jobDispatcher, walletUsecase, logger)
	opsHandler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.OpsServer.Host, cfg.OpsServer.Port)
		logger.Info("ops server started", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("ops server failed: %v", err)
		}
	}()

	logger.Info("dispatcher starting",
		"critical_workers", cfg.Dispatcher.Critical.Concurrency,
		"batch_workers", cfg.Dispatcher.Batch.Concurrency,
		"default_workers", cfg.Dispatcher.Default.Concurrency)
	jobDispatcher.Start(ctx)
}

func lanePolicies(cfg *config.ReferralConfig) map[domain.Lane]dispatcher.LanePolicy {
	return map[domain.Lane]dispatcher.LanePolicy{
		domain.LaneCritical: lanePolicy(cfg.Dispatcher.Critical),
		domain.LaneBatch:    lanePolicy(cfg.Dispatcher.Batch),
		domain.LaneDefault:  lanePolicy(cfg.Dispatcher.Default),
	}
}

func lanePolicy(lc config.LaneConfig) dispatcher.LanePolicy {
	return dispatcher.LanePolicy{
		Concurrency:  lc.Concurrency,
		MaxAttempts:  lc.MaxAttempts,
		BackoffBase:  lc.BackoffBase,
		BackoffCap:   lc.BackoffCap,
		PollInterval: lc.PollInterval,
		JobTimeout:   lc.JobTimeout,
	}
}

func setupLogger(cfg *config.ReferralConfig) *slog.Logger {
	var level slog.Level
	switch cfg.LogConfig.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogConfig.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
