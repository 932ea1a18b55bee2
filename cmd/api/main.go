package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/trust-score-service/internal/config"
	"github.com/Dan9191/trust-score-service/internal/handler"
	"github.com/Dan9191/trust-score-service/internal/ingest"
	"github.com/Dan9191/trust-score-service/internal/integrations/oracle"
	"github.com/Dan9191/trust-score-service/internal/repository"
	"github.com/Dan9191/trust-score-service/internal/service"
	"github.com/Dan9191/trust-score-service/internal/utils/email"
	"github.com/Dan9191/trust-score-service/internal/validator"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize snapshot storage
	repo, closeRepo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize %s store: %v", cfg.StoreBackend, err)
	}
	defer closeRepo()

	orc, err := oracle.New(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize oracle: %v", err)
	}
	v, err := validator.New()
	if err != nil {
		logger.Fatalf("Failed to initialize validator: %v", err)
	}

	// Initialize layers
	registry := service.NewSessionRegistry(repo)
	analysisCfg := service.AnalysisConfig{
		Ingestor:  ingest.NewIngestor(cfg.MaxDocumentBytes),
		Oracle:    orc,
		Provider:  cfg.OracleProvider,
		Validator: v,
		Registry:  registry,
		Timeout:   cfg.OracleTimeout,
	}
	if cfg.SMTPEnabled() {
		analysisCfg.Notifier = email.NewSender(cfg, logger)
	}
	analysis := service.NewAnalysisService(analysisCfg, logger)
	svc := service.NewService(analysis, service.NewLoanService(registry, logger), registry, logger, cfg)
	h := handler.NewHandler(svc, logger, cfg.MaxDocumentBytes)

	sweeper := service.NewSweeper(registry, repo, cfg.SessionIdleTTL, cfg.SnapshotRetention, logger)
	if err := sweeper.Start(cfg.SweepSchedule); err != nil {
		logger.Fatalf("Failed to start sweeper: %v", err)
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(h, cfg, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.OracleTimeout + 30*time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"oracle": cfg.OracleProvider,
			"store":  cfg.StoreBackend,
		}).Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	<-sweeper.Stop().Done()
}

func openRepository(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.SnapshotRepository, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		repo := repository.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, func() { db.Close() }, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return repository.NewRedisRepository(client, cfg.SnapshotRetention), func() { client.Close() }, nil

	default:
		logger.Warn("Using in-memory snapshot store; snapshots are lost on restart")
		return repository.NewMemoryRepository(), func() {}, nil
	}
}
