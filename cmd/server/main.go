package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/dispatcher"
	"github.com/garyjia/lecturer-claims/internal/application/service"
	"github.com/garyjia/lecturer-claims/internal/auth"
	"github.com/garyjia/lecturer-claims/internal/config"
	"github.com/garyjia/lecturer-claims/internal/domain/event"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/repository"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/storage"
	httpapi "github.com/garyjia/lecturer-claims/internal/interfaces/http"
	"github.com/garyjia/lecturer-claims/internal/report"
	"github.com/garyjia/lecturer-claims/pkg/database"
	"github.com/garyjia/lecturer-claims/pkg/utils"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load(
		config.Getenv("CLAIMS_CONFIG", "configs/config.yaml"),
		config.Getenv("CLAIMS_ENV_FILE", ".env"),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting lecturer claims service",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		BusyTimeout:     cfg.Database.BusyTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db, logger).Run(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	store := sqlite.NewDB(db.DB, logger)
	claimRepo := repository.NewClaimRepository(store, logger)
	documentRepo := repository.NewDocumentRepository(store, logger)
	historyRepo := repository.NewHistoryRepository(store, logger)
	userRepo := repository.NewUserRepository(store, logger)

	files, err := storage.New(ctx, storage.Options{
		Backend:  cfg.Storage.Backend,
		LocalDir: cfg.Storage.LocalDir,
		S3: storage.S3Config{
			Bucket:   cfg.Storage.S3.Bucket,
			Region:   cfg.Storage.S3.Region,
			Endpoint: cfg.Storage.S3.Endpoint,
			Prefix:   cfg.Storage.S3.Prefix,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize document storage: %w", err)
	}

	events := dispatcher.NewDispatcher(dispatcher.WithLogger(logger))
	defer events.Close()
	audit := dispatcher.AuditLogger(logger.Named("audit"))
	for _, typ := range []event.Type{event.TypeClaimSubmitted, event.TypeClaimDecided, event.TypeDocumentAttached} {
		events.SubscribeNamed(typ, "audit-log", audit)
		logger.Debug("Event handlers registered",
			zap.String("event_type", typ.String()),
			zap.Int("handlers", len(events.ListHandlers(typ))))
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)

	services := httpapi.Services{
		Claims:    service.NewClaimService(claimRepo, historyRepo, userRepo, store, logger, service.WithClaimEvents(events)),
		Documents: service.NewDocumentService(claimRepo, documentRepo, files, logger, service.WithDocumentEvents(events)),
		Users:     service.NewUserService(userRepo, tokens, logger),
		Reports:   service.NewReportService(claimRepo, userRepo, store, report.NewExcelWriter(logger), logger),
	}

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		Version:         version,
	}, services, tokens, logger)

	// blocks until SIGINT/SIGTERM
	if err := server.Start(ctx); err != nil {
		return err
	}

	logger.Info("Server exited")
	return nil
}
