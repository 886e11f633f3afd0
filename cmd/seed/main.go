// Command seed creates the default accounts for a fresh installation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/application/service"
	"github.com/garyjia/lecturer-claims/internal/auth"
	"github.com/garyjia/lecturer-claims/internal/config"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/repository"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/lecturer-claims/pkg/database"
	"github.com/garyjia/lecturer-claims/pkg/utils"
)

// defaultAccounts are created when their email is not registered yet
var defaultAccounts = []service.CreateUserInput{
	{Email: "hr@test.com", FullName: "HR Administrator", Role: entity.RoleHR, Password: "Hr123!"},
	{Email: "lecturer@test.com", FullName: "John Lecturer", Role: entity.RoleLecturer, HourlyRate: decimal.NewFromInt(500), Password: "Lecturer123!"},
	{Email: "coordinator@test.com", FullName: "Jane Coordinator", Role: entity.RoleCoordinator, Password: "Coordinator123!"},
	{Email: "manager@test.com", FullName: "Bob Manager", Role: entity.RoleManager, Password: "Manager123!"},
}

func main() {
	configPath := flag.String("config", config.Getenv("CLAIMS_CONFIG", "configs/config.yaml"), "path to the YAML config file")
	envFile := flag.String("env", config.Getenv("CLAIMS_ENV_FILE", ".env"), "path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{Level: cfg.Logger.Level, OutputPath: "stdout", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.New(database.Config{Path: cfg.Database.Path, BusyTimeout: cfg.Database.BusyTimeout}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := database.NewMigrator(db, logger).Run(); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(sqlite.NewDB(db.DB, logger), logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	users := service.NewUserService(userRepo, tokens, logger)

	created, err := seed(context.Background(), users, userRepo, defaultAccounts, logger)
	if err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}
	logger.Info("Seeding complete", zap.Int("created", created))
}

// seed creates every account whose email is unknown and returns how many were added
func seed(ctx context.Context, users service.UserService, repo port.UserRepository, accounts []service.CreateUserInput, logger *zap.Logger) (int, error) {
	created := 0
	for _, account := range accounts {
		_, err := repo.GetByEmail(ctx, account.Email)
		if err == nil {
			logger.Info("Account exists, skipping", zap.String("email", account.Email))
			continue
		}
		if !errors.Is(err, entity.ErrNotFound) {
			return created, fmt.Errorf("look up %s: %w", account.Email, err)
		}

		user, err := users.Create(ctx, account)
		if err != nil {
			return created, fmt.Errorf("create %s: %w", account.Email, err)
		}
		logger.Info("Account created",
			zap.Int64("user_id", user.ID),
			zap.String("email", user.Email),
			zap.String("role", string(user.Role)))
		created++
	}
	return created, nil
}
