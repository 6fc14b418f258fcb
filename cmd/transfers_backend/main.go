package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/ulule/limiter/v3"
	limitermem "github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/moneytransfers/transfers_app/internal/adapters/database/memory"
	"github.com/moneytransfers/transfers_app/internal/adapters/database/pgsql"
	portsrepo "github.com/moneytransfers/transfers_app/internal/core/ports/repositories"
	"github.com/moneytransfers/transfers_app/internal/core/services"
	"github.com/moneytransfers/transfers_app/internal/handlers"
	"github.com/moneytransfers/transfers_app/internal/middleware"
	"github.com/moneytransfers/transfers_app/pkg/config"
	"github.com/moneytransfers/transfers_app/pkg/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	accountRepo, transferRepo, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}
	defer cleanup()

	serviceContainer := services.NewServiceContainer(accountRepo, transferRepo, cfg.LockTimeout)

	if cfg.SeedDemoData {
		seedDemoData(accountRepo, logger)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger))
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", "rate", cfg.RateLimit, "error", err)
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(limitermem.NewStore(), rate)))

	handlers.RegisterRoutes(r, serviceContainer)

	logger.Info("Starting server", "port", cfg.Port, "backend", cfg.StorageBackend)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func buildRepositories(cfg *config.Config, logger *slog.Logger) (portsrepo.AccountRepository, portsrepo.TransferRepository, func(), error) {
	if cfg.StorageBackend == config.StorageMemory {
		transfers := memory.NewTransferRepository()
		accounts := memory.NewAccountRepository(transfers)
		return accounts, transfers, func() {}, nil
	}

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}

	return pgsql.NewAccountRepository(pool), pgsql.NewTransferRepository(pool), pool.Close, nil
}

func runMigrations(databaseURL string, logger *slog.Logger) error {
	// Migrations run over a standard sql.DB connection using the pgx stdlib
	// driver, kept separate from the main pool.
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer migrationDB.Close()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	logger.Info("Database migrations applied")
	return nil
}

// seedDemoData creates a pair of funded accounts so the API is usable
// immediately after startup. Failures are logged and ignored, the seed
// accounts may already exist from a previous run.
func seedDemoData(accountRepo portsrepo.AccountRepository, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seeds := []struct {
		number  string
		balance decimal.Decimal
	}{
		{"ACC-0001", decimal.NewFromInt(300)},
		{"ACC-0002", decimal.NewFromInt(400)},
	}
	for _, s := range seeds {
		if _, err := accountRepo.CreateAccount(ctx, s.number, s.balance); err != nil {
			logger.Warn("Skipping demo seed account", "number", s.number, "error", err)
		}
	}
}
