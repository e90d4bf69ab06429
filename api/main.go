package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"quote-engine/pkg/config"
	"quote-engine/pkg/database"
	"quote-engine/pkg/engine"
	"quote-engine/pkg/notify"
	"quote-engine/pkg/observability"

	"github.com/go-playground/validator/v10"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/gorilla/mux"
)

func main() {
	logger := observability.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("cannot load config", "error", err)
		os.Exit(1)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbClient, err := database.New(context.Background(), cfg.PostgresConn)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	dispatcher := notify.NewDispatcher(dbClient, logger)
	eng := engine.New(dbClient, dispatcher, cfg.QuotaMax, cfg.QuotaWarnThreshold, logger)

	observability.StartMetricsServer(cfg.MetricsAddress)

	srv := &server{
		db:       dbClient,
		engine:   eng,
		validate: validator.New(),
		log:      logger,
	}

	r := mux.NewRouter()
	srv.registerRoutes(r)

	slog.Info("api server starting", "address", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		slog.Error("api server failed", "error", err)
		os.Exit(1)
	}
}

func runDBMigration(migrationURL, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		slog.Error("cannot create migrate instance", "error", err)
		os.Exit(1)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		slog.Error("failed to run migrate up", "error", err)
		os.Exit(1)
	}
	slog.Info("db migrated successfully")
}
