package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Dosada05/spikezone/config"
	"github.com/Dosada05/spikezone/db"
	"github.com/spf13/cobra"
)

const dbConnectTimeout = 5 * time.Second

var rootCmd = &cobra.Command{
	Use:   "spikezone",
	Short: "SpikeZone tournament registration API",
	Long: `SpikeZone serves the team and tournament registration API.

Configuration is read from the environment (and an optional .env file).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, grantAdminCmd)
}

// setup загружает конфигурацию и настраивает JSON-логгер по умолчанию.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return cfg, logger, nil
}

// openDatabase подключается к Postgres; для STORAGE_DRIVER=memory возвращает ошибку.
func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	if cfg.StorageDriver != config.StorageDriverPostgres {
		return nil, fmt.Errorf("command requires STORAGE_DRIVER=%s", config.StorageDriverPostgres)
	}
	dbConn, err := db.Connect(ctx, cfg.DatabaseURL, dbConnectTimeout)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")
	return dbConn, nil
}

func closeDatabase(dbConn *sql.DB, logger *slog.Logger) {
	if err := dbConn.Close(); err != nil {
		logger.Error("failed to close database connection", slog.Any("error", err))
		return
	}
	logger.Info("database connection closed")
}
