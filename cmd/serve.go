package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/spikezone/cache"
	"github.com/Dosada05/spikezone/config"
	"github.com/Dosada05/spikezone/db"
	"github.com/Dosada05/spikezone/handlers"
	"github.com/Dosada05/spikezone/identity"
	"github.com/Dosada05/spikezone/repositories"
	"github.com/Dosada05/spikezone/repositories/memory"
	api "github.com/Dosada05/spikezone/routes"
	"github.com/Dosada05/spikezone/services"
	"github.com/Dosada05/spikezone/storage"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		logger.Info("configuration loaded",
			slog.Int("port", cfg.ServerPort),
			slog.String("storage", cfg.StorageDriver),
			slog.Bool("identity_ready", cfg.IdentityReady()),
			slog.Bool("media_ready", cfg.MediaReady()),
		)
		return serve(cmd.Context(), cfg, logger)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending migrations before starting")
}

// stores — репозитории выбранного хранилища.
type stores struct {
	accounts      repositories.AccountRepository
	teams         repositories.TeamRepository
	tournaments   repositories.TournamentRepository
	registrations repositories.RegistrationRepository
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (stores, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn("using in-memory storage: data is lost on restart")
		store := memory.NewStore()
		return stores{
			accounts:      store.Accounts(),
			teams:         store.Teams(),
			tournaments:   store.Tournaments(),
			registrations: store.Registrations(),
		}, func() {}, nil
	}

	dbConn, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return stores{}, nil, err
	}
	if serveMigrate {
		applied, err := db.Migrate(ctx, dbConn, db.Migrations())
		if err != nil {
			closeDatabase(dbConn, logger)
			return stores{}, nil, err
		}
		logger.Info("migrations checked", slog.Int("applied", len(applied)))
	}

	return stores{
		accounts:      repositories.NewPostgresAccountRepository(dbConn),
		teams:         repositories.NewPostgresTeamRepository(dbConn),
		tournaments:   repositories.NewPostgresTournamentRepository(dbConn),
		registrations: repositories.NewPostgresRegistrationRepository(dbConn),
	}, func() { closeDatabase(dbConn, logger) }, nil
}

func newVerifier(cfg *config.Config, logger *slog.Logger) identity.Verifier {
	switch {
	case cfg.FirebaseProjectID != "":
		logger.Info("identity: firebase tokens", slog.String("project_id", cfg.FirebaseProjectID))
		return identity.NewFirebaseVerifier(cfg.FirebaseProjectID)
	case cfg.DevAuthSecret != "":
		logger.Warn("identity: HS256 development tokens, do not use in production")
		return identity.NewHMACVerifier(cfg.DevAuthSecret)
	default:
		logger.Warn("identity: not configured, authenticated routes will answer 503")
		return identity.Disabled{}
	}
}

func newUploader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.FileUploader, error) {
	if !cfg.MediaReady() {
		logger.Warn("object storage is not configured, image uploads will answer 503")
		return nil, nil
	}
	uploader, err := storage.NewS3Uploader(ctx, storage.S3UploaderConfig{
		AccountID:       cfg.R2AccountID,
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
		UsePathStyle:    cfg.S3UsePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage uploader: %w", err)
	}
	logger.Info("object storage uploader initialized", slog.String("bucket", cfg.R2BucketName))
	return uploader, nil
}

func newStatsCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Cache, func()) {
	if cfg.RedisURL == "" {
		return cache.Noop{}, func() {}
	}
	c, closeFn, err := cache.NewRedis(ctx, cfg.RedisURL, "spikezone:")
	if err != nil {
		logger.Warn("redis unavailable, stats are not cached", slog.Any("error", err))
		return cache.Noop{}, func() {}
	}
	logger.Info("redis cache connected")
	return c, func() {
		if err := closeFn(); err != nil {
			logger.Error("failed to close redis client", slog.Any("error", err))
		}
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	uploader, err := newUploader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	statsCache, closeCache := newStatsCache(ctx, cfg, logger)
	defer closeCache()

	// Инициализация сервисов
	statsService := services.NewStatsService(st.tournaments, st.teams, statsCache, logger, time.Now)
	registrationService := services.NewRegistrationService(st.registrations, st.teams, st.tournaments, logger, time.Now)
	teamService := services.NewTeamService(st.teams, registrationService, statsService, logger)
	tournamentService := services.NewTournamentService(st.tournaments, registrationService, statsService, logger, time.Now)
	accountService := services.NewAccountService(st.accounts, logger)
	mediaService := services.NewMediaService(uploader, st.teams, cfg.MediaTransformBaseURL, logger)
	logger.Info("services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Dependencies{
		Logger:            logger,
		Verifier:          newVerifier(cfg, logger),
		AllowedOrigins:    cfg.Origins(),
		AccountService:    accountService,
		AuthHandler:       handlers.NewAuthHandler(accountService),
		TeamHandler:       handlers.NewTeamHandler(teamService, mediaService),
		TournamentHandler: handlers.NewTournamentHandler(tournamentService, registrationService),
		AdminHandler:      handlers.NewAdminHandler(teamService, tournamentService, accountService),
		StatsHandler:      handlers.NewStatsHandler(statsService),
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
	return nil
}
