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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/mkopka/prediction-pool/config"
	"github.com/mkopka/prediction-pool/db"
	"github.com/mkopka/prediction-pool/handlers"
	"github.com/mkopka/prediction-pool/live"
	"github.com/mkopka/prediction-pool/repositories"
	api "github.com/mkopka/prediction-pool/routes"
	"github.com/mkopka/prediction-pool/services"
	"github.com/mkopka/prediction-pool/sheet"
	"github.com/mkopka/prediction-pool/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	var uploader storage.FileUploader
	if cfg.ArchivingEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("workbook archiving enabled")
	} else {
		logger.Info("workbook archiving disabled, R2 not configured")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	guessRepo := repositories.NewPostgresGuessRepository(dbConn)
	ruleRepo := repositories.NewPostgresRuleRepository(dbConn)
	rankingRepo := repositories.NewPostgresRankingRepository(dbConn)

	locator := sheet.NewLocator(sheet.DefaultLayout(), sheet.Milano2026Calendar())

	rankingService := services.NewRankingService(guessRepo, ruleRepo, rankingRepo, wsHub, logger)
	matchService := services.NewMatchService(matchRepo, rankingService, logger)
	guessService := services.NewGuessService(guessRepo, matchRepo, logger)
	syncService := services.NewSyncService(
		tournamentRepo, teamRepo, matchRepo, userRepo, guessRepo,
		locator, uploader, logger,
	)

	matchHandler := handlers.NewMatchHandler(matchService)
	guessHandler := handlers.NewGuessHandler(guessService)
	rankingHandler := handlers.NewRankingHandler(rankingService)
	syncHandler := handlers.NewSyncHandler(syncService, rankingService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)

	router := chi.NewRouter()
	api.SetupRoutes(router, matchHandler, guessHandler, rankingHandler, syncHandler, webSocketHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
