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

	"github.com/bowlhaus/strafenkatalog/config"
	"github.com/bowlhaus/strafenkatalog/db"
	"github.com/bowlhaus/strafenkatalog/handlers"
	"github.com/bowlhaus/strafenkatalog/live"
	"github.com/bowlhaus/strafenkatalog/repositories"
	api "github.com/bowlhaus/strafenkatalog/routes"
	"github.com/bowlhaus/strafenkatalog/services"
	"github.com/bowlhaus/strafenkatalog/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
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
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize object storage", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("object storage initialized")
	} else {
		logger.Info("object storage not configured, logo upload disabled")
	}

	hub := live.NewHub()
	go hub.Run()

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	seasonRepo := repositories.NewPostgresSeasonRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	gamePlayerRepo := repositories.NewPostgresGamePlayerRepository(dbConn)
	playerPenaltyRepo := repositories.NewPostgresPlayerPenaltyRepository(dbConn)
	penaltyRepo := repositories.NewPostgresPenaltyRepository(dbConn)
	summaryRepo := repositories.NewPostgresSummaryRepository(dbConn)

	authService := services.NewAuthService(userRepo)
	teamService := services.NewTeamService(teamRepo, uploader)
	playerService := services.NewPlayerService(playerRepo)
	gameService := services.NewGameService(gameRepo, seasonRepo)
	penaltyService := services.NewPenaltyService(penaltyRepo)
	summaryService := services.NewSummaryService(summaryRepo)
	gamePlayerService := services.NewGamePlayerService(
		dbConn,
		gamePlayerRepo,
		playerPenaltyRepo,
		penaltyRepo,
		summaryRepo,
		hub,
		logger,
	)

	h := api.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Penalty:    handlers.NewPenaltyHandler(penaltyService),
		Team:       handlers.NewTeamHandler(teamService),
		Player:     handlers.NewPlayerHandler(playerService),
		Game:       handlers.NewGameHandler(gameService),
		GamePlayer: handlers.NewGamePlayerHandler(gamePlayerService),
		Summary:    handlers.NewSummaryHandler(summaryService),
		WebSocket:  handlers.NewWebSocketHandler(hub),
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, h, cfg.JWTSecretKey)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
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
