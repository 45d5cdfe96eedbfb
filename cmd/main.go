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
	"github.com/podiumpicks/podium-api/config"
	"github.com/podiumpicks/podium-api/db"
	"github.com/podiumpicks/podium-api/handlers"
	"github.com/podiumpicks/podium-api/live"
	"github.com/podiumpicks/podium-api/repositories"
	"github.com/podiumpicks/podium-api/routes"
	"github.com/podiumpicks/podium-api/services"
	"github.com/podiumpicks/podium-api/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

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
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		logger.Warn("R2 storage not configured, file uploads disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run()

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	invitationRepo := repositories.NewPostgresInvitationCodeRepository(dbConn)
	verificationRepo := repositories.NewPostgresVerificationTokenRepository(dbConn)
	raceRepo := repositories.NewPostgresRaceRepository(dbConn)
	riderRepo := repositories.NewPostgresRiderRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	predictionRepo := repositories.NewPostgresPredictionRepository(dbConn)
	resultRepo := repositories.NewPostgresRaceResultRepository(dbConn)
	scoreRepo := repositories.NewPostgresScoreRepository(dbConn)

	emailService := services.NewEmailService(cfg, logger)
	authService := services.NewAuthService(userRepo, invitationRepo, verificationRepo)
	userService := services.NewUserService(userRepo, uploader, logger)
	raceService := services.NewRaceService(raceRepo, resultRepo, uploader)
	riderService := services.NewRiderService(riderRepo, teamRepo)
	predictionService := services.NewPredictionService(predictionRepo, raceRepo, riderRepo, resultRepo, scoreRepo)
	resultService := services.NewResultService(dbConn, resultRepo, raceRepo, riderRepo, predictionRepo, scoreRepo, hub, logger)
	leaderboardService := services.NewLeaderboardService(scoreRepo)

	h := routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService, emailService, cfg.JWTSecretKey),
		User:        handlers.NewUserHandler(userService, authService, emailService),
		Admin:       handlers.NewAdminHandler(userService),
		Race:        handlers.NewRaceHandler(raceService),
		Rider:       handlers.NewRiderHandler(riderService),
		Prediction:  handlers.NewPredictionHandler(predictionService),
		Result:      handlers.NewResultHandler(resultService, raceService, userService, emailService),
		Leaderboard: handlers.NewLeaderboardHandler(leaderboardService),
		Live:        handlers.NewLiveHandler(hub, logger),
	}

	router := chi.NewRouter()
	routes.SetupRoutes(router, h, cfg.JWTSecretKey)
	logger.Info("routes configured")

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
		logger.Info("server stopped gracefully")
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
