package main

import (
	"alcyxob/gym-tracker/internal/api"
	"alcyxob/gym-tracker/internal/config"
	"alcyxob/gym-tracker/internal/repository/mongo"
	"alcyxob/gym-tracker/internal/service"
	"alcyxob/gym-tracker/internal/storage"
	"alcyxob/gym-tracker/internal/tracker"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// @title Gym Tracker API
// @version 1.0
// @description API for tracking gym workouts, machines and exercises.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		// No logger yet; use a bootstrap one so the failure is still structured.
		zap.NewExample().Fatal("could not load config", zap.Error(err))
	}

	logger := newLogger(cfg.Server.Mode)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting gym tracker server", zap.String("address", cfg.Server.Address()))

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() {
		logger.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established", zap.String("database", cfg.Database.Name))

	// --- Ensure Indexes ---
	go func() { // Run index creation in the background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			logger.Error("index creation failed", zap.Error(err))
			return
		}
		logger.Info("index creation completed")
	}()

	// --- Initialize Storage ---
	var images storage.ImageStore
	if cfg.Images.Enabled() {
		images, err = storage.NewS3Storage(context.Background(), cfg.Images, logger)
		if err != nil {
			logger.Fatal("failed to initialize image storage", zap.Error(err))
		}
	} else {
		logger.Warn("image storage credentials missing, profile image uploads are disabled")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	machineRepo := mongo.NewMongoMachineRepository(appDB)
	workoutRepo := mongo.NewMongoWorkoutRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)

	// --- Initialize Services ---
	services := api.Services{
		Auth:     service.NewAuthService(userRepo, sessionRepo, cfg.JWT.Secret, cfg.JWT.Expiration),
		Users:    service.NewUserService(userRepo, images, cfg.Images.URLExpiry, logger),
		Machines: service.NewMachineService(machineRepo),
		Workouts: service.NewWorkoutService(workoutRepo, userRepo, machineRepo, exerciseRepo, logger),
	}

	// --- Request Tracker ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	sinks := []tracker.Sink{tracker.NewLogSink(logger), tracker.NewMetricsSink(registry)}
	if cfg.Tracker.Persist {
		sinks = append(sinks, tracker.NewStoreSink(mongo.NewMongoRequestRepository(appDB)))
	}
	requestTracker := tracker.New(logger, cfg.Tracker.Buffer, sinks...)
	requestTracker.Start()

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(api.Pipeline(api.DefaultStages(logger, requestTracker, cfg.Server.RequestTimeout)...)...)
	api.SetupRoutes(router, logger, services, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	if err := requestTracker.Close(ctxShutdown); err != nil {
		logger.Warn("request tracker did not drain", zap.Uint64("dropped", requestTracker.Dropped()), zap.Error(err))
	}

	logger.Info("server exiting")
}

func newLogger(mode string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if mode == gin.DebugMode {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewExample()
	}
	return logger
}
