package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/WiseOwlEnglish/testrun-service/internal/cache"
	"github.com/WiseOwlEnglish/testrun-service/internal/config"
	"github.com/WiseOwlEnglish/testrun-service/internal/events"
	"github.com/WiseOwlEnglish/testrun-service/internal/handlers"
	"github.com/WiseOwlEnglish/testrun-service/internal/repositories/postgres"
	"github.com/WiseOwlEnglish/testrun-service/internal/session"
	"github.com/WiseOwlEnglish/testrun-service/internal/services"
	"github.com/WiseOwlEnglish/testrun-service/internal/utils"
	"github.com/WiseOwlEnglish/testrun-service/internal/validator"
	"github.com/WiseOwlEnglish/testrun-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.Error("Failed to create event publisher, using mock", "error", err)
		publisher = events.NewMockEventPublisher(slogger)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	store := cache.NewRedisSnapshotStore(redisClient, slogger)
	sessions := session.NewManager(store, slogger)
	v := validator.New()

	serviceManager := services.NewServiceManager(repo, sessions, publisher, slogger, v)
	handlerManager := handlers.NewHandlerManager(serviceManager, v, logger)

	// Attempts that expired while no session was live (lost snapshot, service
	// restart) are closed as timed out by a periodic sweep.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if _, err := serviceManager.TestRun().SweepStaleAttempts(sweepCtx, time.Hour); err != nil {
					logger.Error("Stale attempt sweep failed", "error", err)
				}
			}
		}
	}()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting testrun service", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}

	logger.Info("Server stopped")
}
