package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/AhmedYossry552/examination-system/internal/config"
	"github.com/AhmedYossry552/examination-system/internal/database"
	"github.com/AhmedYossry552/examination-system/internal/handler"
	"github.com/AhmedYossry552/examination-system/internal/logger"
	"github.com/AhmedYossry552/examination-system/internal/repository"
	"github.com/AhmedYossry552/examination-system/internal/router"
	"github.com/AhmedYossry552/examination-system/internal/service"
	"github.com/AhmedYossry552/examination-system/internal/validator"
	"github.com/AhmedYossry552/examination-system/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Examination Engine")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	instructorRepo := repository.NewInstructorRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	remedialRepo := repository.NewRemedialRepository(pool)
	analyticsRepo := repository.NewAnalyticsRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	notifier := service.NewNotifier(rdb, log)
	authService := service.NewAuthService(cfg, rdb, studentRepo, instructorRepo)
	attemptService := service.NewAttemptService(cfg, examRepo, attemptRepo, answerRepo, studentRepo, notifier, log)
	gradingService := service.NewGradingService(cfg, examRepo, attemptRepo, answerRepo, notifier, log)
	monitorService := service.NewMonitorService(cfg, examRepo, attemptRepo, answerRepo, log)
	remedialService := service.NewRemedialService(examRepo, remedialRepo, notifier, log)
	analyticsService := service.NewAnalyticsService(examRepo, analyticsRepo, log)
	notificationService := service.NewNotificationService(notificationRepo)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Student:    handler.NewStudentHandler(attemptService, remedialService, notificationService),
		Instructor: handler.NewInstructorHandler(attemptService, gradingService, monitorService, remedialService, analyticsService),
		WS:         handler.NewWSHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	notificationWorker := worker.NewNotificationWorker(notificationRepo, rdb, log)
	remedialWorker := worker.NewRemedialWorker(remedialService, cfg.RemedialInterval, log)

	go notificationWorker.Start(workerCtx)
	go remedialWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for queues to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
