package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rareminds/testportal/internal/config"
	"github.com/rareminds/testportal/internal/database"
	"github.com/rareminds/testportal/internal/handler"
	"github.com/rareminds/testportal/internal/logger"
	"github.com/rareminds/testportal/internal/questionset"
	"github.com/rareminds/testportal/internal/repository"
	"github.com/rareminds/testportal/internal/router"
	"github.com/rareminds/testportal/internal/service"
	"github.com/rareminds/testportal/internal/session"
	"github.com/rareminds/testportal/internal/validator"
	"github.com/rareminds/testportal/internal/worker"
	"github.com/rs/zerolog"
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
		Msg("Starting test portal")

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
	courseRepo := repository.NewCourseRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)
	integrityRepo := repository.NewIntegrityRepository(pool)
	supportRepo := repository.NewSupportRepository(pool)
	rosterRepo := repository.NewRosterRepository(pool)

	// ─── Question Sets ─────────────────────────────────────────────────
	// Postgres is the source of truth; Redis shares loaded sets across instances.
	questionStore := questionset.NewRedisStore(rdb, questionset.NewPostgresStore(questionRepo), cfg.QuestionCacheTTL, log)
	loader := questionset.NewLoader(questionStore, log)

	// ─── Initialize Services ──────────────────────────────────────────
	policy := session.PolicyFromConfig(cfg.Session)
	queue := service.NewSubmissionQueue(rdb)
	authService := service.NewAuthService(cfg, rdb, studentRepo)
	sessionService := service.NewSessionService(
		studentRepo, courseRepo, submissionRepo, loader, queue,
		session.NewRegistry(), rdb, policy, log,
	)
	portalService := service.NewPortalService(studentRepo, courseRepo, submissionRepo, queue, log)
	supportService := service.NewSupportService(supportRepo, log)
	signupService := service.NewSignupService(rosterRepo, studentRepo, authService, log)

	log.Info().
		Int("duration_seconds", policy.DurationSeconds).
		Int("warning_threshold", policy.WarningThreshold).
		Str("device_policy", string(policy.DevicePolicy)).
		Str("review_clock", string(policy.ReviewClock)).
		Bool("lock_forced_review", policy.LockForcedReview).
		Msg("Session policy")

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:   handler.NewAuthHandler(authService, signupService, log),
		Portal: handler.NewPortalHandler(portalService, supportService, log),
		WS:     handler.NewWSHandler(sessionService, supportService, cfg.Session.TickInterval, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	submissionWorker := worker.NewSubmissionWorker(submissionRepo, rdb, log)
	integrityWorker := worker.NewIntegrityWorker(integrityRepo, rdb, log)

	workers.Add(2)
	go func() {
		defer workers.Done()
		submissionWorker.Start(workerCtx)
	}()
	go func() {
		defer workers.Done()
		integrityWorker.Start(workerCtx)
	}()

	// ─── Prewarm Question Sets ────────────────────────────────────────
	// Load every course's questions BEFORE accepting traffic so the first
	// wave of students does not stampede Postgres.
	if courses, err := courseRepo.List(ctx); err != nil {
		log.Warn().Err(err).Msg("Question prewarm skipped")
	} else {
		ids := make([]string, 0, len(courses))
		for _, c := range courses {
			ids = append(ids, c.ID)
		}
		n := loader.Prewarm(ctx, ids)
		log.Info().Int("courses", len(ids)).Int("loaded", n).Msg("Question sets prewarmed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     r,
		BaseContext: func(net.Listener) context.Context { return ctx },
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

	// 1. Stop accepting new HTTP requests (5s timeout). Hijacked WebSocket
	// connections are not tracked by Shutdown; canceling ctx ends them.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	cancel()

	// 2. Stop background workers and wait for them to flush what they hold.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
