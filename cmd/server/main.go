package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "recruitflow/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"recruitflow/internal/auth"
	"recruitflow/internal/cache"
	"recruitflow/internal/config"
	"recruitflow/internal/db"
	"recruitflow/internal/document"
	"recruitflow/internal/handler"
	"recruitflow/internal/llm"
	"recruitflow/internal/logger"
	"recruitflow/internal/notify"
	"recruitflow/internal/repository"
	"recruitflow/internal/router"
	"recruitflow/internal/service"
	"recruitflow/internal/storage"
	"recruitflow/internal/worker"
)

// @title RecruitFlow API
// @version 1.0
// @description Recruiting backend: candidates, recruiters, assignments, job applications and AI resume generation.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", "error", err)
	}
	logger.Init(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, !cfg.IsProduction())
	if err != nil {
		logger.Fatal("database init", "error", err)
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.DropAll(gormDB); err != nil {
			logger.Fatal("drop tables", "error", err)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("migrate", "error", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.WithError(err).Warn("redis unavailable, caching disabled until it recovers")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	candidateRepo := repository.NewCandidateRepository(gormDB)
	resumeRepo := repository.NewResumeRepository(gormDB)
	recruiterRepo := repository.NewRecruiterRepository(gormDB)
	applicationRepo := repository.NewJobApplicationRepository(gormDB)
	planRepo := repository.NewPlanRepository(gormDB)
	paymentRepo := repository.NewPaymentRepository(gormDB)
	activityRepo := repository.NewActivityLogRepository(gormDB)
	statsRepo := repository.NewStatsRepository(gormDB)
	tx := repository.NewTransactor(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpire, cfg.JWTRefreshExpire)
	tokenStore := auth.NewTokenStore(cacheClient)

	generator := newGenerator(ctx, cfg)

	fileStore, err := storage.New(cfg.Storage, cfg.Upload.Path)
	if err != nil {
		logger.Fatal("storage init", "error", err)
	}

	// Initialize services
	activityService := service.NewActivityService(activityRepo)
	defer activityService.Close()

	authService := service.NewAuthService(userRepo, tx, jwtService, tokenStore, cacheClient)
	userService := service.NewUserService(userRepo, tx, cacheClient)
	candidateService := service.NewCandidateService(candidateRepo, recruiterRepo, tx, activityService, cacheClient)
	recruiterService := service.NewRecruiterService(recruiterRepo, candidateRepo, tx, activityService, cacheClient)
	assignmentService := service.NewAssignmentService(tx, activityService, notify.New(cfg.SMTP), cacheClient)
	applicationService := service.NewJobApplicationService(applicationRepo, candidateRepo, recruiterRepo, activityService)
	resumeService := service.NewResumeService(generator, candidateRepo, recruiterRepo, applicationRepo, activityService, cfg.Gemini.RatePerMinute)
	uploadService := service.NewUploadService(candidateRepo, resumeRepo, recruiterRepo, fileStore, cfg.Upload.MaxFileSize)
	planService := service.NewPlanService(planRepo, activityService, cacheClient)
	dashboardService := service.NewDashboardService(statsRepo, applicationRepo, paymentRepo, activityRepo, recruiterRepo, cacheClient)
	exportService := service.NewExportService(candidateRepo, applicationRepo)

	renderer := document.NewRenderer()

	// Register routes
	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, authService, router.Handlers{
		Auth:      handler.NewAuthHandler(authService, cfg.IsProduction()),
		User:      handler.NewUserHandler(userService),
		Candidate: handler.NewCandidateHandler(candidateService, uploadService, applicationService),
		Recruiter: handler.NewRecruiterHandler(recruiterService, candidateService, dashboardService),
		Admin:     handler.NewAdminHandler(assignmentService, dashboardService, exportService, activityService),
		Job:       handler.NewJobHandler(applicationService, renderer),
		Resume:    handler.NewResumeHandler(resumeService, renderer),
		Plan:      handler.NewPlanHandler(planService),
		Seed:      handler.NewSeedHandler(planService),
	})

	subscriptions := worker.NewSubscriptionWorker(candidateRepo, cfg.SubscriptionCheckInterval)
	subscriptions.Start(ctx)

	logger.Info("swagger documentation available", "url", swaggerURL(cfg))

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server starting", "addr", addr, "env", cfg.AppEnv)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown")
	}
	subscriptions.Wait()
}

// newGenerator builds the Gemini client wrapped with retries. Without credentials every
// generation request fails with a clear error instead of preventing startup.
func newGenerator(ctx context.Context, cfg *config.Config) llm.Generator {
	if !cfg.Gemini.Enabled() {
		logger.Warn("gemini is not configured, resume generation disabled")
		return llm.Disabled()
	}
	client, err := llm.New(ctx, cfg.Gemini)
	if err != nil {
		logger.WithError(err).Warn("gemini client init failed, resume generation disabled")
		return llm.Disabled()
	}

	rc := llm.DefaultRetryConfig
	rc.MaxRetries = cfg.Gemini.MaxRetries
	return llm.WithRetry(client, rc)
}

func swaggerURL(cfg *config.Config) string {
	if cfg.SwaggerHost == "" {
		return "http://localhost:" + cfg.ServerPort + "/swagger/index.html"
	}
	host := cfg.SwaggerHost
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
