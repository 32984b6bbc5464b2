package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bryanwahyu/social-intake/internal/application/agent"
	"github.com/bryanwahyu/social-intake/internal/application/intake"
	"github.com/bryanwahyu/social-intake/internal/application/pipeline"
	"github.com/bryanwahyu/social-intake/internal/config"
	domain "github.com/bryanwahyu/social-intake/internal/domain/applications"
	aiclient "github.com/bryanwahyu/social-intake/internal/infra/ai/openai"
	memorydb "github.com/bryanwahyu/social-intake/internal/infra/db/memory"
	mysqldb "github.com/bryanwahyu/social-intake/internal/infra/db/mysql"
	postgresdb "github.com/bryanwahyu/social-intake/internal/infra/db/postgres"
	"github.com/bryanwahyu/social-intake/internal/infra/extractor"
	"github.com/bryanwahyu/social-intake/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/social-intake/internal/infra/storage"
	"github.com/bryanwahyu/social-intake/internal/logger"
	"github.com/bryanwahyu/social-intake/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()

	// pick repository by driver
	var repo domain.Repository
	var db *sql.DB
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqldb.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			zlog.Fatal("mysql connect error", zap.Error(err))
		}
		repo = mysqldb.NewApplicationRepository(db)
	case "postgres":
		db, err = postgresdb.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			zlog.Fatal("postgres connect error", zap.Error(err))
		}
		repo = postgresdb.NewApplicationRepository(db)
	case "memory":
		repo = memorydb.NewRepo()
	default:
		zlog.Fatal("unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	if db != nil {
		defer db.Close()
	}

	// object store for raw uploads (optional)
	var objects domain.DocumentStore
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			zlog.Fatal("minio init error", zap.Error(err))
		}
		objects = store
	} else {
		zlog.Warn("minio endpoint not configured; raw uploads will not be archived")
	}

	// LLM boundary (optional; chat falls back to direct-intent mode without it)
	apiKey := cfg.AI.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	var llm *aiclient.Client
	if apiKey != "" || cfg.AI.BaseURL != "" {
		llm = aiclient.NewClient(cfg.AI.BaseURL, apiKey, cfg.AI.Model)
	}

	intakeSvc := &intake.Service{
		Repo:    repo,
		Objects: objects,
		Extract: extractor.New(),
		Clock:   intake.SystemClock{},
		Log:     zlog,
	}
	pipeSvc := &pipeline.Service{
		Repo: repo,
		Rules: pipeline.Rules{
			MinAge:            cfg.Pipeline.MinAge,
			MaxAge:            cfg.Pipeline.MaxAge,
			MinMonthlyIncome:  cfg.Pipeline.MinMonthlyIncome,
			AllowedEmployment: allowedEmployment(cfg.Pipeline.AllowedEmployment),
		},
		Thresholds: pipeline.Thresholds{
			Approve: cfg.Pipeline.ApproveThreshold,
			Reject:  cfg.Pipeline.RejectThreshold,
		},
		Clock: pipeline.SystemClock{},
		Log:   zlog,
	}
	dispatcher := &agent.Dispatcher{
		Repo:     repo,
		Registry: agent.NewRegistry(),
		Timeout:  time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		Log:      zlog,
	}
	if llm != nil {
		dispatcher.LLM = llm
	}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Logging(zlog))
	mux.Use(middleware.APIKeyAuth(cfg.Server.APIKeys))
	mux.Use(middleware.NewRateLimiter(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillRate).Middleware)
	mux.Use(middleware.Metrics)

	checkers := map[string]middleware.HealthChecker{}
	if db != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}
	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())
	mux.Mount("/v1", httpserver.NewRouter(intakeSvc, pipeSvc, dispatcher))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	zlog.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		zlog.Error("shutdown error", zap.Error(err))
	}
}

func allowedEmployment(values []string) []domain.EmploymentStatus {
	out := make([]domain.EmploymentStatus, 0, len(values))
	for _, v := range values {
		out = append(out, domain.EmploymentStatus(v))
	}
	return out
}
