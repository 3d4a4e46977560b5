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

	appanalysis "github.com/admitlens/admitlens/internal/application/analysis"
	appinsight "github.com/admitlens/admitlens/internal/application/insight"
	"github.com/admitlens/admitlens/internal/config"
	"github.com/admitlens/admitlens/internal/domain/analysis"
	"github.com/admitlens/admitlens/internal/domain/audit"
	"github.com/admitlens/admitlens/internal/domain/insight"
	openaiclient "github.com/admitlens/admitlens/internal/infra/ai/openai"
	mysqlp "github.com/admitlens/admitlens/internal/infra/db/mysql"
	pgp "github.com/admitlens/admitlens/internal/infra/db/postgres"
	"github.com/admitlens/admitlens/internal/infra/httpserver"
	minioStore "github.com/admitlens/admitlens/internal/infra/storage"
	"github.com/admitlens/admitlens/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect database (mysql or postgres by config)
	var db *sql.DB
	var analysisRepo analysis.Repository
	var insightRepo insight.Repository
	var auditRepo audit.Repository
	switch cfg.Database.Driver {
	case "postgres":
		db, err = pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		analysisRepo = pgp.NewAnalysisRepository(db)
		insightRepo = pgp.NewInsightRepository(db)
		auditRepo = pgp.NewAuditRepository(db)
	default:
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		analysisRepo = mysqlp.NewAnalysisRepository(db)
		insightRepo = mysqlp.NewInsightRepository(db)
		auditRepo = mysqlp.NewAuditRepository(db)
	}
	defer db.Close()

	// init minio transcript archive
	transcripts, err := minioStore.New(ctx,
		cfg.Minio.Endpoint,
		cfg.Minio.Region,
		cfg.Minio.BucketName,
		cfg.Minio.AccessKey,
		cfg.Minio.SecretKey,
		cfg.Minio.UseSSL,
	)
	if err != nil {
		log.Fatalf("minio init error: %v", err)
	}

	// init analyzer client
	client := openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	timeout := time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	// init services
	analysisSvc := appanalysis.NewService(analysisRepo, client, timeout)
	analysisSvc.Transcripts = transcripts
	analysisSvc.Audit = auditRepo

	insightSvc := appinsight.NewService(insightRepo, client, timeout)
	insightSvc.Transcripts = transcripts
	insightSvc.Audit = auditRepo

	// init router + middleware stack
	capacity := cfg.RateLimit.Capacity
	if capacity <= 0 {
		capacity = 30
	}
	refill := cfg.RateLimit.RefillRate
	if refill <= 0 {
		refill = 1
	}

	mux := chi.NewRouter()
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.APIKeys))
	}
	mux.Use(middleware.RateLimitMiddleware(capacity, refill))
	mux.Mount("/", httpserver.NewRouter(analysisSvc, insightSvc, map[string]middleware.HealthChecker{
		"database":    &middleware.DatabaseHealthChecker{DB: db},
		"transcripts": middleware.CheckerFunc(transcripts.Check),
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // analyzer calls can outlive a fixed write window; per-call timeouts apply instead
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
