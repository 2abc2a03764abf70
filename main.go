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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/recipebox/recipe-service/handlers"
	"github.com/recipebox/recipe-service/internal/app"
	"github.com/recipebox/recipe-service/internal/config"
	"github.com/recipebox/recipe-service/internal/recipe/service"
	"github.com/recipebox/recipe-service/internal/storage"
	"github.com/recipebox/recipe-service/internal/verifier"
	"github.com/recipebox/recipe-service/pkg/logger"
	"github.com/recipebox/recipe-service/pkg/metrics"
	"github.com/recipebox/recipe-service/pkg/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.Infof("config loaded: store=%s env=%s redis=%v minio=%v auth_writes=%v",
		cfg.Store.Backend, cfg.Server.Environment, cfg.Redis.Enabled(), cfg.MinIO.Enabled(), cfg.Auth.RequireWrites)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing.Enabled, os.Stdout)
	if err != nil {
		logger.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.Store.Backend, err)
	}
	defer func() { _ = st.Close(context.Background()) }()

	svc := service.New(st.Repo)
	checks := map[string]handlers.Check{"store": svc.Ping}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis %s not reachable yet: %v", cfg.Redis.Addr(), err)
		}
		if cfg.RateLimit.UseRedis {
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		}
	}

	ver, err := verifier.New(ctx, cfg)
	if err != nil {
		if cfg.Auth.RequireWrites {
			logger.Fatalf("failed to initialize token verifier: %v", err)
		}
		logger.Warnf("failed to initialize token verifier: %v", err)
	}
	if issuer := cfg.Keycloak.Issuer(); issuer != "" {
		checks["oidc"] = verifier.IssuerCheck(issuer)
	}

	var backups handlers.BlobStore
	if cfg.MinIO.Enabled() {
		ms, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("backup storage unavailable: %v", err)
		} else {
			backups = ms
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	r := app.NewRouter(cfg, app.Deps{
		Service:  svc,
		Verifier: ver,
		Redis:    rdb,
		Backups:  backups,
		Checks:   checks,
		Metrics:  promhttp.Handler(),
		Started:  time.Now(),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("starting recipe service on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
