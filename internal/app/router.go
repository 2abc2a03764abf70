package app

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/recipebox/recipe-service/handlers"
	"github.com/recipebox/recipe-service/internal/config"
	"github.com/recipebox/recipe-service/internal/recipe/handler"
	"github.com/recipebox/recipe-service/internal/recipe/service"
	"github.com/recipebox/recipe-service/pkg/logger"
	"github.com/recipebox/recipe-service/pkg/middleware"
)

// Deps are the constructed collaborators the router mounts.
type Deps struct {
	Service  service.Service
	Verifier middleware.Verifier
	Redis    *redis.Client
	Backups  handlers.BlobStore
	Checks   map[string]handlers.Check
	Metrics  http.Handler
	Started  time.Time
}

// NewRouter builds the gin engine: global middleware, recipe routes and the
// operational endpoints.
func NewRouter(cfg *config.Config, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(logger.L(), time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger.L(), true))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware("recipe-service"))
	}
	r.Use(cors.New(corsConfig(cfg.CORS)))

	var writeMW []gin.HandlerFunc
	if cfg.Auth.RequireWrites && d.Verifier != nil {
		writeMW = append(writeMW, middleware.AuthMiddleware(d.Verifier))
	}

	if limit := rateLimiter(cfg.RateLimit, d.Redis); limit != nil {
		if len(writeMW) > 0 {
			// writes are limited after auth so the bucket is keyed by subject
			r.Use(skipMethods(limit, writeMethods...))
			writeMW = append(writeMW, limit)
		} else {
			r.Use(limit)
		}
	}

	opts := handler.Options{
		EmptyListIsError:   cfg.Compat.EmptyListError,
		UpdateReturnsPatch: cfg.Compat.UpdateReturnsPatch,
		ExposeErrors:       !cfg.Server.IsProduction(),
	}
	handler.RegisterRecipeRoutes(r, d.Service, opts, writeMW...)

	handlers.RegisterHealth(r, d.Started, d.Checks)
	handlers.RegisterSwagger(r)
	handlers.RegisterBackup(r, d.Service, d.Backups, opts.ExposeErrors, writeMW...)
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}
	return r
}

var writeMethods = []string{http.MethodPost, http.MethodPatch, http.MethodDelete}

func rateLimiter(c config.RateLimitConfig, rdb *redis.Client) gin.HandlerFunc {
	if !c.Enabled {
		return nil
	}
	if c.UseRedis && rdb != nil {
		return middleware.RedisRateLimitMiddleware(rdb, c.RPS, c.Burst, c.Window)
	}
	return middleware.RateLimitMiddleware(c.RPS, c.Burst)
}

// skipMethods runs mw for every request whose method is not listed.
func skipMethods(mw gin.HandlerFunc, methods ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(methods, c.Request.Method) {
			return
		}
		mw(c)
	}
}

func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(c.AllowedOrigins) == 0 || slices.Contains(c.AllowedOrigins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowedOrigins
	}
	return cc
}
