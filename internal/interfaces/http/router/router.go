package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/channelbridge/backend/internal/infrastructure/config"
	"github.com/channelbridge/backend/internal/infrastructure/logger"
	"github.com/channelbridge/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar registers its routes on a router group. Every handler
// implements this.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router assembles the HTTP API
type Router struct {
	engine     *gin.Engine
	cfg        *config.Config
	log        *zap.Logger
	apiVersion string
	registrars []RouteRegistrar
}

// New creates a Router from configuration
func New(cfg *config.Config, log *zap.Logger, registrars ...RouteRegistrar) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Router{
		engine:     gin.New(),
		cfg:        cfg,
		log:        log,
		apiVersion: "v1",
		registrars: registrars,
	}
}

// WithAPIVersion overrides the API version path segment
func (r *Router) WithAPIVersion(version string) *Router {
	r.apiVersion = version
	return r
}

// Setup wires middleware and routes and returns the engine
func (r *Router) Setup() *gin.Engine {
	if len(r.cfg.HTTP.TrustedProxies) > 0 {
		if err := r.engine.SetTrustedProxies(r.cfg.HTTP.TrustedProxies); err != nil {
			r.log.Warn("failed to set trusted proxies", zap.Error(err))
		}
	}

	middleware.SetupValidator()

	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.RequestID())
	r.engine.Use(logger.GinMiddleware(r.log))
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: r.cfg.HTTP.CORSAllowOrigins,
		AllowMethods: r.cfg.HTTP.CORSAllowMethods,
		AllowHeaders: r.cfg.HTTP.CORSAllowHeaders,
	}))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	return r.engine
}
