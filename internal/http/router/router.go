// Package router builds the gin engine and mounts every module.
package router

import (
	"context"
	"net/http"
	"time"

	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// New creates the engine with the shared middleware stack and lets each module
// register its routes.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app.Config)))

	engine.GET("/api/health", healthHandler(app.Health))

	limiter := httpkit.NewPublicRateLimiter(app.Logger)
	authMiddleware := httpkit.AuthRequired(app.Config)

	v1 := engine.Group("/api/v1")
	public := v1.Group("")
	public.Use(limiter.RateLimit())

	protected := v1.Group("")
	protected.Use(authMiddleware)

	admin := v1.Group("/admin")
	admin.Use(authMiddleware, httpkit.RequireRole("admin"))

	rc := &apphttp.RouterContext{
		Engine:         engine,
		V1:             v1,
		Public:         public,
		Protected:      protected,
		Admin:          admin,
		Config:         app.Config,
		AuthMiddleware: authMiddleware,
		RateLimiter:    limiter,
	}
	for _, m := range app.Modules {
		m.RegisterRoutes(rc)
		app.Logger.Info("module registered", "module", m.Name())
	}

	return engine
}

func corsConfig(cfg apphttp.RouterConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = cfg.GetCORSOrigins()
	}
	return c
}

func healthHandler(health apphttp.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := health.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
