package http

import (
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP routes.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes on the provided router groups.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is the anonymous /api/v1 group.
	V1 *gin.RouterGroup
	// Public is /api/v1 behind the per-IP limiter, for endpoints that can
	// trigger external calls.
	Public *gin.RouterGroup
	// Protected requires a valid access token.
	Protected *gin.RouterGroup
	// Admin is /api/v1/admin and requires the admin role.
	Admin          *gin.RouterGroup
	Config         config.JWTConfig
	AuthMiddleware gin.HandlerFunc
	RateLimiter    *httpkit.IPRateLimiter
}
