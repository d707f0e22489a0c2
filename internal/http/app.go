// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"marketplace_backend/internal/events"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// main.go builds it and hands it to router.New.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	// Health backs /api/health. Nil skips the readiness check.
	Health   HealthChecker
	EventBus events.Bus
	Modules  []Module
}
