// Package directory provides the provider directory bounded context: filtered
// listings, map markers and location maintenance.
package directory

import (
	"context"

	"marketplace_backend/internal/directory/handler"
	"marketplace_backend/internal/directory/repository"
	"marketplace_backend/internal/directory/service"
	"marketplace_backend/internal/events"
	"marketplace_backend/internal/filters"
	"marketplace_backend/internal/geo"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the directory bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the directory module with all its dependencies.
func NewModule(pool *pgxpool.Pool, batch *geo.BatchResolver, catalog *filters.Catalog, mapCfg config.MapConfig, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	return newModule(repository.New(pool), batch, catalog, mapCfg, bus, val, log)
}

func newModule(repo repository.Repository, batch *geo.BatchResolver, catalog *filters.Catalog, mapCfg config.MapConfig, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repo, batch, catalog, mapCfg, bus, log)
	return &Module{
		handler: handler.New(svc, val, log),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "directory"
}

// Service returns the service layer for the worker and the backfill CLI.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts directory routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Anonymous reads; markers may call the geocoder so they sit behind the limiter.
	ctx.V1.GET("/directory/providers", m.handler.ListProviders)
	ctx.Public.GET("/directory/markers", m.handler.Markers)
	ctx.V1.GET("/filters/:key", m.handler.Schema)
	ctx.V1.GET("/filters/:key/normalize", m.handler.NormalizeSelection)

	adminGroup := ctx.Admin.Group("/directory")
	adminGroup.POST("/providers/:id/geocode", m.handler.GeocodeProvider)
	adminGroup.POST("/geocode-backfill", m.handler.Backfill)
	adminGroup.GET("/geocode-stats", m.handler.GeocodeStats)
}

// RegisterHandlers subscribes to the events feeding the geocode counters.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ProviderLocationResolved{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(_ context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ProviderLocationResolved:
		m.service.Stats().Record(e.Source, e.Stored)
	}
	return nil
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
