// Package service holds the directory business logic: filtered provider
// listings, map markers and background geocoding.
package service

import (
	"context"
	"net/url"

	"marketplace_backend/internal/directory/repository"
	"marketplace_backend/internal/directory/transport"
	"marketplace_backend/internal/events"
	"marketplace_backend/internal/filters"
	"marketplace_backend/internal/geo"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultPageSize  = 20
	defaultMarkers   = 100
	defaultBackfill  = 100
	msgQueueDisabled = "background geocoding is not configured"
	msgUnknownFilter = "unknown filter"
	msgStorageFailed = "provider storage unavailable"
	msgEnqueueFailed = "could not queue provider for geocoding"
)

// GeocodeQueue hands providers to the background worker.
type GeocodeQueue interface {
	EnqueueProviderGeocode(ctx context.Context, providerID uuid.UUID) error
}

// Service provides business logic for the provider directory.
type Service struct {
	repo    repository.Repository
	batch   *geo.BatchResolver
	catalog *filters.Catalog
	mapCfg  config.MapConfig
	bus     events.Bus
	queue   GeocodeQueue
	stats   *Stats
	log     *logger.Logger
}

// New creates a new directory service.
func New(repo repository.Repository, batch *geo.BatchResolver, catalog *filters.Catalog, mapCfg config.MapConfig, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		batch:   batch,
		catalog: catalog,
		mapCfg:  mapCfg,
		bus:     bus,
		stats:   NewStats(),
		log:     log,
	}
}

// SetGeocodeQueue enables background geocoding. Without a queue the backfill
// endpoint reports the feature as unavailable.
func (s *Service) SetGeocodeQueue(q GeocodeQueue) {
	s.queue = q
}

// Stats returns the resolution counters fed by ProviderLocationResolved.
func (s *Service) Stats() *Stats {
	return s.stats
}

// ParseFilters reads the filter selections from a query string.
func (s *Service) ParseFilters(values url.Values) *filters.FilterSet {
	return filters.ParseQuery(values, s.catalog)
}

// ListProviders returns one page of providers matching the search and the
// filter selections.
func (s *Service) ListProviders(ctx context.Context, req transport.ListProvidersRequest, fs *filters.FilterSet) (transport.ProviderListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	result, err := s.repo.ListProviders(ctx, repository.ListParams{
		Search:  req.Search,
		ZipCode: req.ZipCode,
		Tags:    selectionsOf(fs),
		Offset:  (page - 1) * pageSize,
		Limit:   pageSize,
	})
	if err != nil {
		return transport.ProviderListResponse{}, storageError("list providers", err)
	}

	items := make([]transport.ProviderResponse, 0, len(result.Items))
	for _, p := range result.Items {
		items = append(items, toProviderResponse(p))
	}

	return transport.ProviderListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (result.Total + pageSize - 1) / pageSize,
		Filters:    flattenValues(encodeFilters(fs)),
	}, nil
}

// ResolveAndStore runs a provider through the resolver, ignoring any stored
// coordinate, and saves the result when it is precise. Jittered placements
// are never written. The geocoder call shares the batch resolver's spacing,
// so background tasks and marker requests never overrun the upstream.
func (s *Service) ResolveAndStore(ctx context.Context, providerID uuid.UUID) (transport.GeocodeResultResponse, error) {
	p, err := s.repo.GetProvider(ctx, providerID)
	if err != nil {
		return transport.GeocodeResultResponse{}, storageError("get provider", err)
	}

	q := queryFor(p, s.defaultOrigin())
	q.Explicit = nil
	loc := s.batch.ResolveOne(ctx, q)

	stored := false
	if loc.Source.Precise() {
		err := s.repo.UpdateCoordinates(ctx, repository.UpdateCoordinatesParams{
			ID:     p.ID,
			Lat:    loc.Lat,
			Lng:    loc.Lng,
			Source: loc.Source.String(),
		})
		if err != nil {
			return transport.GeocodeResultResponse{}, storageError("update coordinates", err)
		}
		stored = true
	}

	s.bus.Publish(ctx, events.ProviderLocationResolved{
		BaseEvent:  events.NewBaseEvent(),
		ProviderID: p.ID,
		Source:     loc.Source.String(),
		Lat:        loc.Lat,
		Lng:        loc.Lng,
		Stored:     stored,
	})

	return transport.GeocodeResultResponse{
		ProviderID:     p.ID,
		Lat:            loc.Lat,
		Lng:            loc.Lng,
		Source:         loc.Source.String(),
		DisplayAddress: loc.DisplayAddress,
		Stored:         stored,
	}, nil
}

// QueueBackfill enqueues providers that have no stored coordinate.
func (s *Service) QueueBackfill(ctx context.Context, req transport.BackfillRequest) (transport.BackfillResponse, error) {
	if s.queue == nil {
		return transport.BackfillResponse{}, apperr.Unavailable(msgQueueDisabled)
	}
	limit := req.Limit
	if limit < 1 {
		limit = defaultBackfill
	}

	providers, err := s.repo.ListMissingCoordinates(ctx, limit)
	if err != nil {
		return transport.BackfillResponse{}, storageError("list missing coordinates", err)
	}

	queued := 0
	for _, p := range providers {
		if err := s.queue.EnqueueProviderGeocode(ctx, p.ID); err != nil {
			return transport.BackfillResponse{Queued: queued},
				apperr.Wrap(apperr.KindUnavailable, msgEnqueueFailed, err).WithOp("enqueue provider " + p.ID.String())
		}
		queued++
		s.bus.Publish(ctx, events.ProviderGeocodeQueued{BaseEvent: events.NewBaseEvent(), ProviderID: p.ID})
	}

	s.log.Info("geocode backfill queued", "count", queued)
	return transport.BackfillResponse{Queued: queued}, nil
}

// GeocodeStats returns the counters collected since start-up.
func (s *Service) GeocodeStats() transport.GeocodeStatsResponse {
	return s.stats.Snapshot()
}

// Schema returns the option tree for a filter key.
func (s *Service) Schema(key string) (transport.SchemaResponse, error) {
	schema, ok := s.catalog.Get(key)
	if !ok {
		return transport.SchemaResponse{}, apperr.NotFound(msgUnknownFilter)
	}
	return transport.SchemaResponse{
		Key:      schema.Key,
		MaxDepth: filters.MaxDepth,
		Options:  toOptionResponses(schema.Options),
	}, nil
}

// NormalizeSelection reads key from values, drops what the schema does not
// define and returns the canonical form.
func (s *Service) NormalizeSelection(key string, values url.Values) (transport.SelectionResponse, error) {
	if _, ok := s.catalog.Get(key); !ok {
		return transport.SelectionResponse{}, apperr.NotFound(msgUnknownFilter)
	}
	fs := s.ParseFilters(url.Values{key: values[key]})
	selection, _ := fs.Get(key)

	return transport.SelectionResponse{
		Key:      key,
		Selected: nonNil(selection.Selected()),
		Paths:    nonNil(selection.Serialize()),
		Query:    fs.Encode().Encode(),
	}, nil
}

func (s *Service) defaultOrigin() geo.Coordinate {
	return geo.Coordinate{Lat: s.mapCfg.GetMapDefaultLat(), Lng: s.mapCfg.GetMapDefaultLng()}
}

// storageError keeps typed repository errors such as not found and reports
// everything else as an internal failure tagged with op.
func storageError(op string, err error) error {
	if apperr.GetKind(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Wrap(apperr.KindInternal, msgStorageFailed, err).WithOp(op)
}
