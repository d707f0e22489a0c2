package service

import (
	"context"
	"fmt"

	"marketplace_backend/internal/directory/repository"
	"marketplace_backend/internal/directory/transport"
	"marketplace_backend/internal/filters"
	"marketplace_backend/internal/geo"
)

// Markers places every matching provider on the map. Providers without a
// stored coordinate go through the batch resolver, so the response always has
// one pin per provider.
func (s *Service) Markers(ctx context.Context, req transport.MarkersRequest, fs *filters.FilterSet) (transport.MarkersResponse, error) {
	limit := req.Limit
	if limit < 1 {
		limit = defaultMarkers
	}

	result, err := s.repo.ListProviders(ctx, repository.ListParams{
		Search:  req.Search,
		ZipCode: req.ZipCode,
		Tags:    selectionsOf(fs),
		Limit:   limit,
	})
	if err != nil {
		return transport.MarkersResponse{}, storageError("list marker providers", err)
	}
	matched := result.Items

	origin := s.defaultOrigin()
	if req.Lat != nil && req.Lng != nil {
		if viewer := (geo.Coordinate{Lat: *req.Lat, Lng: *req.Lng}); viewer.Valid() {
			origin = viewer
		}
	}

	queries := make([]geo.LocationQuery, len(matched))
	for i, p := range matched {
		queries[i] = queryFor(p, origin)
	}

	resp := transport.MarkersResponse{
		Origin:  transport.CoordinateResponse{Lat: origin.Lat, Lng: origin.Lng},
		Markers: make([]transport.MarkerResponse, 0, len(matched)),
	}
	delivered := s.batch.ResolveAllFunc(ctx, queries, func(locations []geo.ResolvedLocation) {
		for i, loc := range locations {
			resp.Markers = append(resp.Markers, transport.MarkerResponse{
				ProviderID:     matched[i].ID,
				DisplayName:    displayName(matched[i]),
				Lat:            loc.Lat,
				Lng:            loc.Lng,
				Source:         loc.Source.String(),
				DisplayAddress: loc.DisplayAddress,
			})
		}
	})
	if !delivered {
		return transport.MarkersResponse{}, fmt.Errorf("resolve markers: %w", context.Cause(ctx))
	}
	return resp, nil
}
