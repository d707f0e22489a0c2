package repository

import (
	"context"

	"github.com/google/uuid"
)

// Provider is a listed business as read from the hosted backend's tables.
// Tags holds label paths per filter schema key (categories, services, or any
// key an override schema declares).
type Provider struct {
	ID              uuid.UUID
	DisplayName     string
	Phone           string
	FullAddress     string
	Latitude        *float64
	Longitude       *float64
	LocationSource  string
	ServiceAreaZips []string
	Tags            map[string][][]string
}

// ListParams selects one page of providers.
type ListParams struct {
	Search string
	// ZipCode restricts to providers serving that ZIP.
	ZipCode string
	// Tags keeps providers that, for every key, carry a path equal to or
	// below one of the listed paths.
	Tags   map[string][][]string
	Offset int
	Limit  int
}

// ListResult is a page of providers plus the number of matches overall.
type ListResult struct {
	Items []Provider
	Total int
}

// UpdateCoordinatesParams stores a resolved location.
type UpdateCoordinatesParams struct {
	ID     uuid.UUID
	Lat    float64
	Lng    float64
	Source string
}

// ProviderReader provides read operations for providers.
type ProviderReader interface {
	ListProviders(ctx context.Context, params ListParams) (ListResult, error)
	GetProvider(ctx context.Context, id uuid.UUID) (Provider, error)
	ListMissingCoordinates(ctx context.Context, limit int) ([]Provider, error)
}

// ProviderWriter provides write operations for providers.
type ProviderWriter interface {
	UpdateCoordinates(ctx context.Context, params UpdateCoordinatesParams) error
}

// Repository combines all provider repository operations.
type Repository interface {
	ProviderReader
	ProviderWriter
}
