package transport

import "github.com/google/uuid"

// ListProvidersRequest holds the non-filter query parameters of a listing.
// Filter selections are read separately from the same query string.
type ListProvidersRequest struct {
	Search   string `form:"search" validate:"omitempty,max=100"`
	ZipCode  string `form:"zip" validate:"omitempty,zip5"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// MarkersRequest asks for map pins. Lat/Lng is the viewer's position, used as
// the origin for providers that cannot be placed.
type MarkersRequest struct {
	Search  string   `form:"search" validate:"omitempty,max=100"`
	ZipCode string   `form:"zip" validate:"omitempty,zip5"`
	Lat     *float64 `form:"lat" validate:"required_with=Lng,omitempty,latitude"`
	Lng     *float64 `form:"lng" validate:"required_with=Lat,omitempty,longitude"`
	Limit   int      `form:"limit" validate:"omitempty,min=1,max=200"`
}

// BackfillRequest queues background geocoding for providers without
// coordinates.
type BackfillRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=500"`
}

// ProviderResponse is a provider in listings. Tags maps each filter key to
// the provider's dotted label paths.
type ProviderResponse struct {
	ID              uuid.UUID           `json:"id"`
	DisplayName     string              `json:"displayName"`
	Phone           string              `json:"phone,omitempty"`
	PhoneE164       string              `json:"phoneE164,omitempty"`
	FullAddress     string              `json:"fullAddress,omitempty"`
	Lat             *float64            `json:"lat,omitempty"`
	Lng             *float64            `json:"lng,omitempty"`
	ServiceAreaZips []string            `json:"serviceAreaZips"`
	Tags            map[string][]string `json:"tags"`
}

// ProviderListResponse wraps a page of providers. Filters echoes the
// normalized filter parameters for shareable links.
type ProviderListResponse struct {
	Items      []ProviderResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
	Filters    map[string]string  `json:"filters"`
}

// MarkerResponse is one map pin.
type MarkerResponse struct {
	ProviderID     uuid.UUID `json:"providerId"`
	DisplayName    string    `json:"displayName"`
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	Source         string    `json:"source"`
	DisplayAddress string    `json:"displayAddress,omitempty"`
}

// MarkersResponse lists pins around Origin.
type MarkersResponse struct {
	Origin  CoordinateResponse `json:"origin"`
	Markers []MarkerResponse   `json:"markers"`
}

// CoordinateResponse is a bare lat/lng pair.
type CoordinateResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GeocodeResultResponse reports a single resolve-and-store run.
type GeocodeResultResponse struct {
	ProviderID     uuid.UUID `json:"providerId"`
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	Source         string    `json:"source"`
	DisplayAddress string    `json:"displayAddress,omitempty"`
	Stored         bool      `json:"stored"`
}

// BackfillResponse reports how many providers were queued.
type BackfillResponse struct {
	Queued int `json:"queued"`
}

// GeocodeStatsResponse counts resolutions per source since start-up.
type GeocodeStatsResponse struct {
	BySource map[string]int64 `json:"bySource"`
	Stored   int64            `json:"stored"`
	Skipped  int64            `json:"skipped"`
}

// OptionResponse mirrors a schema option.
type OptionResponse struct {
	Label    string           `json:"label"`
	Children []OptionResponse `json:"children,omitempty"`
}

// SchemaResponse is a filter schema as served to clients.
type SchemaResponse struct {
	Key      string           `json:"key"`
	MaxDepth int              `json:"maxDepth"`
	Options  []OptionResponse `json:"options"`
}

// SelectionResponse is a normalized selection for one filter key.
type SelectionResponse struct {
	Key      string   `json:"key"`
	Selected []string `json:"selected"`
	Paths    []string `json:"paths"`
	Query    string   `json:"query"`
}
