package service

import (
	"net/url"

	"marketplace_backend/internal/directory/repository"
	"marketplace_backend/internal/directory/transport"
	"marketplace_backend/internal/filters"
	"marketplace_backend/internal/geo"
	"marketplace_backend/platform/phone"
	"marketplace_backend/platform/sanitize"
)

// queryFor maps a provider row to a resolver query. The first service-area
// ZIP stands in when the address carries none.
func queryFor(p repository.Provider, origin geo.Coordinate) geo.LocationQuery {
	q := geo.LocationQuery{
		FullAddress:    sanitize.Address(p.FullAddress),
		FallbackOrigin: origin,
	}
	if p.Latitude != nil && p.Longitude != nil {
		q.Explicit = &geo.Coordinate{Lat: *p.Latitude, Lng: *p.Longitude}
	}
	if len(p.ServiceAreaZips) > 0 {
		q.ZipCode = p.ServiceAreaZips[0]
	}
	return q
}

func selectionsOf(fs *filters.FilterSet) map[string][][]string {
	if fs == nil {
		return nil
	}
	return fs.Selections()
}

func encodeFilters(fs *filters.FilterSet) url.Values {
	if fs == nil {
		return url.Values{}
	}
	return fs.Encode()
}

func displayName(p repository.Provider) string {
	return sanitize.Line(p.DisplayName)
}

func toProviderResponse(p repository.Provider) transport.ProviderResponse {
	resp := transport.ProviderResponse{
		ID:              p.ID,
		DisplayName:     displayName(p),
		FullAddress:     sanitize.Address(p.FullAddress),
		ServiceAreaZips: nonNil(p.ServiceAreaZips),
		Tags:            formatTags(p.Tags),
	}
	if p.Phone != "" {
		resp.Phone = phone.Display(p.Phone)
		resp.PhoneE164 = phone.NormalizeE164(p.Phone)
	}
	if p.Latitude != nil && p.Longitude != nil {
		resp.Lat = p.Latitude
		resp.Lng = p.Longitude
	}
	return resp
}

func formatTags(tags map[string][][]string) map[string][]string {
	out := make(map[string][]string, len(tags))
	for key, paths := range tags {
		out[key] = formatPaths(paths)
	}
	return out
}

func formatPaths(paths [][]string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, filters.FormatPath(p))
	}
	return out
}

func toOptionResponses(options []filters.Option) []transport.OptionResponse {
	out := make([]transport.OptionResponse, 0, len(options))
	for _, opt := range options {
		item := transport.OptionResponse{Label: opt.Label}
		if len(opt.Children) > 0 {
			item.Children = toOptionResponses(opt.Children)
		}
		out = append(out, item)
	}
	return out
}

func flattenValues(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for key := range values {
		out[key] = values.Get(key)
	}
	return out
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
