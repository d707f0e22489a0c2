package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"marketplace_backend/platform/logger"
)

const (
	// DefaultLookupTimeout bounds a single geocoder call.
	DefaultLookupTimeout = 3 * time.Second
	// JitterRadius is the maximum offset, in degrees, applied on each axis
	// when nothing better than the fallback origin is known.
	JitterRadius = 0.05
)

var errNoGeocoder = errors.New("no geocoder configured")

// Resolver applies the resolution chain to a single query:
// explicit coordinate, geocoded address, ZIP table, jitter.
type Resolver struct {
	geocoder Geocoder
	zips     *ZipTable
	timeout  time.Duration
	log      *logger.Logger

	randMu sync.Mutex
	rnd    *rand.Rand
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithLookupTimeout overrides DefaultLookupTimeout.
func WithLookupTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithRand makes jitter deterministic, for tests.
func WithRand(rnd *rand.Rand) Option {
	return func(r *Resolver) {
		r.rnd = rnd
	}
}

// NewResolver creates a resolver. geocoder and zips may be nil, in which case
// the corresponding rule never matches.
func NewResolver(geocoder Geocoder, zips *ZipTable, log *logger.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		geocoder: geocoder,
		zips:     zips,
		timeout:  DefaultLookupTimeout,
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a coordinate for q. It never fails.
func (r *Resolver) Resolve(ctx context.Context, q LocationQuery) ResolvedLocation {
	if loc, ok := r.explicit(q); ok {
		return loc
	}
	if loc, ok := r.geocode(ctx, q); ok {
		return loc
	}
	if loc, ok := r.zipTable(q, zipForQuery(q)); ok {
		return loc
	}
	return r.jitter(q)
}

func (r *Resolver) explicit(q LocationQuery) (ResolvedLocation, bool) {
	if q.Explicit == nil {
		return ResolvedLocation{}, false
	}
	if !q.Explicit.Valid() {
		r.logFailure("invalid_explicit", displayAddress(q, ""), fmt.Errorf("lat=%v lng=%v", q.Explicit.Lat, q.Explicit.Lng))
		return ResolvedLocation{}, false
	}
	return ResolvedLocation{
		Lat:            q.Explicit.Lat,
		Lng:            q.Explicit.Lng,
		Source:         SourceExplicit,
		DisplayAddress: displayAddress(q, ""),
	}, true
}

func (r *Resolver) geocode(ctx context.Context, q LocationQuery) (ResolvedLocation, bool) {
	address := strings.TrimSpace(q.FullAddress)
	if address == "" || r.geocoder == nil {
		return ResolvedLocation{}, false
	}

	result, found, err := r.lookup(ctx, address)
	if err != nil {
		r.logFailure("lookup", address, err)
		return ResolvedLocation{}, false
	}
	if !found {
		r.logFailure("no_result", address, nil)
		return ResolvedLocation{}, false
	}
	if !result.Coordinate.Valid() {
		r.logFailure("invalid_coordinate", address, fmt.Errorf("lat=%v lng=%v", result.Lat, result.Lng))
		return ResolvedLocation{}, false
	}

	return ResolvedLocation{
		Lat:            result.Lat,
		Lng:            result.Lng,
		Source:         SourceGeocoded,
		DisplayAddress: displayAddress(q, result.DisplayName),
	}, true
}

// lookup calls the geocoder with the timeout applied. A panicking geocoder is
// treated like any other failure.
func (r *Resolver) lookup(ctx context.Context, address string) (result GeocodeResult, found bool, err error) {
	if r.geocoder == nil {
		return GeocodeResult{}, false, errNoGeocoder
	}
	if ctx == nil {
		ctx = context.Background()
	}

	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			result, found, err = GeocodeResult{}, false, fmt.Errorf("geocoder panic: %v", rec)
		}
	}()

	return r.geocoder.Lookup(lookupCtx, address)
}

func (r *Resolver) zipTable(q LocationQuery, zip string) (ResolvedLocation, bool) {
	if zip == "" {
		return ResolvedLocation{}, false
	}
	coord, ok := r.zips.Lookup(zip)
	if !ok {
		return ResolvedLocation{}, false
	}
	return ResolvedLocation{
		Lat:            coord.Lat,
		Lng:            coord.Lng,
		Source:         SourceZipTable,
		DisplayAddress: displayAddress(q, ""),
	}, true
}

func (r *Resolver) jitter(q LocationQuery) ResolvedLocation {
	origin := q.FallbackOrigin
	if !origin.Valid() {
		origin = Coordinate{}
	}
	return ResolvedLocation{
		Lat:            clampLat(origin.Lat + r.offset()),
		Lng:            wrapLng(origin.Lng + r.offset()),
		Source:         SourceJittered,
		DisplayAddress: displayAddress(q, ""),
	}
}

// offset returns a uniform value in [-JitterRadius, +JitterRadius).
func (r *Resolver) offset() float64 {
	var u float64
	if r.rnd != nil {
		r.randMu.Lock()
		u = r.rnd.Float64()
		r.randMu.Unlock()
	} else {
		u = rand.Float64()
	}
	return (u*2 - 1) * JitterRadius
}

// clampLat pins a jittered latitude to the poles.
func clampLat(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

// wrapLng carries a jittered longitude across the antimeridian.
func wrapLng(lng float64) float64 {
	switch {
	case lng > 180:
		return lng - 360
	case lng < -180:
		return lng + 360
	}
	return lng
}

func (r *Resolver) logFailure(stage, address string, err error) {
	if r.log == nil {
		return
	}
	r.log.GeocodeFailed(stage, address, err)
}

// zipForQuery prefers the declared ZIP and falls back to one found in the address.
func zipForQuery(q LocationQuery) string {
	if zip := strings.TrimSpace(q.ZipCode); zip != "" {
		return zip
	}
	return ExtractZIP(q.FullAddress)
}

func displayAddress(q LocationQuery, geocoded string) string {
	if name := strings.TrimSpace(geocoded); name != "" {
		return name
	}
	if address := strings.TrimSpace(q.FullAddress); address != "" {
		return address
	}
	return zipForQuery(q)
}
