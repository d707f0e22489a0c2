package geo

import (
	"context"
	"sync"
	"time"
)

type fakeGeocoder struct {
	mu     sync.Mutex
	calls  []string
	times  []time.Time
	lookup func(ctx context.Context, address string) (GeocodeResult, bool, error)
}

func (f *fakeGeocoder) Lookup(ctx context.Context, address string) (GeocodeResult, bool, error) {
	f.mu.Lock()
	f.calls = append(f.calls, address)
	f.times = append(f.times, time.Now())
	fn := f.lookup
	f.mu.Unlock()

	if fn == nil {
		return GeocodeResult{}, false, nil
	}
	return fn(ctx, address)
}

func (f *fakeGeocoder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func foundAt(lat, lng float64, name string) func(context.Context, string) (GeocodeResult, bool, error) {
	return func(context.Context, string) (GeocodeResult, bool, error) {
		return GeocodeResult{Coordinate: Coordinate{Lat: lat, Lng: lng}, DisplayName: name}, true, nil
	}
}

var testOrigin = Coordinate{Lat: 40.0, Lng: -75.0}

func withinJitter(loc ResolvedLocation, origin Coordinate) bool {
	return loc.Lat >= origin.Lat-JitterRadius && loc.Lat <= origin.Lat+JitterRadius &&
		loc.Lng >= origin.Lng-JitterRadius && loc.Lng <= origin.Lng+JitterRadius
}
