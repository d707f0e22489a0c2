package geo

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultMinSpacing is the minimum delay between two geocoder calls.
const DefaultMinSpacing = 200 * time.Millisecond

// BatchResolver resolves many queries while keeping external calls to a
// minimum: per record the cheap rules run first (explicit coordinate, then a
// ZIP that is already known), and only then the geocoder is consulted.
//
// The limiter and semaphore are shared by every batch that goes through the
// same BatchResolver, so concurrent requests still respect the geocoder's
// usage policy: one call in flight, at least MinSpacing apart.
type BatchResolver struct {
	resolver *Resolver
	limiter  *rate.Limiter
	inFlight *semaphore.Weighted
}

// NewBatchResolver wraps r. A non-positive spacing uses DefaultMinSpacing.
func NewBatchResolver(r *Resolver, minSpacing time.Duration) *BatchResolver {
	if minSpacing <= 0 {
		minSpacing = DefaultMinSpacing
	}
	return &BatchResolver{
		resolver: r,
		limiter:  rate.NewLimiter(rate.Every(minSpacing), 1),
		inFlight: semaphore.NewWeighted(1),
	}
}

// ResolveAll returns one location per query, in order. Once ctx is done the
// network step is skipped and the remaining records degrade to the table and
// jitter rules, so the result is always complete.
func (b *BatchResolver) ResolveAll(ctx context.Context, queries []LocationQuery) []ResolvedLocation {
	out := make([]ResolvedLocation, len(queries))
	for i, q := range queries {
		out[i] = b.resolveOne(ctx, q)
	}
	return out
}

// ResolveAllFunc resolves queries and hands the result to deliver, unless ctx
// was cancelled in the meantime (the consumer went away). It reports whether
// deliver was called.
func (b *BatchResolver) ResolveAllFunc(ctx context.Context, queries []LocationQuery, deliver func([]ResolvedLocation)) bool {
	results := b.ResolveAll(ctx, queries)
	if ctx.Err() != nil {
		return false
	}
	deliver(results)
	return true
}

// ResolveOne applies the single-record priority (explicit, geocode, ZIP,
// jitter) but routes the geocoder call through the shared limiter, so one-off
// resolutions queue behind batches instead of bypassing the spacing.
func (b *BatchResolver) ResolveOne(ctx context.Context, q LocationQuery) ResolvedLocation {
	r := b.resolver

	if loc, ok := r.explicit(q); ok {
		return loc
	}
	if strings.TrimSpace(q.FullAddress) != "" && r.geocoder != nil {
		if loc, ok := b.geocodeSpaced(ctx, q); ok {
			return loc
		}
	}
	if loc, ok := r.zipTable(q, zipForQuery(q)); ok {
		return loc
	}
	return r.jitter(q)
}

func (b *BatchResolver) resolveOne(ctx context.Context, q LocationQuery) ResolvedLocation {
	r := b.resolver

	if loc, ok := r.explicit(q); ok {
		return loc
	}
	if loc, ok := r.zipTable(q, strings.TrimSpace(q.ZipCode)); ok {
		return loc
	}
	if strings.TrimSpace(q.FullAddress) != "" && r.geocoder != nil {
		if loc, ok := b.geocodeSpaced(ctx, q); ok {
			return loc
		}
	}
	if strings.TrimSpace(q.ZipCode) == "" {
		if loc, ok := r.zipTable(q, ExtractZIP(q.FullAddress)); ok {
			return loc
		}
	}
	return r.jitter(q)
}

// geocodeSpaced waits for the shared limiter immediately before the network
// call. Table lookups never wait.
func (b *BatchResolver) geocodeSpaced(ctx context.Context, q LocationQuery) (ResolvedLocation, bool) {
	if ctx.Err() != nil {
		return ResolvedLocation{}, false
	}
	if err := b.inFlight.Acquire(ctx, 1); err != nil {
		return ResolvedLocation{}, false
	}
	defer b.inFlight.Release(1)

	if err := b.limiter.Wait(ctx); err != nil {
		return ResolvedLocation{}, false
	}
	return b.resolver.geocode(ctx, q)
}
