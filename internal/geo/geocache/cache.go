// Package geocache stores geocoder answers in Redis so repeated map views do
// not hit the external service again.
package geocache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"marketplace_backend/internal/geo"
	"marketplace_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "geocode:v1:"
	missMarker = "-"
	writeLimit = 500 * time.Millisecond
)

type entry struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name,omitempty"`
}

// Cache decorates a Geocoder. Hits are kept for ttl, "no result" answers for
// missTTL (0 disables negative caching). Errors are never cached.
type Cache struct {
	next    geo.Geocoder
	rdb     redis.Cmdable
	ttl     time.Duration
	missTTL time.Duration
	log     *logger.Logger
}

// New wraps next with a Redis-backed cache.
func New(next geo.Geocoder, rdb redis.Cmdable, ttl, missTTL time.Duration, log *logger.Logger) *Cache {
	return &Cache{next: next, rdb: rdb, ttl: ttl, missTTL: missTTL, log: log}
}

// Lookup serves from Redis when possible. A Redis outage degrades to a direct
// lookup.
func (c *Cache) Lookup(ctx context.Context, address string) (geo.GeocodeResult, bool, error) {
	key := Key(address)

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		if res, found, ok := decode(cached); ok {
			return res, found, nil
		}
		c.warn("discarding unreadable geocode cache entry", key, nil)
	case !errors.Is(err, redis.Nil):
		c.warn("geocode cache read failed", key, err)
	}

	res, found, err := c.next.Lookup(ctx, address)
	if err != nil {
		return geo.GeocodeResult{}, false, err
	}
	c.store(ctx, key, res, found)
	return res, found, nil
}

func (c *Cache) store(ctx context.Context, key string, res geo.GeocodeResult, found bool) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeLimit)
	defer cancel()

	if !found {
		if c.missTTL <= 0 {
			return
		}
		if err := c.rdb.Set(writeCtx, key, missMarker, c.missTTL).Err(); err != nil {
			c.warn("geocode cache write failed", key, err)
		}
		return
	}

	payload, err := json.Marshal(entry{Lat: res.Lat, Lng: res.Lng, Name: res.DisplayName})
	if err != nil {
		return
	}
	if err := c.rdb.Set(writeCtx, key, payload, c.ttl).Err(); err != nil {
		c.warn("geocode cache write failed", key, err)
	}
}

// Key normalizes an address (case, whitespace) into a cache key.
func Key(address string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(address)), " ")
	sum := sha1.Sum([]byte(normalized))
	return keyPrefix + hex.EncodeToString(sum[:])
}

func decode(raw string) (geo.GeocodeResult, bool, bool) {
	if raw == missMarker {
		return geo.GeocodeResult{}, false, true
	}
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return geo.GeocodeResult{}, false, false
	}
	return geo.GeocodeResult{
		Coordinate:  geo.Coordinate{Lat: e.Lat, Lng: e.Lng},
		DisplayName: e.Name,
	}, true, true
}

func (c *Cache) warn(msg, key string, err error) {
	if c.log == nil {
		return
	}
	if err != nil {
		c.log.Warn(msg, "key", key, "error", err)
		return
	}
	c.log.Warn(msg, "key", key)
}

var _ geo.Geocoder = (*Cache)(nil)
