package geocache

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"marketplace_backend/internal/geo"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 3 * time.Second

// Connect opens the Redis client shared with the task queue settings
// (REDIS_URL, REDIS_TLS_INSECURE) and checks it answers.
func Connect(ctx context.Context, cfg config.SchedulerConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Wrap returns next decorated with the cache, or next itself when rdb is nil.
func Wrap(next geo.Geocoder, rdb redis.Cmdable, cfg config.GeocodingConfig, log *logger.Logger) geo.Geocoder {
	if rdb == nil {
		return next
	}
	return New(next, rdb, cfg.GetGeocodeCacheTTL(), cfg.GetGeocodeMissTTL(), log)
}
