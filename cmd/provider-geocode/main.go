package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"marketplace_backend/internal/directory/repository"
	"marketplace_backend/internal/geo"
	"marketplace_backend/internal/geo/geocache"
	"marketplace_backend/internal/geo/nominatim"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/db"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const batchSize = 25

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting provider geocode backfill")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	var cache redis.Cmdable
	if cfg.IsSchedulerEnabled() {
		rdb, err := geocache.Connect(ctx, cfg)
		if err != nil {
			log.Warn("geocode cache unavailable", "error", err)
		} else {
			defer func() { _ = rdb.Close() }()
			cache = rdb
		}
	}

	zips := geo.DefaultZipTable()
	geocoder := geocache.Wrap(nominatim.New(cfg, log), cache, cfg, log)
	resolver := geo.NewResolver(geocoder, zips, log, geo.WithLookupTimeout(cfg.GetGeocoderTimeout()))
	batch := geo.NewBatchResolver(resolver, cfg.GetGeocoderMinSpacing())
	repo := repository.New(pool)

	attempted := make(map[uuid.UUID]struct{})
	for {
		providers, err := repo.ListMissingCoordinates(ctx, batchSize)
		if err != nil {
			log.Error("failed to list providers", "error", err)
			return
		}
		if len(providers) == 0 {
			log.Info("no providers left to geocode")
			return
		}

		fresh := providers[:0]
		for _, p := range providers {
			if _, seen := attempted[p.ID]; !seen {
				attempted[p.ID] = struct{}{}
				fresh = append(fresh, p)
			}
		}
		if len(fresh) == 0 {
			log.Info("no geocode progress in batch, stopping", "remaining", len(providers))
			return
		}

		// The address goes first so a street-level match wins over a
		// service-area ZIP centroid.
		queries := make([]geo.LocationQuery, len(fresh))
		for i, p := range fresh {
			queries[i] = geo.LocationQuery{FullAddress: sanitize.Address(p.FullAddress)}
		}
		results := batch.ResolveAll(ctx, queries)

		for i, p := range fresh {
			loc := results[i]
			if loc.Source == geo.SourceJittered && len(p.ServiceAreaZips) > 0 {
				if coord, ok := zips.Lookup(p.ServiceAreaZips[0]); ok {
					loc = geo.ResolvedLocation{Lat: coord.Lat, Lng: coord.Lng, Source: geo.SourceZipTable}
				}
			}
			if !loc.Source.Precise() {
				log.Info("no usable location", "providerId", p.ID)
				continue
			}

			err := repo.UpdateCoordinates(ctx, repository.UpdateCoordinatesParams{
				ID:     p.ID,
				Lat:    loc.Lat,
				Lng:    loc.Lng,
				Source: loc.Source.String(),
			})
			if err != nil {
				log.Error("failed to update provider", "providerId", p.ID, "error", err)
				continue
			}
			log.Info("provider geocoded", "providerId", p.ID, "source", loc.Source.String(), "lat", loc.Lat, "lng", loc.Lng)
		}

		if ctx.Err() != nil {
			log.Info("interrupted, stopping")
			return
		}
	}
}
