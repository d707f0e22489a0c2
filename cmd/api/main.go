package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace_backend/internal/directory"
	"marketplace_backend/internal/events"
	"marketplace_backend/internal/filters"
	"marketplace_backend/internal/geo"
	"marketplace_backend/internal/geo/geocache"
	"marketplace_backend/internal/geo/nominatim"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/http/router"
	"marketplace_backend/internal/scheduler"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/db"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	rdb := initRedis(ctx, cfg, log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	geocoder := geocache.Wrap(nominatim.New(cfg, log), cacheClient(rdb), cfg, log)
	resolver := geo.NewResolver(geocoder, geo.DefaultZipTable(), log, geo.WithLookupTimeout(cfg.GetGeocoderTimeout()))
	batch := geo.NewBatchResolver(resolver, cfg.GetGeocoderMinSpacing())

	catalog, err := filters.LoadCatalog(ctx, filters.SourceFor(cfg.GetFilterSchemaPath()))
	if err != nil {
		log.Error("failed to load filter schemas", "error", err, "path", cfg.GetFilterSchemaPath())
		panic("failed to load filter schemas: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	directoryModule := directory.NewModule(pool, batch, catalog, cfg, eventBus, val, log)
	directoryModule.RegisterHandlers(eventBus)

	worker, sweeper, closeScheduler := initScheduler(cfg, directoryModule, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			directoryModule,
		},
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if worker != nil {
		g.Go(func() error {
			worker.Run(gctx)
			return nil
		})
	}
	if sweeper != nil {
		g.Go(func() error {
			sweeper.Run(gctx)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// initRedis connects when REDIS_URL is set. A failure only disables the
// geocode cache and background jobs.
func initRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	if !cfg.IsSchedulerEnabled() {
		log.Warn("REDIS_URL not configured; geocode cache and background geocoding disabled")
		return nil
	}
	rdb, err := geocache.Connect(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis; geocode cache disabled", "error", err)
		return nil
	}
	return rdb
}

// cacheClient avoids handing a typed nil to geocache.Wrap.
func cacheClient(rdb *redis.Client) redis.Cmdable {
	if rdb == nil {
		return nil
	}
	return rdb
}

func initScheduler(cfg *config.Config, directoryModule *directory.Module, log *logger.Logger) (*scheduler.Worker, *scheduler.GeocodeSweeper, func()) {
	if !cfg.IsSchedulerEnabled() {
		return nil, nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil, nil
	}
	directoryModule.Service().SetGeocodeQueue(client)

	worker, err := scheduler.NewWorker(cfg, directoryModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		return nil, nil, func() { _ = client.Close() }
	}

	sweeper := scheduler.NewGeocodeSweeper(directoryModule.Service(), log, cfg.GetGeocodeSweepInterval(), 0)
	return worker, sweeper, func() { _ = client.Close() }
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
