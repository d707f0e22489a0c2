package scheduler

import (
	"context"
	"fmt"

	"marketplace_backend/internal/directory/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ProviderGeocoder resolves a provider's location and stores it when precise.
type ProviderGeocoder interface {
	ResolveAndStore(ctx context.Context, providerID uuid.UUID) (transport.GeocodeResultResponse, error)
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	geocoder ProviderGeocoder
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, geocoder ProviderGeocoder, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	// Geocoding goes through the process-wide batch limiter, so extra
	// workers wait on it rather than adding upstream load.
	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 1
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
		Logger: newAsynqLogger(log),
	})

	w := newWorker(geocoder, log)
	w.server = server
	return w, nil
}

func newWorker(geocoder ProviderGeocoder, log *logger.Logger) *Worker {
	w := &Worker{
		mux:      asynq.NewServeMux(),
		geocoder: geocoder,
		log:      log,
	}
	w.mux.HandleFunc(TaskProviderGeocode, w.handleProviderGeocode)
	return w
}

// Run processes tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleProviderGeocode(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseProviderGeocodePayload(task)
	if err != nil {
		return fmt.Errorf("decode provider geocode payload: %v: %w", err, asynq.SkipRetry)
	}

	providerID, err := uuid.Parse(payload.ProviderID)
	if err != nil {
		return fmt.Errorf("invalid provider id %q: %w", payload.ProviderID, asynq.SkipRetry)
	}

	result, err := w.geocoder.ResolveAndStore(ctx, providerID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			w.log.Warn("provider geocode skipped, provider gone", "providerId", providerID)
			return nil
		}
		return err
	}

	w.log.Info("provider geocoded", "providerId", providerID, "source", result.Source, "stored", result.Stored)
	return nil
}
