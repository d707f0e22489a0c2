package scheduler

import (
	"context"
	"time"

	"marketplace_backend/internal/directory/transport"
	"marketplace_backend/platform/logger"
)

const defaultSweepBatch = 100

// Backfiller queues providers that have no stored coordinate.
type Backfiller interface {
	QueueBackfill(ctx context.Context, req transport.BackfillRequest) (transport.BackfillResponse, error)
}

// GeocodeSweeper periodically queues providers missing coordinates, so new
// sign-ups show up on the map without an admin running the backfill.
type GeocodeSweeper struct {
	backfiller Backfiller
	log        *logger.Logger
	interval   time.Duration
	batch      int
}

func NewGeocodeSweeper(backfiller Backfiller, log *logger.Logger, interval time.Duration, batch int) *GeocodeSweeper {
	if batch <= 0 {
		batch = defaultSweepBatch
	}
	return &GeocodeSweeper{
		backfiller: backfiller,
		log:        log,
		interval:   interval,
		batch:      batch,
	}
}

// Run sweeps once immediately and then every interval until ctx is done. A
// non-positive interval disables the sweeper.
func (s *GeocodeSweeper) Run(ctx context.Context) {
	if s == nil || s.backfiller == nil || s.interval <= 0 {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *GeocodeSweeper) sweep(ctx context.Context) {
	resp, err := s.backfiller.QueueBackfill(ctx, transport.BackfillRequest{Limit: s.batch})
	if err != nil {
		s.log.Warn("geocode sweep failed", "error", err)
		return
	}

	if resp.Queued > 0 {
		s.log.Info("geocode sweep queued providers", "queued", resp.Queued)
	}
}
