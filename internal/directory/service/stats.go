package service

import (
	"sync"

	"marketplace_backend/internal/directory/transport"
)

// Stats counts resolver outcomes reported through ProviderLocationResolved.
type Stats struct {
	mu       sync.Mutex
	bySource map[string]int64
	stored   int64
	skipped  int64
}

// NewStats returns zeroed counters.
func NewStats() *Stats {
	return &Stats{bySource: make(map[string]int64)}
}

// Record adds one outcome.
func (s *Stats) Record(source string, stored bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySource[source]++
	if stored {
		s.stored++
	} else {
		s.skipped++
	}
}

// Snapshot copies the counters.
func (s *Stats) Snapshot() transport.GeocodeStatsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	bySource := make(map[string]int64, len(s.bySource))
	for k, v := range s.bySource {
		bySource[k] = v
	}
	return transport.GeocodeStatsResponse{BySource: bySource, Stored: s.stored, Skipped: s.skipped}
}
