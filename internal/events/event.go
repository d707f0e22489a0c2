// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"marketplace_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Directory Domain Events
// =============================================================================

// ProviderLocationResolved is published after a provider's location went
// through the resolver outside of a map request (worker, admin action).
type ProviderLocationResolved struct {
	BaseEvent
	ProviderID uuid.UUID `json:"providerId"`
	Source     string    `json:"source"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	// Stored is false when the result was not precise enough to persist.
	Stored bool `json:"stored"`
}

func (e ProviderLocationResolved) EventName() string { return "directory.provider.location_resolved" }

// ProviderGeocodeQueued is published when a provider is queued for background
// geocoding.
type ProviderGeocodeQueued struct {
	BaseEvent
	ProviderID uuid.UUID `json:"providerId"`
}

func (e ProviderGeocodeQueued) EventName() string { return "directory.provider.geocode_queued" }
