package ports

import (
	"context"
	"errors"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishPinCreated(ctx context.Context, event *domain.PinCreatedEvent) error
}

// ErrCacheMiss is returned by CacheService.Get for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	// Incr atomically increments the integer at key, starting from 0, and
	// returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
}

// PinStore is the remote pin store as consumed by map clients.
type PinStore interface {
	CreatePin(ctx context.Context, lat, lng float64, memo string) (domain.PinID, error)
	GetAllPins(ctx context.Context) ([]domain.PinEntry, error)
	// GetPin returns domain.ErrNotFound for unknown ids.
	GetPin(ctx context.Context, id domain.PinID) (*domain.Pin, error)
	GetPinsByLocationRange(ctx context.Context, latMin, latMax, lngMin, lngMax float64) ([]domain.PinEntry, error)
	// Ready reports whether the connection to the store has been established.
	Ready() bool
}
