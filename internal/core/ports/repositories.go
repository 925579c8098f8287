package ports

import (
	"context"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

// PinRepository persists pins.
type PinRepository interface {
	Create(ctx context.Context, pin *domain.Pin) (domain.PinID, error)
	// GetByID returns domain.ErrNotFound for unknown ids.
	GetByID(ctx context.Context, id domain.PinID) (*domain.Pin, error)
	List(ctx context.Context) ([]domain.PinEntry, error)
	ListInBounds(ctx context.Context, b domain.Bounds) ([]domain.PinEntry, error)
}
