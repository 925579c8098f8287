package selection

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

// Inspection is a read-only view of one pin.
type Inspection struct {
	Entry    domain.PinEntry
	NotFound bool
	Err      error
}

// NewInspection wraps an already-fetched pin.
func NewInspection(e domain.PinEntry) Inspection {
	return Inspection{Entry: e}
}

// FormatCoord renders a coordinate with 6 decimals and a degree sign.
func FormatCoord(v float64) string {
	return fmt.Sprintf("%.6f°", v)
}

func (i Inspection) IDText() string        { return "#" + strconv.FormatUint(uint64(i.Entry.ID), 10) }
func (i Inspection) LatitudeText() string  { return FormatCoord(i.Entry.Pin.Latitude) }
func (i Inspection) LongitudeText() string { return FormatCoord(i.Entry.Pin.Longitude) }
func (i Inspection) Memo() string          { return i.Entry.Pin.Memo }

// Message describes why the pin could not be shown, or "" when it can.
func (i Inspection) Message() string {
	switch {
	case i.NotFound:
		return fmt.Sprintf("Pin %s does not exist", i.IDText())
	case i.Err != nil:
		return "Failed to load pin: " + i.Err.Error()
	}
	return ""
}

// PinGetter fetches a single pin.
type PinGetter interface {
	Get(ctx context.Context, id domain.PinID) (*domain.Pin, error)
}

// LoadInspection fetches a pin by id. Failures are carried in the result so
// the flow always has something to show.
func LoadInspection(ctx context.Context, g PinGetter, id domain.PinID) Inspection {
	pin, err := g.Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return Inspection{Entry: domain.PinEntry{ID: id}, NotFound: true}
	case err != nil:
		return Inspection{Entry: domain.PinEntry{ID: id}, Err: err}
	}
	return Inspection{Entry: domain.PinEntry{ID: id, Pin: *pin}}
}
