package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a pin id is unknown to the store.
	ErrNotFound = errors.New("pin not found")
	// ErrInvalidCoordinates is returned for latitudes outside [-90, 90],
	// non-finite values, or inverted latitude ranges.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// PinID is assigned by the store on creation and never reused.
type PinID uint64

// Pin is a memo attached to a geographic coordinate.
type Pin struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Memo      string  `json:"memo"`
}

// Point returns the pin location.
func (p Pin) Point() GeoPoint {
	return GeoPoint{Lat: p.Latitude, Lon: p.Longitude}
}

// PinEntry pairs a pin with its identifier, as returned by list queries.
type PinEntry struct {
	ID  PinID `json:"id"`
	Pin Pin   `json:"pin"`
}

// PinCreatedEvent is published after a pin has been stored.
type PinCreatedEvent struct {
	ID        PinID     `json:"id"`
	Pin       Pin       `json:"pin"`
	CreatedAt time.Time `json:"created_at"`
}
