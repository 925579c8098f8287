package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

// createPinRequest is the POST /v1/pins body. Coordinates are pointers so
// that a missing field is distinguishable from zero.
type createPinRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Memo      string   `json:"memo"`
}

type createPinResponse struct {
	ID domain.PinID `json:"id"`
}

// CreatePinHandler stores a pin and returns its id.
func CreatePinHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createPinRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Latitude == nil || req.Longitude == nil {
			return errBadRequest(c, "latitude and longitude are required")
		}

		id, err := deps.Pins.Create(c.UserContext(), *req.Latitude, *req.Longitude, req.Memo)
		if err != nil {
			return errFromDomain(c, err)
		}

		LoggerFromCtx(c.UserContext()).Info("pin created", "pin_id", id)
		return c.Status(fiber.StatusCreated).JSON(createPinResponse{ID: id})
	}
}

// ListPinsHandler returns every pin ordered by id.
func ListPinsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pins, err := deps.Pins.List(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(pins)
	}
}

// GetPinHandler returns a single pin by id.
func GetPinHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return errBadRequest(c, "id must be an unsigned integer")
		}

		pin, err := deps.Pins.GetByID(c.UserContext(), domain.PinID(id))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(pin)
	}
}

// PinsInRangeHandler returns pins inside a lat/lng box, edges inclusive.
func PinsInRangeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var vals [4]float64
		for i, name := range []string{"lat_min", "lat_max", "lng_min", "lng_max"} {
			raw := c.Query(name)
			if raw == "" {
				return errBadRequest(c, name+" is required")
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return errBadRequest(c, name+" must be a number")
			}
			vals[i] = v
		}

		pins, err := deps.Pins.InRange(c.UserContext(), vals[0], vals[1], vals[2], vals[3])
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(pins)
	}
}
