package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// HealthHandler is the liveness probe map clients poll before their first read.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": Version,
		})
	}
}

type readinessCheck struct {
	name     string
	required bool
	// nil when the dependency is not configured
	probe func(ctx context.Context) error
}

var errDisconnected = errors.New("disconnected")

func readinessChecks(deps *Dependencies) []readinessCheck {
	checks := []readinessCheck{{name: "database", required: true}, {name: "nats"}, {name: "cache"}}
	if deps.DB != nil {
		checks[0].probe = deps.DB.Pool.Ping
	}
	if deps.NATS != nil {
		nc := deps.NATS
		checks[1].probe = func(context.Context) error {
			if !nc.IsConnected() {
				return errDisconnected
			}
			return nil
		}
	}
	if deps.Cache != nil {
		checks[2].probe = deps.Cache.Ping
	}
	return checks
}

// ReadyHandler reports 503 when the database is missing or any configured
// dependency fails its probe. NATS and the cache are optional.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		results := make(map[string]string)
		ready := true
		for _, chk := range readinessChecks(deps) {
			if chk.probe == nil {
				results[chk.name] = "not configured"
				if chk.required {
					ready = false
				}
				continue
			}
			if err := chk.probe(ctx); err != nil {
				results[chk.name] = "error: " + err.Error()
				ready = false
				continue
			}
			results[chk.name] = "ok"
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": results})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": results})
	}
}
