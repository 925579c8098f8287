package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/pinmap/internal/adapters/postgres"
	"github.com/samirrijal/pinmap/internal/adapters/valkey"
	"github.com/samirrijal/pinmap/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Pins  *usecases.PinService
	NATS  *nats.Conn
	DB    *postgres.DB
	Cache *valkey.Cache
	// OpenAPIPath is served at /docs/openapi.yaml. Defaults to api/openapi.yaml.
	OpenAPIPath string
}
