//go:build integration

package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/samirrijal/pinmap/internal/adapters/http"
	"github.com/samirrijal/pinmap/internal/adapters/postgres"
	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/core/usecases"
)

// setupTestDB starts Postgres in a container and returns a migrated DB.
func setupTestDB(t *testing.T) *postgres.DB {
	t.Helper()
	ctx := context.Background()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "pinmap",
				"POSTGRES_PASSWORD": "pinmap",
				"POSTGRES_DB":       "pinmap",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, _ := c.Host(ctx)
	port, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	db, err := postgres.New(ctx, fmt.Sprintf("postgres://pinmap:pinmap@%s:%s/pinmap?sslmode=disable", host, port.Port()))
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// TestPins_Integration_WithRealDB creates pins over HTTP and reads them back.
func TestPins_Integration_WithRealDB(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupTestDB(t)
	app := setupApp(&http.Dependencies{
		Pins: usecases.NewPinService(postgres.NewPinRepo(db), nil, nil, 0),
		DB:   db,
	})

	create := func(body string) uint64 {
		req := httptest.NewRequest("POST", "/v1/pins", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if resp.StatusCode != 201 {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		var out struct {
			ID uint64 `json:"id"`
		}
		json.NewDecoder(resp.Body).Decode(&out)
		return out.ID
	}

	nyc := create(`{"latitude":40.7128,"longitude":-74.0060,"memo":"NYC trip"}`)
	london := create(`{"latitude":51.5074,"longitude":-0.1278,"memo":"London"}`)
	if london <= nyc {
		t.Fatalf("ids must increase: %d then %d", nyc, london)
	}

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/pins", nil), -1)
	var all []domain.PinEntry
	json.NewDecoder(resp.Body).Decode(&all)
	if len(all) != 2 || uint64(all[0].ID) != nyc {
		t.Fatalf("unexpected list: %+v", all)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", fmt.Sprintf("/v1/pins/%d", london), nil), -1)
	var pin domain.Pin
	json.NewDecoder(resp.Body).Decode(&pin)
	if pin.Memo != "London" {
		t.Errorf("unexpected pin: %+v", pin)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/pins/range?lat_min=50&lat_max=52&lng_min=-1&lng_max=1", nil), -1)
	var ranged []domain.PinEntry
	json.NewDecoder(resp.Body).Decode(&ranged)
	if len(ranged) != 1 || uint64(ranged[0].ID) != london {
		t.Errorf("unexpected range result: %+v", ranged)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Errorf("expected ready 200 with only db configured, got %d", resp.StatusCode)
	}
}
