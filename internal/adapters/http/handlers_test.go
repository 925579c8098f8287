package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/pinmap/internal/adapters/http"
	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/core/usecases"
)

// ---- Mock repository ----

type mockPinRepo struct {
	createFn       func(ctx context.Context, p *domain.Pin) (domain.PinID, error)
	getByIDFn      func(ctx context.Context, id domain.PinID) (*domain.Pin, error)
	listFn         func(ctx context.Context) ([]domain.PinEntry, error)
	listInBoundsFn func(ctx context.Context, b domain.Bounds) ([]domain.PinEntry, error)
}

func (m *mockPinRepo) Create(ctx context.Context, p *domain.Pin) (domain.PinID, error) {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return 1, nil
}
func (m *mockPinRepo) GetByID(ctx context.Context, id domain.PinID) (*domain.Pin, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
func (m *mockPinRepo) List(ctx context.Context) ([]domain.PinEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockPinRepo) ListInBounds(ctx context.Context, b domain.Bounds) ([]domain.PinEntry, error) {
	if m.listInBoundsFn != nil {
		return m.listInBoundsFn(ctx, b)
	}
	return nil, nil
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(repo *mockPinRepo) *handler.Dependencies {
	return &handler.Dependencies{
		Pins: usecases.NewPinService(repo, nil, nil, 0),
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

var samplePins = []domain.PinEntry{
	{ID: 1, Pin: domain.Pin{Latitude: 40.7128, Longitude: -74.0060, Memo: "NYC trip"}},
	{ID: 2, Pin: domain.Pin{Latitude: 51.5074, Longitude: -0.1278, Memo: "London"}},
}

// ---- Create ----

func TestCreatePin_Success(t *testing.T) {
	var stored *domain.Pin
	app := setupApp(makeDeps(&mockPinRepo{
		createFn: func(ctx context.Context, p *domain.Pin) (domain.PinID, error) {
			stored = p
			return 7, nil
		},
	}))

	req := httptest.NewRequest("POST", "/v1/pins", strings.NewReader(`{"latitude":10,"longitude":190,"memo":"east"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	var result struct {
		ID uint64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.ID != 7 {
		t.Errorf("expected id 7, got %d", result.ID)
	}
	if stored == nil || stored.Longitude != -170 || stored.Memo != "east" {
		t.Errorf("expected wrapped longitude -170, got %+v", stored)
	}
}

func TestCreatePin_MissingCoordinates(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{}))

	req := httptest.NewRequest("POST", "/v1/pins", strings.NewReader(`{"memo":"nowhere"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreatePin_InvalidLatitude(t *testing.T) {
	called := false
	app := setupApp(makeDeps(&mockPinRepo{
		createFn: func(ctx context.Context, p *domain.Pin) (domain.PinID, error) {
			called = true
			return 1, nil
		},
	}))

	req := httptest.NewRequest("POST", "/v1/pins", strings.NewReader(`{"latitude":91,"longitude":0,"memo":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var apiErr handler.APIError
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "bad_request" {
		t.Errorf("expected bad_request, got %q", apiErr.Code)
	}
	if called {
		t.Error("repository should not be called for invalid coordinates")
	}
}

func TestCreatePin_BadBody(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{}))

	req := httptest.NewRequest("POST", "/v1/pins", strings.NewReader(`{"latitude":`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreatePin_StoreFailure(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{
		createFn: func(ctx context.Context, p *domain.Pin) (domain.PinID, error) {
			return 0, errors.New("connection refused")
		},
	}))

	req := httptest.NewRequest("POST", "/v1/pins", strings.NewReader(`{"latitude":1,"longitude":2,"memo":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

// ---- List ----

func TestListPins_Success(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{
		listFn: func(ctx context.Context) ([]domain.PinEntry, error) { return samplePins, nil },
	}))

	req := httptest.NewRequest("GET", "/v1/pins", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("expected no-cache, got %q", cc)
	}

	var result []domain.PinEntry
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result) != 2 || result[0].ID != 1 || result[1].Pin.Memo != "London" {
		t.Errorf("unexpected pins: %+v", result)
	}
}

func TestListPins_EmptyIsArray(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{}))

	req := httptest.NewRequest("GET", "/v1/pins", nil)
	resp, _ := app.Test(req, -1)
	body := strings.TrimSpace(string(readBody(t, resp.Body)))
	if body != "[]" {
		t.Errorf("expected [], got %s", body)
	}
}

// ---- Get ----

func TestGetPin_Success(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{
		getByIDFn: func(ctx context.Context, id domain.PinID) (*domain.Pin, error) {
			if id != 2 {
				return nil, domain.ErrNotFound
			}
			p := samplePins[1].Pin
			return &p, nil
		},
	}))

	req := httptest.NewRequest("GET", "/v1/pins/2", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Errorf("expected immutable caching, got %q", cc)
	}

	var pin domain.Pin
	json.NewDecoder(resp.Body).Decode(&pin)
	if pin.Memo != "London" || pin.Latitude != 51.5074 {
		t.Errorf("unexpected pin: %+v", pin)
	}
}

func TestGetPin_NotFound(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{}))

	req := httptest.NewRequest("GET", "/v1/pins/999", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	var apiErr handler.APIError
	json.NewDecoder(resp.Body).Decode(&apiErr)
	if apiErr.Code != "not_found" {
		t.Errorf("expected not_found, got %q", apiErr.Code)
	}
	if resp.Header.Get("Cache-Control") != "" {
		t.Errorf("errors must not be cached, got %q", resp.Header.Get("Cache-Control"))
	}
}

func TestGetPin_BadID(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{}))

	for _, id := range []string{"abc", "-1"} {
		req := httptest.NewRequest("GET", "/v1/pins/"+id, nil)
		resp, _ := app.Test(req, -1)
		if resp.StatusCode != 400 {
			t.Errorf("id %q: expected 400, got %d", id, resp.StatusCode)
		}
	}
}

// ---- Range ----

func TestPinsInRange_Success(t *testing.T) {
	var got domain.Bounds
	app := setupApp(makeDeps(&mockPinRepo{
		listInBoundsFn: func(ctx context.Context, b domain.Bounds) ([]domain.PinEntry, error) {
			got = b
			return samplePins[1:], nil
		},
	}))

	req := httptest.NewRequest("GET", "/v1/pins/range?lat_min=50&lat_max=52&lng_min=-1&lng_max=1", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}

	want := domain.Bounds{MinLat: 50, MaxLat: 52, MinLon: -1, MaxLon: 1}
	if got != want {
		t.Errorf("expected bounds %+v, got %+v", want, got)
	}

	var result []domain.PinEntry
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result) != 1 || result[0].ID != 2 {
		t.Errorf("unexpected pins: %+v", result)
	}
}

func TestPinsInRange_Antimeridian(t *testing.T) {
	var got domain.Bounds
	app := setupApp(makeDeps(&mockPinRepo{
		listInBoundsFn: func(ctx context.Context, b domain.Bounds) ([]domain.PinEntry, error) {
			got = b
			return nil, nil
		},
	}))

	req := httptest.NewRequest("GET", "/v1/pins/range?lat_min=-30&lat_max=0&lng_min=170&lng_max=-170", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !got.CrossesAntimeridian() {
		t.Errorf("expected antimeridian box, got %+v", got)
	}
}

func TestPinsInRange_MissingParam(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{}))

	req := httptest.NewRequest("GET", "/v1/pins/range?lat_min=0&lat_max=1&lng_min=0", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPinsInRange_InvertedLatitude(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{}))

	req := httptest.NewRequest("GET", "/v1/pins/range?lat_min=10&lat_max=0&lng_min=0&lng_max=1", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

// ---- GraphQL ----

func graphqlRequest(t *testing.T, app *fiber.App, query string) map[string]interface{} {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"query": query})
	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if errs, ok := result["errors"]; ok {
		t.Fatalf("graphql errors: %v", errs)
	}
	return result["data"].(map[string]interface{})
}

func TestGraphQL_Pins(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{
		listFn: func(ctx context.Context) ([]domain.PinEntry, error) { return samplePins, nil },
	}))

	data := graphqlRequest(t, app, `{ pins { id latitude memo } }`)
	pins := data["pins"].([]interface{})
	if len(pins) != 2 {
		t.Fatalf("expected 2 pins, got %d", len(pins))
	}
	first := pins[0].(map[string]interface{})
	if first["id"] != "1" || first["memo"] != "NYC trip" {
		t.Errorf("unexpected first pin: %v", first)
	}
}

func TestGraphQL_PinNotFoundIsNull(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{}))

	data := graphqlRequest(t, app, `{ pin(id: "42") { memo } }`)
	if data["pin"] != nil {
		t.Errorf("expected null pin, got %v", data["pin"])
	}
}

func TestGraphQL_CreatePin(t *testing.T) {
	var stored *domain.Pin
	app := setupApp(makeDeps(&mockPinRepo{
		createFn: func(ctx context.Context, p *domain.Pin) (domain.PinID, error) {
			stored = p
			return 11, nil
		},
	}))

	data := graphqlRequest(t, app, `mutation { createPin(latitude: 51.5, longitude: -0.12, memo: "London") }`)
	if data["createPin"] != "11" {
		t.Errorf("expected id 11, got %v", data["createPin"])
	}
	if stored == nil || stored.Memo != "London" {
		t.Errorf("unexpected stored pin: %+v", stored)
	}
}

// ---- Health ----

func TestHealth_Returns200(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{}))

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	if result["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", result["status"])
	}
}

func TestReady_NoDB(t *testing.T) {
	// DB, NATS, Cache are nil
	app := setupApp(makeDeps(&mockPinRepo{}))

	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 503 {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestWebSocket_PlainGetNeedsUpgrade(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{}))

	req := httptest.NewRequest("GET", "/ws", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Fatalf("expected 426, got %d", resp.StatusCode)
	}
}

// ---- ETag ----

func TestListPins_ETagNotModified(t *testing.T) {
	app := setupApp(makeDeps(&mockPinRepo{
		listFn: func(ctx context.Context) ([]domain.PinEntry, error) { return samplePins, nil },
	}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/pins", nil), -1)
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/v1/pins", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}
}
