// Package pinstore is the map client's connection to the pin store service.
package pinstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

// StatusError is returned for unexpected responses from the store.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("pin store: status %d", e.Code)
	}
	return fmt.Sprintf("pin store: status %d: %s", e.Code, e.Message)
}

// Client implements ports.PinStore over the store's REST API.
type Client struct {
	base    string
	hc      *fasthttp.Client
	timeout time.Duration
	ready   atomic.Bool
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying fasthttp client.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// New creates a client for the store at baseURL. Requests are bounded by
// timeout unless the context carries an earlier deadline.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		base:    strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		hc: &fasthttp.Client{
			Name:                "pinmap",
			MaxConnsPerHost:     16,
			MaxIdleConnDuration: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Ready reports whether a health probe has succeeded.
func (c *Client) Ready() bool {
	return c.ready.Load()
}

// Probe checks the store's health endpoint once and marks the client ready
// on success.
func (c *Client) Probe(ctx context.Context) error {
	if _, err := c.do(ctx, fasthttp.MethodGet, "/v1/health", nil, nil); err != nil {
		return err
	}
	if !c.ready.Swap(true) {
		slog.InfoContext(ctx, "pin store connected", "url", c.base)
	}
	return nil
}

// WaitReady probes every interval until the store answers or ctx is done.
func (c *Client) WaitReady(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		err := c.Probe(ctx)
		if err == nil {
			return nil
		}
		slog.DebugContext(ctx, "pin store not reachable yet", "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// CreatePin stores a pin and returns the id the store assigned.
func (c *Client) CreatePin(ctx context.Context, lat, lng float64, memo string) (domain.PinID, error) {
	body, err := json.Marshal(domain.Pin{Latitude: lat, Longitude: lng, Memo: memo})
	if err != nil {
		return 0, err
	}
	var out struct {
		ID domain.PinID `json:"id"`
	}
	if _, err := c.do(ctx, fasthttp.MethodPost, "/v1/pins", body, &out); err != nil {
		return 0, fmt.Errorf("create pin: %w", err)
	}
	return out.ID, nil
}

// GetAllPins returns every pin ordered by id.
func (c *Client) GetAllPins(ctx context.Context) ([]domain.PinEntry, error) {
	var out []domain.PinEntry
	if _, err := c.do(ctx, fasthttp.MethodGet, "/v1/pins", nil, &out); err != nil {
		return nil, fmt.Errorf("list pins: %w", err)
	}
	if out == nil {
		out = []domain.PinEntry{}
	}
	return out, nil
}

// GetPin returns a single pin, or domain.ErrNotFound.
func (c *Client) GetPin(ctx context.Context, id domain.PinID) (*domain.Pin, error) {
	var out domain.Pin
	path := "/v1/pins/" + strconv.FormatUint(uint64(id), 10)
	if _, err := c.do(ctx, fasthttp.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get pin %d: %w", id, err)
	}
	return &out, nil
}

// GetPinsByLocationRange returns pins inside the box, edges inclusive.
func (c *Client) GetPinsByLocationRange(ctx context.Context, latMin, latMax, lngMin, lngMax float64) ([]domain.PinEntry, error) {
	q := url.Values{}
	q.Set("lat_min", strconv.FormatFloat(latMin, 'f', -1, 64))
	q.Set("lat_max", strconv.FormatFloat(latMax, 'f', -1, 64))
	q.Set("lng_min", strconv.FormatFloat(lngMin, 'f', -1, 64))
	q.Set("lng_max", strconv.FormatFloat(lngMax, 'f', -1, 64))

	var out []domain.PinEntry
	if _, err := c.do(ctx, fasthttp.MethodGet, "/v1/pins/range?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("pins in range: %w", err)
	}
	if out == nil {
		out = []domain.PinEntry{}
	}
	return out, nil
}

// apiError mirrors the store's error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.base + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	if err := c.hc.DoDeadline(req, resp, deadline); err != nil {
		slog.DebugContext(ctx, "pin store request failed", "method", method, "path", path, "error", err)
		return 0, err
	}
	code := resp.StatusCode()
	slog.DebugContext(ctx, "pin store request", "method", method, "path", path, "status", code, "latency", time.Since(start).String())

	if code >= 200 && code < 300 {
		if out == nil {
			return code, nil
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return code, fmt.Errorf("decode response: %w", err)
		}
		return code, nil
	}

	var apiErr apiError
	_ = json.Unmarshal(resp.Body(), &apiErr)
	switch code {
	case fasthttp.StatusNotFound:
		return code, domain.ErrNotFound
	case fasthttp.StatusBadRequest:
		return code, fmt.Errorf("%w: %s", domain.ErrInvalidCoordinates, apiErr.Message)
	default:
		return code, &StatusError{Code: code, Message: apiErr.Message}
	}
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
