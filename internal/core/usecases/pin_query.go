package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/core/ports"
	"github.com/samirrijal/pinmap/internal/pkg/metrics"
)

var (
	// ErrEmptyMemo is a validation error: the memo is empty after trimming.
	ErrEmptyMemo = errors.New("memo must not be empty")
	// ErrNotReady means the store connection is not established yet. No request was sent.
	ErrNotReady = errors.New("pin store not ready")
)

// AllPinsKey is the cache key of the pin list.
const AllPinsKey = "pins"

// Status of a cached query.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "loading"
	}
}

// PinsSnapshot is a point-in-time copy of a cached pin list. Pins holds the
// last successful result even when Status is StatusError.
type PinsSnapshot struct {
	Status    Status
	Pins      []domain.PinEntry
	Err       error
	FetchedAt time.Time
}

type queryEntry struct {
	status    Status
	pins      []domain.PinEntry
	err       error
	fetchedAt time.Time
	stale     bool
	// gen increments on every invalidation; fetches started under an older
	// generation cannot mark the entry fresh.
	gen uint64
}

func (e *queryEntry) snapshot() PinsSnapshot {
	return PinsSnapshot{Status: e.status, Pins: e.pins, Err: e.err, FetchedAt: e.fetchedAt}
}

// PinQueries wraps a remote PinStore with an explicit request cache,
// per-key request deduplication and invalidation on successful writes.
type PinQueries struct {
	store ports.PinStore
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]*queryEntry
	group   singleflight.Group
}

// NewPinQueries creates a query layer over store.
func NewPinQueries(store ports.PinStore) *PinQueries {
	return &PinQueries{
		store:   store,
		now:     time.Now,
		entries: make(map[string]*queryEntry),
	}
}

func (q *PinQueries) entry(key string) *queryEntry {
	e, ok := q.entries[key]
	if !ok {
		e = &queryEntry{status: StatusLoading, stale: true}
		q.entries[key] = e
	}
	return e
}

// Snapshot returns the cached pin list without fetching.
func (q *PinQueries) Snapshot() PinsSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e, ok := q.entries[AllPinsKey]; ok {
		return e.snapshot()
	}
	return PinsSnapshot{Status: StatusLoading}
}

// ListAll returns all pins. While the store is not ready it returns a
// Loading snapshot and sends nothing. A fresh cached list is returned as is;
// otherwise one request is made and shared by concurrent callers. On failure
// the previous list is kept and the error is returned alongside it.
func (q *PinQueries) ListAll(ctx context.Context) (PinsSnapshot, error) {
	if !q.store.Ready() {
		return q.Snapshot(), nil
	}

	q.mu.Lock()
	e := q.entry(AllPinsKey)
	if e.status == StatusReady && !e.stale {
		snap := e.snapshot()
		q.mu.Unlock()
		metrics.CacheHits.WithLabelValues("query_pins").Inc()
		return snap, nil
	}
	if e.status != StatusReady {
		e.status = StatusLoading
	}
	gen := e.gen
	q.mu.Unlock()
	metrics.CacheMisses.WithLabelValues("query_pins").Inc()

	v, err, _ := q.group.Do(fmt.Sprintf("%s#%d", AllPinsKey, gen), func() (any, error) {
		return q.store.GetAllPins(ctx)
	})

	q.mu.Lock()
	defer q.mu.Unlock()
	if e.gen != gen {
		// Superseded by an invalidation: the result predates a write, so
		// callers get whatever the entry holds now, never this response.
		return e.snapshot(), nil
	}
	if err != nil {
		e.status = StatusError
		e.err = err
		return e.snapshot(), fmt.Errorf("list pins: %w", err)
	}

	pins, _ := v.([]domain.PinEntry)
	e.status = StatusReady
	e.pins = pins
	e.err = nil
	e.fetchedAt = q.now()
	e.stale = false
	return e.snapshot(), nil
}

// Invalidate marks key stale so the next read refetches. Prior data stays
// visible until then.
func (q *PinQueries) Invalidate(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e := q.entry(key)
	e.stale = true
	e.gen++
}

// Create trims and validates memo, then asks the store to create the pin.
// There is no retry. Success invalidates the pin list.
func (q *PinQueries) Create(ctx context.Context, lat, lng float64, memo string) (domain.PinID, error) {
	memo = strings.TrimSpace(memo)
	if memo == "" {
		return 0, ErrEmptyMemo
	}
	if !q.store.Ready() {
		return 0, ErrNotReady
	}
	id, err := q.store.CreatePin(ctx, lat, lng, memo)
	if err != nil {
		return 0, fmt.Errorf("create pin: %w", err)
	}
	q.Invalidate(AllPinsKey)
	return id, nil
}

// Get is an uncached read of one pin.
func (q *PinQueries) Get(ctx context.Context, id domain.PinID) (*domain.Pin, error) {
	if !q.store.Ready() {
		return nil, ErrNotReady
	}
	return q.store.GetPin(ctx, id)
}

// InRange is an uncached bounding-box read.
func (q *PinQueries) InRange(ctx context.Context, b domain.Bounds) ([]domain.PinEntry, error) {
	if !q.store.Ready() {
		return nil, ErrNotReady
	}
	return q.store.GetPinsByLocationRange(ctx, b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
}
