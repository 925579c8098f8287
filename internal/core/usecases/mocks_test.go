package usecases_test

import (
	"context"
	"strconv"
	"sync"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/core/ports"
)

// --- Mock PinRepository ---

type mockPinRepo struct {
	createFn       func(ctx context.Context, pin *domain.Pin) (domain.PinID, error)
	getByIDFn      func(ctx context.Context, id domain.PinID) (*domain.Pin, error)
	listFn         func(ctx context.Context) ([]domain.PinEntry, error)
	listInBoundsFn func(ctx context.Context, b domain.Bounds) ([]domain.PinEntry, error)
}

func (m *mockPinRepo) Create(ctx context.Context, pin *domain.Pin) (domain.PinID, error) {
	if m.createFn != nil {
		return m.createFn(ctx, pin)
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

// --- In-memory CacheService ---

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	return nil
}

func (c *memCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if v, ok := c.data[key]; ok {
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	}
	n++
	c.data[key] = []byte(strconv.FormatInt(n, 10))
	return n, nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events []*domain.PinCreatedEvent
	err    error
}

func (m *mockPublisher) PublishPinCreated(ctx context.Context, ev *domain.PinCreatedEvent) error {
	m.events = append(m.events, ev)
	return m.err
}

// --- Fake PinStore (client side) ---

type fakeStore struct {
	mu     sync.Mutex
	ready  bool
	nextID domain.PinID
	pins   []domain.PinEntry

	listCalls   int
	createCalls int
	listErr     error
	createErr   error
	// listGate, when set, blocks GetAllPins until closed.
	listGate chan struct{}
	// listStarted receives once per GetAllPins call.
	listStarted chan struct{}
	// copyBeforeGate makes GetAllPins read its result before blocking on listGate.
	copyBeforeGate bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{ready: true, nextID: 1}
}

func (s *fakeStore) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *fakeStore) CreatePin(ctx context.Context, lat, lng float64, memo string) (domain.PinID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.createErr != nil {
		return 0, s.createErr
	}
	id := s.nextID
	s.nextID++
	s.pins = append(s.pins, domain.PinEntry{ID: id, Pin: domain.Pin{Latitude: lat, Longitude: lng, Memo: memo}})
	return id, nil
}

func (s *fakeStore) GetAllPins(ctx context.Context) ([]domain.PinEntry, error) {
	s.mu.Lock()
	s.listCalls++
	gate, started := s.listGate, s.listStarted
	var early []domain.PinEntry
	if s.copyBeforeGate {
		early = append([]domain.PinEntry{}, s.pins...)
	}
	s.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	if early != nil {
		return early, nil
	}
	out := make([]domain.PinEntry, len(s.pins))
	copy(out, s.pins)
	return out, nil
}

func (s *fakeStore) GetPin(ctx context.Context, id domain.PinID) (*domain.Pin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.pins {
		if e.ID == id {
			p := e.Pin
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) GetPinsByLocationRange(ctx context.Context, latMin, latMax, lngMin, lngMax float64) ([]domain.PinEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := domain.Bounds{MinLat: latMin, MaxLat: latMax, MinLon: lngMin, MaxLon: lngMax}
	var out []domain.PinEntry
	for _, e := range s.pins {
		if b.Contains(e.Pin.Point()) {
			out = append(out, e)
		}
	}
	return out, nil
}
