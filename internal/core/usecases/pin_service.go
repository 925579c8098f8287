package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/pinmap/internal/core/domain"
	"github.com/samirrijal/pinmap/internal/core/ports"
	"github.com/samirrijal/pinmap/internal/pkg/geospatial"
	"github.com/samirrijal/pinmap/internal/pkg/metrics"
)

// The list is cached under pins:all:<version>. Every create bumps the
// version, so a list read from the database before a create can only ever
// be written under a version no reader asks for again.
const (
	pinListVersionKey = "pins:ver"
	allPinsKeyPrefix  = "pins:all:"
)

func pinListCacheKey(version int64) string {
	return allPinsKeyPrefix + strconv.FormatInt(version, 10)
}

var tracer = otel.Tracer("github.com/samirrijal/pinmap/internal/core/usecases")

// PinService is the authoritative pin store.
type PinService struct {
	pins     ports.PinRepository
	cache    ports.CacheService
	events   ports.EventPublisher
	cacheTTL int
}

// NewPinService creates a new PinService. cache and events may be nil.
func NewPinService(pins ports.PinRepository, cache ports.CacheService, events ports.EventPublisher, cacheTTL int) *PinService {
	if cacheTTL <= 0 {
		cacheTTL = 300
	}
	return &PinService{pins: pins, cache: cache, events: events, cacheTTL: cacheTTL}
}

func pinCacheKey(id domain.PinID) string {
	return "pins:id:" + strconv.FormatUint(uint64(id), 10)
}

// Create validates and stores a pin, then invalidates the list cache and
// announces the new pin. Longitudes outside [-180, 180] are wrapped.
func (s *PinService) Create(ctx context.Context, lat, lng float64, memo string) (domain.PinID, error) {
	ctx, span := tracer.Start(ctx, "PinService.Create")
	defer span.End()

	if !(domain.GeoPoint{Lat: lat, Lon: lng}).Valid() {
		span.SetStatus(codes.Error, "invalid coordinates")
		return 0, fmt.Errorf("%w: lat=%v lng=%v", domain.ErrInvalidCoordinates, lat, lng)
	}
	pin := &domain.Pin{Latitude: lat, Longitude: geospatial.WrapLongitude(lng), Memo: memo}

	id, err := s.pins.Create(ctx, pin)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return 0, fmt.Errorf("create pin: %w", err)
	}
	span.SetAttributes(attribute.Int64("pin.id", int64(id)))
	metrics.PinsCreated.Inc()

	if s.cache != nil {
		if ver, err := s.cache.Incr(ctx, pinListVersionKey); err != nil {
			slog.WarnContext(ctx, "pin list cache invalidation failed", "error", err)
		} else {
			_ = s.cache.Delete(ctx, pinListCacheKey(ver-1))
		}
	}

	if s.events != nil {
		ev := &domain.PinCreatedEvent{ID: id, Pin: *pin, CreatedAt: time.Now().UTC()}
		if err := s.events.PublishPinCreated(ctx, ev); err != nil {
			metrics.EventPublishErrors.Inc()
			slog.WarnContext(ctx, "publish pin created", "pin_id", id, "error", err)
		}
	}

	return id, nil
}

// List returns every pin ordered by id.
func (s *PinService) List(ctx context.Context) ([]domain.PinEntry, error) {
	ctx, span := tracer.Start(ctx, "PinService.List")
	defer span.End()

	// the version is read before the database so the entry we write is
	// never newer than the data in it
	var cacheKey string
	if s.cache != nil {
		if ver, ok := s.listVersion(ctx); ok {
			cacheKey = pinListCacheKey(ver)
		}
	}
	if cacheKey != "" {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var pins []domain.PinEntry
			if err := json.Unmarshal(data, &pins); err == nil {
				metrics.CacheHits.WithLabelValues("pins_all").Inc()
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return pins, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("pins_all").Inc()
	}

	pins, err := s.pins.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if pins == nil {
		pins = []domain.PinEntry{}
	}

	if cacheKey != "" {
		if data, err := json.Marshal(pins); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}
	span.SetAttributes(attribute.Int("pins.count", len(pins)))

	return pins, nil
}

// listVersion reads the pin list version. An absent counter is version 0;
// ok is false when the counter cannot be read and the cache must be bypassed.
func (s *PinService) listVersion(ctx context.Context) (v int64, ok bool) {
	data, err := s.cache.Get(ctx, pinListVersionKey)
	if errors.Is(err, ports.ErrCacheMiss) {
		return 0, true
	}
	if err != nil {
		slog.WarnContext(ctx, "pin list version unavailable", "error", err)
		return 0, false
	}
	v, err = strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		slog.WarnContext(ctx, "pin list version malformed", "value", string(data))
		return 0, false
	}
	return v, true
}

// GetByID returns a single pin or domain.ErrNotFound.
func (s *PinService) GetByID(ctx context.Context, id domain.PinID) (*domain.Pin, error) {
	ctx, span := tracer.Start(ctx, "PinService.GetByID")
	defer span.End()
	span.SetAttributes(attribute.Int64("pin.id", int64(id)))

	cacheKey := pinCacheKey(id)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var pin domain.Pin
			if err := json.Unmarshal(data, &pin); err == nil {
				metrics.CacheHits.WithLabelValues("pin_by_id").Inc()
				return &pin, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("pin_by_id").Inc()
	}

	pin, err := s.pins.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// pins are immutable, so the entry never needs invalidating
	if s.cache != nil {
		if data, err := json.Marshal(pin); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, s.cacheTTL)
		}
	}

	return pin, nil
}

// InRange returns pins inside the box, edges inclusive. When lngMin > lngMax
// the box crosses the antimeridian. A longitude span of 360° or more covers
// every longitude.
func (s *PinService) InRange(ctx context.Context, latMin, latMax, lngMin, lngMax float64) ([]domain.PinEntry, error) {
	ctx, span := tracer.Start(ctx, "PinService.InRange")
	defer span.End()

	b, err := NormalizeBounds(latMin, latMax, lngMin, lngMax)
	if err != nil {
		return nil, err
	}

	pins, err := s.pins.ListInBounds(ctx, b)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if pins == nil {
		pins = []domain.PinEntry{}
	}
	metrics.PinRangeQueries.Observe(float64(len(pins)))
	span.SetAttributes(attribute.Int("pins.count", len(pins)))
	return pins, nil
}

// NormalizeBounds validates a range query and wraps its longitudes into [-180, 180].
func NormalizeBounds(latMin, latMax, lngMin, lngMax float64) (domain.Bounds, error) {
	lo := domain.GeoPoint{Lat: latMin, Lon: lngMin}
	hi := domain.GeoPoint{Lat: latMax, Lon: lngMax}
	if !lo.Valid() || !hi.Valid() {
		return domain.Bounds{}, fmt.Errorf("%w: latitude range [%v, %v]", domain.ErrInvalidCoordinates, latMin, latMax)
	}
	if latMin > latMax {
		return domain.Bounds{}, fmt.Errorf("%w: lat_min %v > lat_max %v", domain.ErrInvalidCoordinates, latMin, latMax)
	}
	if lngMax-lngMin >= 360 {
		return domain.Bounds{MinLat: latMin, MaxLat: latMax, MinLon: -180, MaxLon: 180}, nil
	}
	return domain.Bounds{
		MinLat: latMin,
		MaxLat: latMax,
		MinLon: geospatial.WrapLongitude(lngMin),
		MaxLon: geospatial.WrapLongitude(lngMax),
	}, nil
}
