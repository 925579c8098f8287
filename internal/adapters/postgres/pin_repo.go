package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/pinmap/internal/core/domain"
)

// PinRepo implements ports.PinRepository with pgx.
type PinRepo struct {
	db *DB
}

// NewPinRepo creates a new PinRepo.
func NewPinRepo(db *DB) *PinRepo {
	return &PinRepo{db: db}
}

// Create inserts a pin and returns the id assigned by the sequence.
func (r *PinRepo) Create(ctx context.Context, p *domain.Pin) (domain.PinID, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO pins (latitude, longitude, memo)
		VALUES ($1, $2, $3)
		RETURNING id
	`, p.Latitude, p.Longitude, p.Memo).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert pin: %w", err)
	}
	return domain.PinID(id), nil
}

// GetByID returns a pin, or domain.ErrNotFound.
func (r *PinRepo) GetByID(ctx context.Context, id domain.PinID) (*domain.Pin, error) {
	var p domain.Pin
	err := r.db.Pool.QueryRow(ctx, `
		SELECT latitude, longitude, memo FROM pins WHERE id = $1
	`, int64(id)).Scan(&p.Latitude, &p.Longitude, &p.Memo)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all pins ordered by id.
func (r *PinRepo) List(ctx context.Context) ([]domain.PinEntry, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, latitude, longitude, memo FROM pins ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

// ListInBounds returns pins inside b, edges inclusive, ordered by id.
func (r *PinRepo) ListInBounds(ctx context.Context, b domain.Bounds) ([]domain.PinEntry, error) {
	lngClause := "longitude BETWEEN $3 AND $4"
	if b.CrossesAntimeridian() {
		lngClause = "(longitude >= $3 OR longitude <= $4)"
	}
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, latitude, longitude, memo FROM pins
		WHERE latitude BETWEEN $1 AND $2 AND `+lngClause+`
		ORDER BY id
	`, b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]domain.PinEntry, error) {
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PinEntry, error) {
		var (
			e  domain.PinEntry
			id int64
		)
		err := row.Scan(&id, &e.Pin.Latitude, &e.Pin.Longitude, &e.Pin.Memo)
		e.ID = domain.PinID(id)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan pins: %w", err)
	}
	return entries, nil
}
