package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-bed-booking/internal/model"
)

// EventRepo provides CRUD operations for events and the slug lookup used
// by the tenant resolver.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

const eventColumns = `id, slug, name, DATE_FORMAT(starts_on, '%Y-%m-%d'), DATE_FORMAT(ends_on, '%Y-%m-%d'), is_active, created_at, updated_at`

func scanEvent(row interface{ Scan(...interface{}) error }, e *model.Event) error {
	return row.Scan(&e.ID, &e.Slug, &e.Name, &e.StartsOn, &e.EndsOn, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
}

// Create inserts a new event and reads the row back so generated fields
// are populated.  A duplicate slug yields ErrConflict.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO events (slug, name, starts_on, ends_on, is_active) VALUES (?, ?, ?, ?, ?)`,
		e.Slug, e.Name, e.StartsOn, e.EndsOn, e.IsActive,
	)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*e = *got
	return nil
}

// GetByID returns the event with the given id or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	var e model.Event
	err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id), &e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetActiveBySlug resolves a slug to an active event.  Inactive events are
// reported as ErrEventNotFound.
func (r *EventRepo) GetActiveBySlug(ctx context.Context, slug string) (*model.Event, error) {
	var e model.Event
	err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE slug = ? AND is_active = 1`, slug), &e)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// List returns all events, most recent start date first.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY starts_on DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := []model.Event{}
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Update overwrites the mutable fields of an event.  The previous slug is
// returned so callers can evict caches keyed by it.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) (string, error) {
	prev, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return "", err
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE events SET slug = ?, name = ?, starts_on = ?, ends_on = ?, is_active = ? WHERE id = ?`,
		e.Slug, e.Name, e.StartsOn, e.EndsOn, e.IsActive, e.ID,
	)
	if err != nil {
		if isDuplicate(err) {
			return "", ErrConflict
		}
		return "", err
	}
	got, err := r.GetByID(ctx, e.ID)
	if err != nil {
		return "", err
	}
	*e = *got
	return prev.Slug, nil
}

// Delete removes an event.  Rooms, bookings and waitlist entries go with
// it through foreign key cascades.  It returns the deleted slug.
func (r *EventRepo) Delete(ctx context.Context, id uint64) (string, error) {
	prev, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
		return "", err
	}
	return prev.Slug, nil
}
