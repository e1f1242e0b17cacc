package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-bed-booking/internal/model"
)

// WaitlistRepo stores overflow demand per event.
type WaitlistRepo struct{ db *sql.DB }

func NewWaitlistRepo(db *sql.DB) *WaitlistRepo { return &WaitlistRepo{db: db} }

// Create appends an entry and reads it back to pick up id and created_at.
func (r *WaitlistRepo) Create(ctx context.Context, e *model.WaitlistEntry) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO waitlist_entries (event_id, name, comment) VALUES (?,?,?)",
		e.EventID, e.Name, e.Comment)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT created_at FROM waitlist_entries WHERE id=?", e.ID).Scan(&e.CreatedAt)
}

// ListByEvent returns entries oldest first.
func (r *WaitlistRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.WaitlistEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, event_id, name, comment, created_at FROM waitlist_entries WHERE event_id=? ORDER BY created_at ASC, id ASC",
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []model.WaitlistEntry{}
	for rows.Next() {
		var e model.WaitlistEntry
		if err := rows.Scan(&e.ID, &e.EventID, &e.Name, &e.Comment, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes an entry of the event.  Missing ids are not an error.
func (r *WaitlistRepo) Delete(ctx context.Context, eventID, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM waitlist_entries WHERE id=? AND event_id=?", id, eventID)
	return err
}
