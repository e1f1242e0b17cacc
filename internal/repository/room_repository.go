package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-bed-booking/internal/model"
)

// RoomRepo provides access to the room registry.  Rooms are read-only to
// the booking ledger; only admin endpoints write them.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo given a DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, event_id, code, name, bed_count, floor, notes, sort_order`

func scanRoom(row interface{ Scan(...interface{}) error }, rm *model.Room) error {
	return row.Scan(&rm.ID, &rm.EventID, &rm.Code, &rm.Name, &rm.BedCount, &rm.Floor, &rm.Notes, &rm.SortOrder)
}

// Create inserts a room for an event.  A duplicate code within the same
// event yields ErrConflict.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (event_id, code, name, bed_count, floor, notes, sort_order) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rm.EventID, rm.Code, rm.Name, rm.BedCount, rm.Floor, rm.Notes, rm.SortOrder,
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
	rm.ID = uint64(id)
	return nil
}

// GetByID returns a room or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	var rm model.Room
	if err := scanRoom(r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id), &rm); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// ListByEvent returns all rooms of an event in display order.
func (r *RoomRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE event_id = ? ORDER BY sort_order, code`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := []model.Room{}
	for rows.Next() {
		var rm model.Room
		if err := scanRoom(rows, &rm); err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Update overwrites a room's attributes.  The event of a room never
// changes.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET code = ?, name = ?, bed_count = ?, floor = ?, notes = ?, sort_order = ? WHERE id = ?`,
		rm.Code, rm.Name, rm.BedCount, rm.Floor, rm.Notes, rm.SortOrder, rm.ID,
	)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// No change or no row; distinguish by reading it back.
		if _, err := r.GetByID(ctx, rm.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a room.  Existing bookings on its beds are kept; the
// ledger does not derive membership from rooms.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
