package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/event-bed-booking/internal/model"
)

// BookingRepo provides data access to the bed_bookings table, the ledger
// of bed occupancy.  Mutating methods take an existing transaction so the
// caller can combine a primary write with its cascade; the caller commits
// or rolls back.  All timestamps are written in UTC.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the provided database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so services can open transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `event_id, bed_id, name, booked_at, status, blocked_by,
	arrival_date, arrival_time, departure_date, departure_time, transport,
	needs_pickup, offers_seats, departure_city, train_station, train_time, train_number`

const bookingPlaceholders = `(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// rowArgs flattens an occupancy into bed_bookings column values in the
// order of bookingColumns.  Only Booked carries logistics; every other
// state writes the zero bundle.
func rowArgs(eventID uint64, bedID string, occ model.Occupancy, at time.Time) []interface{} {
	var lg model.Logistics
	if b, ok := occ.(model.Booked); ok {
		lg = b.Logistics
	}
	return []interface{}{
		eventID, bedID, occ.DisplayName(), at.UTC(), string(occ.Status()), occ.AnchorBed(),
		lg.ArrivalDate, lg.ArrivalTime, lg.DepartureDate, lg.DepartureTime, lg.Transport,
		lg.NeedsPickup, lg.OffersSeats, lg.DepartureCity, lg.TrainStation, lg.TrainTime, lg.TrainNumber,
	}
}

// UpsertBookedTx writes a direct booking for bedID.  An existing row of
// any status is overwritten in place: the blocking relation is cleared and
// every logistics column is replaced.  The unique key on
// (event_id, bed_id) makes concurrent upserts resolve as last writer wins.
func (r *BookingRepo) UpsertBookedTx(ctx context.Context, tx *sql.Tx, eventID uint64, bedID string, b model.Booked, at time.Time) error {
	b.ClaimedFrom = ""
	q := `INSERT INTO bed_bookings (` + bookingColumns + `) VALUES ` + bookingPlaceholders + `
	      ON DUPLICATE KEY UPDATE
	        name = VALUES(name), booked_at = VALUES(booked_at), status = VALUES(status), blocked_by = NULL,
	        arrival_date = VALUES(arrival_date), arrival_time = VALUES(arrival_time),
	        departure_date = VALUES(departure_date), departure_time = VALUES(departure_time),
	        transport = VALUES(transport), needs_pickup = VALUES(needs_pickup), offers_seats = VALUES(offers_seats),
	        departure_city = VALUES(departure_city), train_station = VALUES(train_station),
	        train_time = VALUES(train_time), train_number = VALUES(train_number)`
	_, err := tx.ExecContext(ctx, q, rowArgs(eventID, bedID, b, at)...)
	return err
}

// InsertIfFreeTx writes occ onto every bed in bedIDs that has no row yet,
// in a single statement.  Beds that already hold a row are left exactly as
// they are: the duplicate-key branch is a no-op assignment.  It returns
// the number of beds actually written.  An empty slice is a no-op.
func (r *BookingRepo) InsertIfFreeTx(ctx context.Context, tx *sql.Tx, eventID uint64, bedIDs []string, occ model.Occupancy, at time.Time) (int64, error) {
	if len(bedIDs) == 0 {
		return 0, nil
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO bed_bookings (` + bookingColumns + `) VALUES `)
	args := make([]interface{}, 0, len(bedIDs)*17)
	for i, id := range bedIDs {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(bookingPlaceholders)
		args = append(args, rowArgs(eventID, id, occ, at)...)
	}
	sb.WriteString(` ON DUPLICATE KEY UPDATE bed_id = bed_id`)
	res, err := tx.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ClaimTx turns a women_only or men_only placeholder into a booking.  The
// blocking relation is kept so that releasing the anchor still removes
// the claimed bed.  It reports false when the bed was not in a claimable
// state, which is not an error.
func (r *BookingRepo) ClaimTx(ctx context.Context, tx *sql.Tx, eventID uint64, bedID string, b model.Booked, at time.Time) (bool, error) {
	lg := b.Logistics
	const q = `UPDATE bed_bookings
	           SET name = ?, booked_at = ?, status = ?,
	               arrival_date = ?, arrival_time = ?, departure_date = ?, departure_time = ?,
	               transport = ?, needs_pickup = ?, offers_seats = ?, departure_city = ?,
	               train_station = ?, train_time = ?, train_number = ?
	           WHERE event_id = ? AND bed_id = ? AND status IN (?, ?)`
	res, err := tx.ExecContext(ctx, q,
		b.Name, at.UTC(), string(model.StatusBooked),
		lg.ArrivalDate, lg.ArrivalTime, lg.DepartureDate, lg.DepartureTime,
		lg.Transport, lg.NeedsPickup, lg.OffersSeats, lg.DepartureCity,
		lg.TrainStation, lg.TrainTime, lg.TrainNumber,
		eventID, bedID, string(model.StatusWomenOnly), string(model.StatusMenOnly),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteWithDependentsTx removes bedID together with every bed whose
// blocking relation points at it.  It returns the bed ids that were
// removed (empty when nothing existed).  The rows are locked before the
// delete so the returned ids match what was deleted.
func (r *BookingRepo) DeleteWithDependentsTx(ctx context.Context, tx *sql.Tx, eventID uint64, bedID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT bed_id FROM bed_bookings WHERE event_id = ? AND (bed_id = ? OR blocked_by = ?) FOR UPDATE`,
		eventID, bedID, bedID,
	)
	if err != nil {
		return nil, err
	}
	removed := []string{}
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		removed = append(removed, id)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	if len(removed) == 0 {
		return removed, nil
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM bed_bookings WHERE event_id = ? AND (bed_id = ? OR blocked_by = ?)`,
		eventID, bedID, bedID,
	); err != nil {
		return nil, err
	}
	return removed, nil
}

// DeleteRestrictedTx removes bedID only when it is a blocked, women_only
// or men_only placeholder.  Booked and free beds are untouched.  Beds that
// this one may point at are not affected.
func (r *BookingRepo) DeleteRestrictedTx(ctx context.Context, tx *sql.Tx, eventID uint64, bedID string) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM bed_bookings WHERE event_id = ? AND bed_id = ? AND status IN (?, ?, ?)`,
		eventID, bedID,
		string(model.StatusBlocked), string(model.StatusWomenOnly), string(model.StatusMenOnly),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByEvent returns every bed row of the event keyed by bed id.  Beds
// without a row are free and do not appear.
func (r *BookingRepo) ListByEvent(ctx context.Context, eventID uint64) (map[string]model.BedSlot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bed_bookings WHERE event_id = ? ORDER BY bed_id`,
		eventID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]model.BedSlot)
	for rows.Next() {
		var s model.BedSlot
		lg := &s.Logistics
		if err := rows.Scan(
			&s.EventID, &s.BedID, &s.Name, &s.BookedAt, &s.Status, &s.BlockedBy,
			&lg.ArrivalDate, &lg.ArrivalTime, &lg.DepartureDate, &lg.DepartureTime, &lg.Transport,
			&lg.NeedsPickup, &lg.OffersSeats, &lg.DepartureCity, &lg.TrainStation, &lg.TrainTime, &lg.TrainNumber,
		); err != nil {
			return nil, err
		}
		out[s.BedID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
