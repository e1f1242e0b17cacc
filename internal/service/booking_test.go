package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/model"
	"github.com/iliyamo/event-bed-booking/internal/queue"
	"github.com/iliyamo/event-bed-booking/internal/repository"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.BookingChangedEvent
}

func (f *fakePublisher) PublishBookingChanged(_ context.Context, ev queue.BookingChangedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) snapshot() []queue.BookingChangedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]queue.BookingChangedEvent(nil), f.events...)
}

func setupService(t *testing.T) (sqlmock.Sqlmock, *BookingService, *fakePublisher) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	pub := &fakePublisher{}
	svc := NewBookingService(repository.NewBookingRepo(db), pub, zap.NewNop())
	fixed := time.Date(2026, 7, 1, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return mock, svc, pub
}

const (
	upsertSQL  = `INSERT INTO bed_bookings .* blocked_by = NULL`
	cascadeSQL = `INSERT INTO bed_bookings .* ON DUPLICATE KEY UPDATE bed_id = bed_id`
	claimSQL   = `UPDATE bed_bookings SET name = \?`
	unblockSQL = `DELETE FROM bed_bookings WHERE event_id = \? AND bed_id = \? AND status IN`
	selectDeps = `SELECT bed_id FROM bed_bookings WHERE event_id = \? AND \(bed_id = \? OR blocked_by = \?\) FOR UPDATE`
	deleteDeps = `DELETE FROM bed_bookings WHERE event_id = \? AND \(bed_id = \? OR blocked_by = \?\)`
)

func TestReserve_Validation(t *testing.T) {
	mock, svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, 0, ReserveRequest{BedID: "R1-1", Name: "Alice"})
	assert.ErrorIs(t, err, ErrNoEvent)

	_, err = svc.Reserve(ctx, 7, ReserveRequest{BedID: "R1-1", Name: "   "})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "name is required", err.Error())

	_, err = svc.Reserve(ctx, 7, ReserveRequest{BedID: "", Name: "Alice"})
	assert.True(t, IsValidation(err))

	_, err = svc.Reserve(ctx, 7, ReserveRequest{BedID: "R1-1", Name: "Alice", Restriction: "vip"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "restriction", ve.Field)

	// None of the rejected calls may touch the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_NoRestrictionSkipsCascade(t *testing.T) {
	mock, svc, pub := setupService(t)

	mock.ExpectBegin()
	mock.ExpectExec(upsertSQL).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	res, err := svc.Reserve(context.Background(), 7, ReserveRequest{
		BedID: " R1-1 ", Name: " Alice ", RoomBedIDs: []string{"R1-1", "R1-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "R1-1", res.BedID)
	assert.Equal(t, "Alice", res.Name)
	assert.Equal(t, model.RestrictionNone, res.Restriction)
	assert.Zero(t, res.Restricted)
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Eventually(t, func() bool { return len(pub.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	ev := pub.snapshot()[0]
	assert.Equal(t, queue.ActionReserved, ev.Action)
	assert.Equal(t, "R1-1", ev.BedID)
}

func TestReserve_WomenCascadeInSameTransaction(t *testing.T) {
	mock, svc, _ := setupService(t)

	mock.ExpectBegin()
	mock.ExpectExec(upsertSQL).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(cascadeSQL).
		WithArgs(
			uint64(7), "R1-2", model.WomenRoomLabel, sqlmock.AnyArg(), "women_only", "R1-1",
			nil, nil, nil, nil, nil, false, 0, nil, nil, nil, nil,
			uint64(7), "R1-3", model.WomenRoomLabel, sqlmock.AnyArg(), "women_only", "R1-1",
			nil, nil, nil, nil, nil, false, 0, nil, nil, nil, nil,
		).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	res, err := svc.Reserve(context.Background(), 7, ReserveRequest{
		BedID: "R1-1", Name: "Alice", Restriction: "women",
		RoomBedIDs: []string{"R1-1", "R1-2", "R1-3", "R1-2", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, model.RestrictionWomen, res.Restriction)
	assert.Equal(t, int64(2), res.Restricted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_BlockedCascadeCarriesLockedName(t *testing.T) {
	mock, svc, _ := setupService(t)

	mock.ExpectBegin()
	mock.ExpectExec(upsertSQL).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(cascadeSQL).
		WithArgs(
			uint64(7), "R1-2", model.LockMarker+"Alice", sqlmock.AnyArg(), "blocked", "R1-1",
			nil, nil, nil, nil, nil, false, 0, nil, nil, nil, nil,
		).
		WillReturnResult(sqlmock.NewResult(0, 0)) // sibling already taken
	mock.ExpectCommit()

	res, err := svc.Reserve(context.Background(), 7, ReserveRequest{
		BedID: "R1-1", Name: "Alice", Restriction: "blocked", RoomBedIDs: []string{"R1-1", "R1-2"},
	})
	require.NoError(t, err)
	assert.Zero(t, res.Restricted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserve_CascadeFailureRollsBack(t *testing.T) {
	mock, svc, pub := setupService(t)

	mock.ExpectBegin()
	mock.ExpectExec(upsertSQL).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(cascadeSQL).WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	_, err := svc.Reserve(context.Background(), 7, ReserveRequest{
		BedID: "R1-1", Name: "Alice", Restriction: "men", RoomBedIDs: []string{"R1-1", "R1-2"},
	})
	require.Error(t, err)
	assert.False(t, IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, pub.snapshot())
}

func TestRelease_CascadesAndIsIdempotent(t *testing.T) {
	mock, svc, _ := setupService(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(selectDeps).WithArgs(uint64(7), "R1-1", "R1-1").
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow("R1-1").AddRow("R1-2").AddRow("R1-3"))
	mock.ExpectExec(deleteDeps).WithArgs(uint64(7), "R1-1", "R1-1").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	removed, err := svc.Release(ctx, 7, "R1-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"R1-1", "R1-2", "R1-3"}, removed)

	// Second release finds nothing and still succeeds.
	mock.ExpectBegin()
	mock.ExpectQuery(selectDeps).WithArgs(uint64(7), "R1-1", "R1-1").
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}))
	mock.ExpectCommit()

	removed, err = svc.Release(ctx, 7, "R1-1")
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelease_StorageErrorRollsBack(t *testing.T) {
	mock, svc, _ := setupService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectDeps).WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow("R1-1"))
	mock.ExpectExec(deleteDeps).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := svc.Release(context.Background(), 7, "R1-1")
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnblock(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"restricted bed removed", 1, true},
		{"booked or free bed untouched", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, svc, _ := setupService(t)
			mock.ExpectBegin()
			mock.ExpectExec(unblockSQL).
				WithArgs(uint64(7), "R1-2", "blocked", "women_only", "men_only").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectCommit()

			got, err := svc.Unblock(context.Background(), 7, "R1-2")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestClaim(t *testing.T) {
	mock, svc, pub := setupService(t)
	ctx := context.Background()

	_, err := svc.Claim(ctx, 7, ClaimRequest{BedID: "R1-2", Name: ""})
	assert.True(t, IsValidation(err))

	mock.ExpectBegin()
	mock.ExpectExec(claimSQL).
		WithArgs(
			"Dana", sqlmock.AnyArg(), "booked",
			nil, nil, nil, nil, nil, false, 0, nil, nil, nil, nil,
			uint64(7), "R1-2", "women_only", "men_only",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	res, err := svc.Claim(ctx, 7, ClaimRequest{BedID: " R1-2 ", Name: "  Dana "})
	require.NoError(t, err)
	assert.Equal(t, &ClaimResult{BedID: "R1-2", Name: "Dana", Claimed: true}, res)

	mock.ExpectBegin()
	mock.ExpectExec(claimSQL).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	res, err = svc.Claim(ctx, 7, ClaimRequest{BedID: "R1-1", Name: "Eve"})
	require.NoError(t, err)
	assert.False(t, res.Claimed)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Eventually(t, func() bool { return len(pub.snapshot()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, queue.ActionClaimed, pub.snapshot()[0].Action)
}

// blockingPublisher holds every publish until release is closed.
type blockingPublisher struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingPublisher) PublishBookingChanged(ctx context.Context, _ queue.BookingChangedEvent) error {
	b.started <- struct{}{}
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestNotify_DropsWhenSaturated(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pub := &blockingPublisher{started: make(chan struct{}, maxInflightNotifications+4), release: make(chan struct{})}
	svc := NewBookingService(repository.NewBookingRepo(db), pub, zap.NewNop())

	for i := 0; i < maxInflightNotifications+4; i++ {
		svc.notify(queue.BookingChangedEvent{EventID: 7, Action: queue.ActionReserved, BedID: "R1-1"})
	}
	for i := 0; i < maxInflightNotifications; i++ {
		select {
		case <-pub.started:
		case <-time.After(time.Second):
			t.Fatalf("only %d publishes started", i)
		}
	}
	assert.Equal(t, maxInflightNotifications, len(svc.inflight))
	select {
	case <-pub.started:
		t.Fatal("publish started beyond the in-flight cap")
	case <-time.After(50 * time.Millisecond):
	}

	close(pub.release)
	assert.Eventually(t, func() bool { return len(svc.inflight) == 0 }, time.Second, 10*time.Millisecond)

	// Capacity is available again once earlier publishes finish.
	svc.notify(queue.BookingChangedEvent{EventID: 7, Action: queue.ActionClaimed, BedID: "R1-2"})
	select {
	case <-pub.started:
	case <-time.After(time.Second):
		t.Fatal("publish did not start after the backlog drained")
	}
}

func TestList_NoEvent(t *testing.T) {
	_, svc, _ := setupService(t)
	_, err := svc.List(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoEvent)
}

func TestSiblingBeds(t *testing.T) {
	got := siblingBeds("A-1", []string{"A-1", " A-2 ", "", "A-3", "A-2", "A-1"})
	assert.Equal(t, []string{"A-2", "A-3"}, got)
	assert.Empty(t, siblingBeds("A-1", nil))
}
