package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/middleware"
	"github.com/iliyamo/event-bed-booking/internal/repository"
	"github.com/iliyamo/event-bed-booking/internal/service"
)

// withEvent stands in for middleware.ResolveEvent.  id 0 simulates a
// route that was never scoped.
func withEvent(id uint64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id > 0 {
				c.Set(middleware.EventIDKey, id)
			}
			return next(c)
		}
	}
}

func setupBookingAPI(t *testing.T, event uint64) (*echo.Echo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewBookingHandler(service.NewBookingService(repository.NewBookingRepo(db), nil, zap.NewNop()), zap.NewNop())
	e := echo.New()
	g := e.Group("/v1/events/:event", withEvent(event))
	g.GET("/bookings", h.List)
	g.POST("/bookings", h.Reserve)
	g.POST("/bookings/:bed/claim", h.Claim)
	g.DELETE("/bookings/:bed", h.Release)
	g.DELETE("/bookings/:bed/block", h.Unblock)
	return e, mock
}

func call(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestReserveHandler_WithRestriction(t *testing.T) {
	e, mock := setupBookingAPI(t, 7)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO bed_bookings .* blocked_by = NULL`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO bed_bookings .* bed_id = bed_id`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := call(e, http.MethodPost, "/v1/events/camp/bookings",
		`{"bed_id":"R1-1","name":"Alice","restriction":"women","room_bed_ids":["R1-1","R1-2"],"transport":"train","needs_pickup":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"bed_id":"R1-1","name":"Alice","restriction":"women","restricted_beds":1}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveHandler_Errors(t *testing.T) {
	e, _ := setupBookingAPI(t, 7)

	rec := call(e, http.MethodPost, "/v1/events/camp/bookings", `{"bed_id":"R1-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"name is required"}`, rec.Body.String())

	rec = call(e, http.MethodPost, "/v1/events/camp/bookings", `{"bed_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	unscoped, _ := setupBookingAPI(t, 0)
	rec = call(unscoped, http.MethodPost, "/v1/events/camp/bookings", `{"bed_id":"R1-1","name":"Alice"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReserveHandler_StorageFailure(t *testing.T) {
	e, mock := setupBookingAPI(t, 7)
	mock.ExpectBegin().WillReturnError(assert.AnError)

	rec := call(e, http.MethodPost, "/v1/events/camp/bookings", `{"bed_id":"R1-1","name":"Alice"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to reserve bed"}`, rec.Body.String())
}

func TestListHandler(t *testing.T) {
	e, mock := setupBookingAPI(t, 7)
	mock.ExpectQuery(`SELECT .* FROM bed_bookings WHERE event_id = \?`).
		WillReturnRows(sqlmock.NewRows([]string{
			"event_id", "bed_id", "name", "booked_at", "status", "blocked_by",
			"arrival_date", "arrival_time", "departure_date", "departure_time", "transport",
			"needs_pickup", "offers_seats", "departure_city", "train_station", "train_time", "train_number",
		}))

	rec := call(e, http.MethodGet, "/v1/events/camp/bookings", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestClaimHandler_NotClaimable(t *testing.T) {
	e, mock := setupBookingAPI(t, 7)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bed_bookings SET name = \?`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	rec := call(e, http.MethodPost, "/v1/events/camp/bookings/R1-1/claim", `{"name":"Eve"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"bed_id":"R1-1","name":"Eve","claimed":false}`, rec.Body.String())
}

func TestClaimHandler_EchoesStoredValues(t *testing.T) {
	e, mock := setupBookingAPI(t, 7)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bed_bookings SET name = \?`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := call(e, http.MethodPost, "/v1/events/camp/bookings/%20R1-2%20/claim", `{"name":"  Dana  "}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"bed_id":"R1-2","name":"Dana","claimed":true}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseAndUnblockHandlers(t *testing.T) {
	e, mock := setupBookingAPI(t, 7)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT bed_id FROM bed_bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"bed_id"}).AddRow("R1-1").AddRow("R1-2"))
	mock.ExpectExec(`DELETE FROM bed_bookings WHERE event_id = \? AND \(bed_id`).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	rec := call(e, http.MethodDelete, "/v1/events/camp/bookings/R1-1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"bed_id":"R1-1","removed":["R1-1","R1-2"]}`, rec.Body.String())

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM bed_bookings WHERE event_id = \? AND bed_id = \? AND status IN`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec = call(e, http.MethodDelete, "/v1/events/camp/bookings/R1-3/block", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"bed_id":"R1-3","unblocked":true}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
