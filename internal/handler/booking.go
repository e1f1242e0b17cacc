package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/model"
	"github.com/iliyamo/event-bed-booking/internal/service"
)

// BookingHandler exposes the bed ledger.  Every route is scoped by the
// :event path parameter, resolved by middleware.ResolveEvent.
type BookingHandler struct {
	Bookings *service.BookingService
	Logger   *zap.Logger
}

// NewBookingHandler panics if the service is nil.
func NewBookingHandler(bookings *service.BookingService, logger *zap.Logger) *BookingHandler {
	if bookings == nil {
		panic("nil service passed to NewBookingHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingHandler{Bookings: bookings, Logger: logger}
}

type reserveReq struct {
	BedID       string   `json:"bed_id"`
	Name        string   `json:"name"`
	Restriction string   `json:"restriction"`
	RoomBedIDs  []string `json:"room_bed_ids"`
	model.Logistics
}

type claimReq struct {
	Name string `json:"name"`
	model.Logistics
}

// List handles GET /v1/events/:event/bookings.  The response maps bed id
// to its slot; free beds are absent.
func (h *BookingHandler) List(c echo.Context) error {
	slots, err := h.Bookings.List(c.Request().Context(), eventID(c))
	if err != nil {
		return respondError(c, h.Logger, err, "failed to list bookings")
	}
	return c.JSON(http.StatusOK, slots)
}

// Reserve handles POST /v1/events/:event/bookings.  A body with a
// restriction and room_bed_ids also restricts the free beds of the room.
func (h *BookingHandler) Reserve(c echo.Context) error {
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Bookings.Reserve(c.Request().Context(), eventID(c), service.ReserveRequest{
		BedID:       req.BedID,
		Name:        req.Name,
		Restriction: req.Restriction,
		RoomBedIDs:  req.RoomBedIDs,
		Logistics:   req.Logistics,
	})
	if err != nil {
		return respondError(c, h.Logger, err, "failed to reserve bed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"bed_id":          res.BedID,
		"name":            res.Name,
		"restriction":     res.Restriction,
		"restricted_beds": res.Restricted,
	})
}

// Claim handles POST /v1/events/:event/bookings/:bed/claim.  claimed is
// false when the bed was not a women/men placeholder; nothing changed then.
func (h *BookingHandler) Claim(c echo.Context) error {
	var req claimReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	res, err := h.Bookings.Claim(c.Request().Context(), eventID(c), service.ClaimRequest{
		BedID:     c.Param("bed"),
		Name:      req.Name,
		Logistics: req.Logistics,
	})
	if err != nil {
		return respondError(c, h.Logger, err, "failed to claim bed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "bed_id": res.BedID, "name": res.Name, "claimed": res.Claimed})
}

// Release handles DELETE /v1/events/:event/bookings/:bed.  Beds restricted
// by this one are released with it.
func (h *BookingHandler) Release(c echo.Context) error {
	bedID := c.Param("bed")
	removed, err := h.Bookings.Release(c.Request().Context(), eventID(c), bedID)
	if err != nil {
		return respondError(c, h.Logger, err, "failed to release bed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "bed_id": bedID, "removed": removed})
}

// Unblock handles DELETE /v1/events/:event/bookings/:bed/block.
func (h *BookingHandler) Unblock(c echo.Context) error {
	bedID := c.Param("bed")
	removed, err := h.Bookings.Unblock(c.Request().Context(), eventID(c), bedID)
	if err != nil {
		return respondError(c, h.Logger, err, "failed to unblock bed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "bed_id": bedID, "unblocked": removed})
}
