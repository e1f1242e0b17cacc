package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/service"
)

// WaitlistHandler exposes the per-event waitlist.
type WaitlistHandler struct {
	Waitlist *service.WaitlistService
	Logger   *zap.Logger
}

func NewWaitlistHandler(w *service.WaitlistService, logger *zap.Logger) *WaitlistHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaitlistHandler{Waitlist: w, Logger: logger}
}

type waitlistReq struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

// List handles GET /v1/events/:event/waitlist.
func (h *WaitlistHandler) List(c echo.Context) error {
	entries, err := h.Waitlist.List(c.Request().Context(), eventID(c))
	if err != nil {
		return respondError(c, h.Logger, err, "failed to list waitlist")
	}
	return c.JSON(http.StatusOK, entries)
}

// Append handles POST /v1/events/:event/waitlist.
func (h *WaitlistHandler) Append(c echo.Context) error {
	var req waitlistReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	entry, err := h.Waitlist.Append(c.Request().Context(), eventID(c), req.Name, req.Comment)
	if err != nil {
		return respondError(c, h.Logger, err, "failed to join waitlist")
	}
	return c.JSON(http.StatusCreated, entry)
}

// Remove handles DELETE /v1/events/:event/waitlist/:id.
func (h *WaitlistHandler) Remove(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid waitlist id"})
	}
	if err := h.Waitlist.Remove(c.Request().Context(), eventID(c), id); err != nil {
		return respondError(c, h.Logger, err, "failed to remove waitlist entry")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
