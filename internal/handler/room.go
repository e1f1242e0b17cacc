package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/model"
	"github.com/iliyamo/event-bed-booking/internal/repository"
)

// RoomHandler serves the room registry: a public listing per event and
// organizer create/update/delete.
type RoomHandler struct {
	Rooms  *repository.RoomRepo
	Events *repository.EventRepo
	// Purge drops cached room listings after a write.  May be nil.
	Purge  func(ctx context.Context) error
	Logger *zap.Logger
}

func NewRoomHandler(rooms *repository.RoomRepo, events *repository.EventRepo, purge func(ctx context.Context) error, logger *zap.Logger) *RoomHandler {
	if rooms == nil || events == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomHandler{Rooms: rooms, Events: events, Purge: purge, Logger: logger}
}

// roomView adds the derived bed ids clients pass back as room_bed_ids.
type roomView struct {
	model.Room
	BedIDs []string `json:"bed_ids"`
}

type roomReq struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	BedCount  uint32  `json:"bed_count"`
	Floor     *string `json:"floor"`
	Notes     *string `json:"notes"`
	SortOrder int     `json:"sort_order"`
}

func (r roomReq) validate() string {
	switch {
	case strings.TrimSpace(r.Code) == "":
		return "code is required"
	case strings.TrimSpace(r.Name) == "":
		return "name is required"
	case r.BedCount == 0 || r.BedCount > 64:
		return "bed_count must be between 1 and 64"
	}
	return ""
}

func (r roomReq) apply(rm *model.Room) {
	rm.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	rm.Name = strings.TrimSpace(r.Name)
	rm.BedCount = r.BedCount
	rm.Floor = r.Floor
	rm.Notes = r.Notes
	rm.SortOrder = r.SortOrder
}

// List handles GET /v1/events/:event/rooms.
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.Rooms.ListByEvent(c.Request().Context(), eventID(c))
	if err != nil {
		h.Logger.Error("list rooms failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]roomView, 0, len(rooms))
	for _, rm := range rooms {
		out = append(out, roomView{Room: rm, BedIDs: rm.BedIDs()})
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/admin/events/:id/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	evID, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	if _, err := h.Events.GetByID(ctx, evID); err != nil {
		return h.fail(c, err)
	}
	rm := &model.Room{EventID: evID}
	req.apply(rm)
	if err := h.Rooms.Create(ctx, rm); err != nil {
		return h.fail(c, err)
	}
	h.purge(ctx)
	return c.JSON(http.StatusCreated, roomView{Room: *rm, BedIDs: rm.BedIDs()})
}

// Update handles PUT /v1/admin/rooms/:id.
func (h *RoomHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx := c.Request().Context()
	rm, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	req.apply(rm)
	if err := h.Rooms.Update(ctx, rm); err != nil {
		return h.fail(c, err)
	}
	h.purge(ctx)
	return c.JSON(http.StatusOK, roomView{Room: *rm, BedIDs: rm.BedIDs()})
}

// Delete handles DELETE /v1/admin/rooms/:id.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx := c.Request().Context()
	if err := h.Rooms.Delete(ctx, id); err != nil {
		return h.fail(c, err)
	}
	h.purge(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *RoomHandler) purge(ctx context.Context) {
	if h.Purge == nil {
		return
	}
	if err := h.Purge(ctx); err != nil {
		h.Logger.Warn("purge room cache failed", zap.Error(err))
	}
}

func (h *RoomHandler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "room code already in use"})
	}
	h.Logger.Error("room admin failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
