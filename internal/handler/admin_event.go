package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/model"
	"github.com/iliyamo/event-bed-booking/internal/repository"
	"github.com/iliyamo/event-bed-booking/internal/tenant"
)

// EventHandler provides organizer CRUD for events.
type EventHandler struct {
	Events   *repository.EventRepo
	Resolver *tenant.Resolver
	Logger   *zap.Logger
}

func NewEventHandler(events *repository.EventRepo, resolver *tenant.Resolver, logger *zap.Logger) *EventHandler {
	if events == nil || resolver == nil {
		panic("nil dependency passed to NewEventHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHandler{Events: events, Resolver: resolver, Logger: logger}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}$`)

type eventReq struct {
	Slug     string  `json:"slug"`
	Name     string  `json:"name"`
	StartsOn *string `json:"starts_on"`
	EndsOn   *string `json:"ends_on"`
	IsActive *bool   `json:"is_active"`
}

// toModel validates the request and returns the event to persist, or a
// client facing error message.
func (r eventReq) toModel() (*model.Event, string) {
	e := &model.Event{
		Slug:     strings.ToLower(strings.TrimSpace(r.Slug)),
		Name:     strings.TrimSpace(r.Name),
		IsActive: true,
	}
	if !slugPattern.MatchString(e.Slug) {
		return nil, "slug must be 2-63 characters of a-z, 0-9 and '-'"
	}
	if e.Name == "" {
		return nil, "name is required"
	}
	for _, d := range []*string{r.StartsOn, r.EndsOn} {
		if d != nil && *d != "" {
			if _, err := time.Parse("2006-01-02", *d); err != nil {
				return nil, "dates must be YYYY-MM-DD"
			}
		}
	}
	if r.StartsOn != nil && *r.StartsOn != "" {
		e.StartsOn = r.StartsOn
	}
	if r.EndsOn != nil && *r.EndsOn != "" {
		e.EndsOn = r.EndsOn
	}
	if e.StartsOn != nil && e.EndsOn != nil && *e.EndsOn < *e.StartsOn {
		return nil, "ends_on must not be before starts_on"
	}
	if r.IsActive != nil {
		e.IsActive = *r.IsActive
	}
	return e, ""
}

func parseID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// List handles GET /v1/admin/events.
func (h *EventHandler) List(c echo.Context) error {
	events, err := h.Events.List(c.Request().Context())
	if err != nil {
		h.Logger.Error("list events failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, events)
}

// Get handles GET /v1/admin/events/:id.
func (h *EventHandler) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, err := h.Events.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

// Create handles POST /v1/admin/events.
func (h *EventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ev, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Events.Create(c.Request().Context(), ev); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, ev)
}

// Update handles PUT /v1/admin/events/:id.  Both the old and the new slug
// are evicted from the tenant cache.
func (h *EventHandler) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ev, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ev.ID = id
	ctx := c.Request().Context()
	prevSlug, err := h.Events.Update(ctx, ev)
	if err != nil {
		return h.fail(c, err)
	}
	h.Resolver.Evict(ctx, prevSlug, ev.Slug)
	return c.JSON(http.StatusOK, ev)
}

// Delete handles DELETE /v1/admin/events/:id.  Rooms, bookings and the
// waitlist of the event are removed with it.
func (h *EventHandler) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	slug, err := h.Events.Delete(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	h.Resolver.Evict(ctx, slug)
	return c.NoContent(http.StatusNoContent)
}

func (h *EventHandler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slug already in use"})
	}
	h.Logger.Error("event admin failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
