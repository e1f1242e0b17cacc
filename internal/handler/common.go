package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/middleware"
	"github.com/iliyamo/event-bed-booking/internal/service"
)

// eventID returns the event resolved by middleware.ResolveEvent, or 0 when
// the route was not scoped.  Services treat 0 as "no event".
func eventID(c echo.Context) uint64 {
	if v, ok := c.Get(middleware.EventIDKey).(uint64); ok {
		return v
	}
	return 0
}

// respondError translates service errors: validation → 400 with the
// field message, missing event → 404, anything else → 500 with the given
// generic message.  Storage failures are logged here because the client
// only ever sees the generic text.
func respondError(c echo.Context, logger *zap.Logger, err error, msg string) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error()})
	case errors.Is(err, service.ErrNoEvent):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	logger.Error(msg, zap.String("path", c.Request().URL.Path), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}
