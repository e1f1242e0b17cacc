package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/repository"
	"github.com/iliyamo/event-bed-booking/internal/tenant"
)

// EventIDKey is the context key holding the resolved event id (uint64).
const EventIDKey = "event_id"

// ResolveEvent resolves the :event path parameter to an event id and
// stores it under EventIDKey.  Unknown or inactive events end the request
// with 404.
func ResolveEvent(res *tenant.Resolver, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := res.Resolve(c.Request().Context(), c.Param("event"))
			if err != nil {
				if errors.Is(err, repository.ErrEventNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
				}
				logger.Error("resolve event failed", zap.String("slug", c.Param("event")), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
			}
			c.Set(EventIDKey, id)
			return next(c)
		}
	}
}
