package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/handler"
	"github.com/iliyamo/event-bed-booking/internal/middleware"
	"github.com/iliyamo/event-bed-booking/internal/utils"
)

// New returns an Echo instance with the process-wide middleware installed:
// panic recovery, a uuid request id and structured request logging.
func New(logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(logger))
	return e
}

// RegisterRoutes registers non-authenticated infrastructure routes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// EventScoped bundles the handlers and middleware of the per-event routes.
type EventScoped struct {
	Resolve   echo.MiddlewareFunc // middleware.ResolveEvent
	RateLimit echo.MiddlewareFunc // applied to write routes
	Cache     echo.MiddlewareFunc // applied to the room listing
	Bookings  *handler.BookingHandler
	Waitlist  *handler.WaitlistHandler
	Rooms     *handler.RoomHandler
}

// RegisterEvent registers the public routes under /v1/events/:event.
// Every route runs the tenant resolver first, so an unknown event is a
// 404 before any handler runs.
func RegisterEvent(e *echo.Echo, s EventScoped) {
	g := e.Group("/v1/events/:event", s.Resolve)

	g.GET("/rooms", s.Rooms.List, s.Cache)

	g.GET("/bookings", s.Bookings.List)
	g.POST("/bookings", s.Bookings.Reserve, s.RateLimit)
	g.POST("/bookings/:bed/claim", s.Bookings.Claim, s.RateLimit)
	g.DELETE("/bookings/:bed", s.Bookings.Release, s.RateLimit)
	g.DELETE("/bookings/:bed/block", s.Bookings.Unblock, s.RateLimit)

	g.GET("/waitlist", s.Waitlist.List)
	g.POST("/waitlist", s.Waitlist.Append, s.RateLimit)
	g.DELETE("/waitlist/:id", s.Waitlist.Remove, s.RateLimit)
}

// RegisterAdmin registers the login route and the organizer routes.  The
// organizer group requires a valid JWT with the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AuthHandler, ev *handler.EventHandler, rooms *handler.RoomHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	e.POST("/v1/admin/login", a.Login, rateLimit)

	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleAdmin),
	)
	g.GET("/events", ev.List)
	g.POST("/events", ev.Create)
	g.GET("/events/:id", ev.Get)
	g.PUT("/events/:id", ev.Update)
	g.DELETE("/events/:id", ev.Delete)

	g.POST("/events/:id/rooms", rooms.Create)
	g.PUT("/rooms/:id", rooms.Update)
	g.DELETE("/rooms/:id", rooms.Delete)
}
