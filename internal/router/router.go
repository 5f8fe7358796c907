package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-ticketing/internal/access"
	"github.com/iliyamo/bus-ticketing/internal/handler"
	"github.com/iliyamo/bus-ticketing/internal/middleware"
)

// Handlers bundles the HTTP handlers mounted by Register.
type Handlers struct {
	Auth    *handler.AuthHandler
	Tickets *handler.TicketHandler
	Trips   *handler.TripHandler
	Admin   *handler.AdminHandler
}

// Options carries the secret and the optional Redis-backed middleware.
// A nil Cache or RateLimit is skipped.
type Options struct {
	JWTSecret string
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// Register mounts every route of the API on e: the health check at the
// root and everything else under /api. Unknown routes answer with a JSON
// 404.
func Register(e *echo.Echo, h Handlers, o Options) {
	RegisterRoutes(e)

	api := e.Group("/api", middleware.OptionalJWT(o.JWTSecret))
	if o.RateLimit != nil {
		api.Use(o.RateLimit)
	}
	RegisterAuth(api, h.Auth, o.JWTSecret)
	RegisterTickets(api, h.Tickets, o.JWTSecret)
	RegisterTrips(api, h.Trips, o.JWTSecret, o.Cache)
	RegisterAdmin(api, h.Admin, o.JWTSecret)

	e.RouteNotFound("/*", handler.NotFound)
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.Health)
}

// RegisterAuth registers the /auth routes. Register, login, refresh and
// logout need no session; logout revokes every token of the bearer when
// the body carries no refresh token.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, jwtSecret string) {
	g := api.Group("/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.GET("/me", handler.WithActor(a.Me), middleware.JWTAuth(jwtSecret), middleware.Require(access.ViewProfile))
}

// guard returns the middleware of a protected route: token validation
// followed by the capability check for op.
func guard(jwtSecret string, op access.Operation) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret), middleware.Require(op)}
}
