package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-ticketing/internal/access"
	"github.com/iliyamo/bus-ticketing/internal/handler"
)

// RegisterTickets registers the /tickets routes. Any role may book and read
// its own tickets; ownership of a single ticket is checked by the service.
// Verification and trip manifests are limited to conductors and admins.
func RegisterTickets(api *echo.Group, h *handler.TicketHandler, jwtSecret string) {
	g := api.Group("/tickets")
	g.POST("", handler.WithActor(h.Book), guard(jwtSecret, access.BookTicket)...)
	g.GET("/my-tickets", handler.WithActor(h.MyTickets), guard(jwtSecret, access.ListOwnTickets)...)
	g.POST("/verify", handler.WithActor(h.Verify), guard(jwtSecret, access.VerifyTicket)...)
	g.GET("/trip/:tripId", handler.WithActor(h.Manifest), guard(jwtSecret, access.ViewManifest)...)
	g.GET("/:id", handler.WithActor(h.Get), guard(jwtSecret, access.ViewTicket)...)
	g.GET("/:id/e-ticket", handler.WithActor(h.ETicket), guard(jwtSecret, access.ViewTicket)...)
}

// RegisterTrips registers the /trips routes. The search listing is cached
// when cache is non-nil.
func RegisterTrips(api *echo.Group, h *handler.TripHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := api.Group("/trips")
	search := guard(jwtSecret, access.SearchTrips)
	if cache != nil {
		search = append(search, cache)
	}
	g.GET("", handler.WithActor(h.List), search...)
	g.GET("/conductor", handler.WithActor(h.Conductor), guard(jwtSecret, access.ListConductorTrips)...)
	g.GET("/:id", handler.WithActor(h.Get), guard(jwtSecret, access.ViewTrip)...)
}
