package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-ticketing/internal/access"
	"github.com/iliyamo/bus-ticketing/internal/handler"
	"github.com/iliyamo/bus-ticketing/internal/middleware"
)

// RegisterAdmin registers admin-scoped endpoints under /admin. All routes
// require a valid JWT and the admin role.
func RegisterAdmin(api *echo.Group, h *handler.AdminHandler, jwtSecret string) {
	g := api.Group("/admin", middleware.JWTAuth(jwtSecret))
	g.GET("/stats", handler.WithActor(h.Stats), middleware.Require(access.ViewDashboard))

	fleet := middleware.Require(access.ManageFleet)
	g.GET("/buses", handler.WithActor(h.ListBuses), fleet)
	g.POST("/buses", handler.WithActor(h.CreateBus), fleet)
	g.PUT("/buses/:id", handler.WithActor(h.UpdateBus), fleet)
	g.GET("/routes", handler.WithActor(h.ListRoutes), fleet)
	g.POST("/routes", handler.WithActor(h.CreateRoute), fleet)
	g.POST("/trips", handler.WithActor(h.ScheduleTrip), fleet)
}
