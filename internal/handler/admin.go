package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-ticketing/internal/model"
	"github.com/iliyamo/bus-ticketing/internal/service"
)

// AdminHandler serves the /api/admin endpoints.
type AdminHandler struct {
	Fleet FleetManager
}

func NewAdminHandler(f FleetManager) *AdminHandler { return &AdminHandler{Fleet: f} }

type createBusReq struct {
	RegistrationNumber string          `json:"registrationNumber"`
	Model              string          `json:"model"`
	Capacity           int             `json:"capacity"`
	Type               string          `json:"type"`
	Status             model.BusStatus `json:"status"`
}

type updateBusReq struct {
	Status model.BusStatus `json:"status"`
}

type createRouteReq struct {
	Name              string       `json:"name"`
	Code              string       `json:"code"`
	Origin            string       `json:"origin"`
	Destination       string       `json:"destination"`
	Distance          float64      `json:"distance"`
	EstimatedDuration int          `json:"estimatedDuration"`
	BaseFare          float64      `json:"baseFare"`
	Stops             []model.Stop `json:"stops"`
}

type scheduleTripReq struct {
	RouteID            uint64    `json:"routeId"`
	BusID              uint64    `json:"busId"`
	ConductorID        *uint64   `json:"conductorId"`
	ScheduledDeparture time.Time `json:"scheduledDeparture"`
	ScheduledArrival   time.Time `json:"scheduledArrival"`
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c echo.Context, a service.Actor) error {
	st, err := h.Fleet.Stats(c.Request().Context(), a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"stats": st})
}

// ListBuses handles GET /api/admin/buses.
func (h *AdminHandler) ListBuses(c echo.Context, a service.Actor) error {
	buses, err := h.Fleet.ListBuses(c.Request().Context(), a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, buses)
}

// CreateBus handles POST /api/admin/buses.
func (h *AdminHandler) CreateBus(c echo.Context, a service.Actor) error {
	var req createBusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	b, err := h.Fleet.CreateBus(ctx, a, service.CreateBusRequest{
		RegistrationNumber: req.RegistrationNumber,
		Model:              req.Model,
		Capacity:           req.Capacity,
		Type:               req.Type,
		Status:             req.Status,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// UpdateBus handles PUT /api/admin/buses/:id.
func (h *AdminHandler) UpdateBus(c echo.Context, a service.Actor) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid bus id")
	}
	var req updateBusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	b, err := h.Fleet.UpdateBusStatus(c.Request().Context(), a, id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// ListRoutes handles GET /api/admin/routes.
func (h *AdminHandler) ListRoutes(c echo.Context, a service.Actor) error {
	routes, err := h.Fleet.ListRoutes(c.Request().Context(), a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, routes)
}

// CreateRoute handles POST /api/admin/routes.
func (h *AdminHandler) CreateRoute(c echo.Context, a service.Actor) error {
	var req createRouteReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rt, err := h.Fleet.CreateRoute(ctx, a, service.CreateRouteRequest{
		Name:              req.Name,
		Code:              req.Code,
		Origin:            req.Origin,
		Destination:       req.Destination,
		Distance:          req.Distance,
		EstimatedDuration: req.EstimatedDuration,
		BaseFare:          req.BaseFare,
		Stops:             req.Stops,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, rt)
}

// ScheduleTrip handles POST /api/admin/trips. Times are RFC 3339.
func (h *AdminHandler) ScheduleTrip(c echo.Context, a service.Actor) error {
	var req scheduleTripReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body: times must be RFC 3339")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	d, err := h.Fleet.ScheduleTrip(ctx, a, service.ScheduleTripRequest{
		RouteID:            req.RouteID,
		BusID:              req.BusID,
		ConductorID:        req.ConductorID,
		ScheduledDeparture: req.ScheduledDeparture,
		ScheduledArrival:   req.ScheduledArrival,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, d)
}
