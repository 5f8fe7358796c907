package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-ticketing/internal/service"
)

// TripHandler serves the /api/trips endpoints.
type TripHandler struct {
	Trips TripReader
}

func NewTripHandler(t TripReader) *TripHandler { return &TripHandler{Trips: t} }

// List handles GET /api/trips?from=&to=&date=. Unknown origins or
// destinations yield an empty array.
func (h *TripHandler) List(c echo.Context, a service.Actor) error {
	trips, err := h.Trips.ListTrips(c.Request().Context(), a, service.TripSearch{
		Origin:      c.QueryParam("from"),
		Destination: c.QueryParam("to"),
		Date:        c.QueryParam("date"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, trips)
}

// Conductor handles GET /api/trips/conductor.
func (h *TripHandler) Conductor(c echo.Context, a service.Actor) error {
	trips, err := h.Trips.ListTripsForConductor(c.Request().Context(), a)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, trips)
}

// Get handles GET /api/trips/:id.
func (h *TripHandler) Get(c echo.Context, a service.Actor) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid trip id")
	}
	trip, err := h.Trips.GetTrip(c.Request().Context(), a, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, trip)
}
