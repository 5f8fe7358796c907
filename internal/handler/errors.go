package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-ticketing/internal/middleware"
	"github.com/iliyamo/bus-ticketing/internal/service"
)

// errorBody is the payload of every failed request. Ticket is set only by
// the verification endpoint so scanners can show what they scanned.
type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   any    `json:"details,omitempty"`
	Ticket    any    `json:"ticket,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// statusFor maps a service error kind to its HTTP status.
func statusFor(k service.Kind) int {
	switch k {
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindDuplicate:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// asServiceError returns err as a *service.Error, wrapping anything else
// as internal.
func asServiceError(err error) *service.Error {
	var se *service.Error
	if errors.As(err, &se) {
		return se
	}
	return service.Internal(err)
}

// respondError writes err with the status of its kind. Internal causes are
// logged and never sent to the client.
func respondError(c echo.Context, err error) error {
	return writeError(c, asServiceError(err), nil)
}

func writeError(c echo.Context, se *service.Error, ticket any) error {
	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	if se.Kind == service.KindInternal {
		slog.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "request_id", rid, "error", se.Err)
	}
	return c.JSON(statusFor(se.Kind), errorBody{
		Error:     se.Message,
		Code:      string(se.Kind),
		Details:   se.Details,
		Ticket:    ticket,
		RequestID: rid,
	})
}

func badRequest(c echo.Context, msg string) error {
	return respondError(c, service.Validation(msg, nil))
}

// actor returns the authenticated caller set by middleware.JWTAuth.
func actor(c echo.Context) (service.Actor, bool) {
	id, role, ok := middleware.Identity(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{UserID: id, Role: role}, true
}

// WithActor adapts a handler that needs the caller. Requests that reach it
// without an identity are answered with 401.
func WithActor(h func(c echo.Context, a service.Actor) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		a, ok := actor(c)
		if !ok {
			return respondError(c, service.Unauthorized("Not authorized, no token"))
		}
		return h(c, a)
	}
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// NotFound answers unknown routes.
func NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": "Route not found"})
}

// ErrorHandler replaces echo's default so framework errors (unknown route,
// wrong method, recovered panics) use the API error payload.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		var werr error
		switch he.Code {
		case http.StatusNotFound:
			werr = NotFound(c)
		case http.StatusMethodNotAllowed:
			werr = c.JSON(he.Code, echo.Map{"error": "Method not allowed"})
		default:
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok && s != "" {
				msg = s
			}
			werr = c.JSON(he.Code, echo.Map{"error": msg})
		}
		if werr != nil {
			slog.ErrorContext(c.Request().Context(), "write error response failed", "error", werr)
		}
		return
	}
	if werr := respondError(c, err); werr != nil {
		slog.ErrorContext(c.Request().Context(), "write error response failed", "error", werr)
	}
}
