package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-ticketing/internal/access"
)

// Require returns a middleware that rejects callers whose role may not
// attempt op. It must run after JWTAuth; an anonymous request is answered
// with 401 and a disallowed role with 403.
func Require(op access.Operation) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            _, role, ok := Identity(c)
            if !ok {
                return unauthorized(c, "Missing bearer token")
            }
            if !access.Allowed(role, op) {
                return deny(c, http.StatusForbidden, "forbidden", "Not authorized")
            }
            return next(c)
        }
    }
}
