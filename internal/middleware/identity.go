package middleware

// identity.go holds the context keys written by JWTAuth and the helpers
// that read them back. The cache and rate limiter use userID to build
// per-caller keys; handlers use Identity to build a service actor.

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-ticketing/internal/model"
)

const (
    CtxUserID = "user_id" // uint64
    CtxRole   = "role"    // model.Role
)

// Identity returns the caller stored by JWTAuth. The last result is false
// for anonymous requests.
func Identity(c echo.Context) (uint64, model.Role, bool) {
    id, ok := c.Get(CtxUserID).(uint64)
    if !ok || id == 0 {
        return 0, "", false
    }
    role, ok := c.Get(CtxRole).(model.Role)
    if !ok {
        return 0, "", false
    }
    return id, role, true
}

// userID returns the caller id as a key segment, or "guest" when the
// request is anonymous.
func userID(c echo.Context) string {
    if id, _, ok := Identity(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "guest"
}

// deny writes the API error payload and stops the chain.
func deny(c echo.Context, status int, code, msg string) error {
    return c.JSON(status, echo.Map{
        "error":     msg,
        "code":      code,
        "requestId": c.Response().Header().Get(echo.HeaderXRequestID),
    })
}

func unauthorized(c echo.Context, msg string) error {
    return deny(c, http.StatusUnauthorized, "unauthorized", msg)
}
