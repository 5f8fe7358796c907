package middleware

import (
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-ticketing/internal/model"
    "github.com/iliyamo/bus-ticketing/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the caller's id and role under CtxUserID and CtxRole. Missing,
// malformed, expired or foreign tokens are answered with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw, ok := bearer(c)
            if !ok {
                return unauthorized(c, "Missing bearer token")
            }
            if !authenticate(c, secret, raw) {
                return unauthorized(c, "Invalid or expired token")
            }
            return next(c)
        }
    }
}

// OptionalJWT stores the caller's identity when a valid Bearer token is
// present and otherwise lets the request through anonymously.
func OptionalJWT(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if raw, ok := bearer(c); ok {
                authenticate(c, secret, raw)
            }
            return next(c)
        }
    }
}

func bearer(c echo.Context) (string, bool) {
    auth := c.Request().Header.Get(echo.HeaderAuthorization)
    if !strings.HasPrefix(auth, "Bearer ") {
        return "", false
    }
    raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
    return raw, raw != ""
}

func authenticate(c echo.Context, secret, raw string) bool {
    id, err := utils.ParseAccessToken(secret, raw)
    if err != nil {
        return false
    }
    role, ok := model.ParseRole(id.Role)
    if !ok {
        return false
    }
    c.Set(CtxUserID, id.UserID)
    c.Set(CtxRole, role)
    return true
}
