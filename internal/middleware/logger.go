package middleware

import (
    "log/slog"
    "time"

    "github.com/labstack/echo/v4"
)

// SlogLogger returns a middleware that logs each request as one structured
// line via log. Handler errors are passed to echo's error handler first so
// the logged status is the one the client received.
//
// Wire it after echo's RequestID middleware so the request ID is available.
func SlogLogger(log *slog.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            if err := next(c); err != nil {
                c.Error(err)
            }
            req, res := c.Request(), c.Response()
            attrs := []any{
                "method", req.Method,
                "path", req.URL.Path,
                "status", res.Status,
                "duration_ms", time.Since(start).Milliseconds(),
                "request_id", res.Header().Get(echo.HeaderXRequestID),
            }
            if id, _, ok := Identity(c); ok {
                attrs = append(attrs, "user_id", id)
            }
            level := slog.LevelInfo
            if res.Status >= 500 {
                level = slog.LevelError
            }
            log.Log(req.Context(), level, "request", attrs...)
            return nil
        }
    }
}
