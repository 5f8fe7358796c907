package middleware

import (
    "bytes"
    "encoding/json"
    "log/slog"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-ticketing/internal/access"
    "github.com/iliyamo/bus-ticketing/internal/config"
    "github.com/iliyamo/bus-ticketing/internal/model"
    "github.com/iliyamo/bus-ticketing/internal/utils"
)

const secret = "middleware-secret"

func token(t *testing.T, id uint64, role string) string {
    t.Helper()
    tok, err := utils.NewAccessToken(secret, id, role, 5)
    require.NoError(t, err)
    return tok.Token
}

// whoami echoes the identity JWTAuth stored.
func whoami(c echo.Context) error {
    id, role, ok := Identity(c)
    return c.JSON(http.StatusOK, echo.Map{"id": id, "role": role, "ok": ok})
}

func serve(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
    req := httptest.NewRequest(method, path, nil)
    if auth != "" {
        req.Header.Set(echo.HeaderAuthorization, auth)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
    t.Helper()
    var body map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    return body
}

func TestJWTAuth(t *testing.T) {
    e := echo.New()
    e.GET("/me", whoami, JWTAuth(secret))

    rec := serve(e, http.MethodGet, "/me", "Bearer "+token(t, 42, "conductor"))
    require.Equal(t, http.StatusOK, rec.Code)
    body := decode(t, rec)
    assert.EqualValues(t, 42, body["id"])
    assert.Equal(t, "conductor", body["role"])

    other, err := utils.NewAccessToken("another-secret", 42, "admin", 5)
    require.NoError(t, err)
    for name, auth := range map[string]string{
        "missing":      "",
        "not bearer":   "Basic Zm9vOmJhcg==",
        "empty bearer": "Bearer ",
        "garbage":      "Bearer abc.def.ghi",
        "wrong secret": "Bearer " + other.Token,
        "unknown role": "Bearer " + token(t, 42, "driver"),
    } {
        t.Run(name, func(t *testing.T) {
            rec := serve(e, http.MethodGet, "/me", auth)
            assert.Equal(t, http.StatusUnauthorized, rec.Code)
            assert.Equal(t, "unauthorized", decode(t, rec)["code"])
        })
    }
}

func TestOptionalJWT(t *testing.T) {
    e := echo.New()
    e.GET("/me", whoami, OptionalJWT(secret))

    body := decode(t, serve(e, http.MethodGet, "/me", ""))
    assert.Equal(t, false, body["ok"])

    body = decode(t, serve(e, http.MethodGet, "/me", "Bearer junk"))
    assert.Equal(t, false, body["ok"])

    body = decode(t, serve(e, http.MethodGet, "/me", "Bearer "+token(t, 7, "passenger")))
    assert.Equal(t, true, body["ok"])
    assert.EqualValues(t, 7, body["id"])
}

func TestRequire(t *testing.T) {
    e := echo.New()
    ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
    e.POST("/verify", ok, JWTAuth(secret), Require(access.VerifyTicket))
    e.GET("/open", ok, Require(access.SearchTrips))

    cases := []struct {
        role string
        want int
    }{
        {"passenger", http.StatusForbidden},
        {"conductor", http.StatusNoContent},
        {"admin", http.StatusNoContent},
    }
    for _, tc := range cases {
        rec := serve(e, http.MethodPost, "/verify", "Bearer "+token(t, 5, tc.role))
        assert.Equal(t, tc.want, rec.Code, tc.role)
        if tc.want == http.StatusForbidden {
            body := decode(t, rec)
            assert.Equal(t, "forbidden", body["code"])
            assert.Equal(t, "Not authorized", body["error"])
        }
    }

    rec := serve(e, http.MethodGet, "/open", "")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSlogLogger(t *testing.T) {
    var buf bytes.Buffer
    log := slog.New(slog.NewJSONHandler(&buf, nil))

    e := echo.New()
    e.Use(SlogLogger(log))
    e.GET("/boom", func(c echo.Context) error {
        c.Response().Header().Set(echo.HeaderXRequestID, "req-1")
        return echo.NewHTTPError(http.StatusTeapot, "short and stout")
    })

    rec := serve(e, http.MethodGet, "/boom", "")
    require.Equal(t, http.StatusTeapot, rec.Code)

    var entry map[string]any
    require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
    assert.Equal(t, "request", entry["msg"])
    assert.Equal(t, "GET", entry["method"])
    assert.Equal(t, "/boom", entry["path"])
    assert.EqualValues(t, http.StatusTeapot, entry["status"])
    assert.Equal(t, "req-1", entry["request_id"])
    assert.NotNil(t, entry["duration_ms"])
}

func TestCacheAndLimiterPassThroughWithoutRedis(t *testing.T) {
    e := echo.New()
    e.GET("/trips", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
        NewTokenBucket(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil),
        NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil),
    )
    for i := 0; i < 3; i++ {
        rec := serve(e, http.MethodGet, "/trips", "")
        assert.Equal(t, http.StatusOK, rec.Code)
        assert.Empty(t, rec.Header().Get("X-Cache"))
        assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
    }
}

func TestCacheKeyIgnoresQueryOrder(t *testing.T) {
    cfg := config.CacheConfig{Prefix: "bt:cache", KeyStrategy: "route_query"}
    e := echo.New()

    key := func(target string, id uint64) string {
        c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
        c.SetPath("/api/trips")
        if id != 0 {
            c.Set(CtxUserID, id)
            c.Set(CtxRole, model.RolePassenger)
        }
        return cacheKeyFrom(cfg, c)
    }

    a := key("/api/trips?from=Vijayawada&to=Hyderabad", 1)
    b := key("/api/trips?to=Hyderabad&from=Vijayawada", 2)
    assert.Equal(t, a, b)
    assert.NotEqual(t, a, key("/api/trips?from=Guntur", 1))
    assert.Regexp(t, `^bt:cache:[0-9a-f]{40}$`, a)

    cfg.KeyStrategy = "user_route_query"
    assert.NotEqual(t, key("/api/trips?from=X", 1), key("/api/trips?from=X", 2))
}

func TestPayloadRoundTrip(t *testing.T) {
    hdr := http.Header{"Content-Type": []string{"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`[{"id":1}]`))
    require.NoError(t, err)

    status, got, body, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "application/json", got.Get("Content-Type"))
    assert.Equal(t, `[{"id":1}]`, string(body))

    _, _, _, ok = decodePayload(bs[:6])
    assert.False(t, ok)
}

func TestBuildRateKey(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/api/tickets", nil)
    req.Header.Set(echo.HeaderXRealIP, "10.0.0.9")
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/api/tickets")

    cfg := config.RateLimitConfig{Prefix: "bt:rl"}
    assert.Equal(t, "bt:rl:ip:10.0.0.9:user:guest:route:POST /api/tickets", buildRateKey(cfg, c))

    c.Set(CtxUserID, uint64(3))
    c.Set(CtxRole, model.RolePassenger)
    cfg.KeyStrategy = "user"
    assert.Equal(t, "bt:rl:user:3", buildRateKey(cfg, c))
}

func TestParseBucketResult(t *testing.T) {
    allowed, remaining, retry, ok := parseBucketResult([]any{int64(1), int64(59), int64(0)})
    require.True(t, ok)
    assert.True(t, allowed)
    assert.EqualValues(t, 59, remaining)
    assert.Zero(t, retry)

    allowed, _, retry, ok = parseBucketResult([]any{int64(0), int64(0), int64(1500)})
    require.True(t, ok)
    assert.False(t, allowed)
    assert.EqualValues(t, 1500, retry)

    _, _, _, ok = parseBucketResult("nope")
    assert.False(t, ok)
}
