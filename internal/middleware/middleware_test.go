package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func serve(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestTokenBucket_LimitsAfterCapacity(t *testing.T) {
	_, rdb := setupTestRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, zap.NewNop()))
	e.GET("/v1/hotels", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/v1/hotels", "").Code)
	rec := serve(e, http.MethodGet, "/v1/hotels", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(e, http.MethodGet, "/v1/hotels", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too_many_requests")
}

func TestTokenBucket_RedisDownLetsRequestsThrough(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	mr.Close()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour, TTL: time.Hour}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, rdb, zap.NewNop()))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusNoContent, serve(e, http.MethodGet, "/", "").Code)
	}
}

func TestRedisCache_HitAfterMiss(t *testing.T) {
	_, rdb := setupTestRedis(t)
	cfg := config.CacheConfig{
		Enabled:     true,
		Methods:     map[string]bool{http.MethodGet: true},
		TTL:         time.Minute,
		KeyStrategy: "route_query",
		Prefix:      "cache",
	}
	calls := 0
	e := echo.New()
	e.GET("/v1/hotels/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id")})
	}, NewRedisCache(cfg, rdb, zap.NewNop()))
	e.GET("/v1/missing", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}, NewRedisCache(cfg, rdb, zap.NewNop()))

	rec := serve(e, http.MethodGet, "/v1/hotels/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	rec = serve(e, http.MethodGet, "/v1/hotels/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"id":"1"}`, rec.Body.String())
	assert.Equal(t, 1, calls)

	rec = serve(e, http.MethodGet, "/v1/hotels/2", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"id":"2"}`, rec.Body.String())
	assert.Equal(t, 2, calls)

	serve(e, http.MethodGet, "/v1/missing", "")
	rec = serve(e, http.MethodGet, "/v1/missing", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "errors are not cached")
	assert.Equal(t, 4, calls)
}

func TestRedisCache_DisabledWithoutRedis(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "x") },
		NewRedisCache(config.CacheConfig{Enabled: true}, nil, zap.NewNop()))

	rec := serve(e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)

	status, h, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestJWTAndCapabilities(t *testing.T) {
	const secret = "s3cret"
	e := echo.New()
	ok := func(c echo.Context) error {
		p, _ := PrincipalFrom(c)
		return c.String(http.StatusOK, string(p.Role))
	}
	e.GET("/book", ok, JWTAuth(secret), RequireCapability(model.CapBookRoom))
	e.GET("/finance", ok, JWTAuth(secret), RequireAnyCapability(model.CapViewFinance, model.CapViewAllFinance))
	e.GET("/naked", ok, RequireCapability(model.CapBookRoom))

	client, err := utils.NewAccessToken(secret, 1, model.RoleClient, 5)
	require.NoError(t, err)
	admin, err := utils.NewAccessToken(secret, 2, model.RoleHotelAdmin, 5)
	require.NoError(t, err)
	forged, err := utils.NewAccessToken("other", 1, model.RoleSystemAdmin, 5)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/book", client.Token).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/book", admin.Token).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/book", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/book", forged.Token).Code)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/finance", admin.Token).Code)
	assert.Equal(t, http.StatusForbidden, serve(e, http.MethodGet, "/finance", client.Token).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/naked", "").Code)
}

func TestUserIDForLogs(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "anon", userID(c))

	SetPrincipal(c, model.Principal{UserID: 42, Role: model.RoleClient})
	assert.Equal(t, "42", userID(c))
}

func TestTokenBucket_UserStrategyBehindIdentify(t *testing.T) {
	const secret = "s3cret"
	_, rdb := setupTestRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "user",
		Prefix:         "rl",
	}
	// same order as cmd/server: global Identify and limiter, JWTAuth per route
	e := echo.New()
	e.Use(Identify(secret))
	e.Use(NewTokenBucket(cfg, rdb, zap.NewNop()))
	e.GET("/v1/bookings", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, JWTAuth(secret))

	first, err := utils.NewAccessToken(secret, 1, model.RoleClient, 5)
	require.NoError(t, err)
	second, err := utils.NewAccessToken(secret, 2, model.RoleClient, 5)
	require.NoError(t, err)
	forged, err := utils.NewAccessToken("other", 3, model.RoleClient, 5)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/v1/bookings", first.Token).Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/v1/bookings", second.Token).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/v1/bookings", first.Token).Code)

	// an invalid token falls into the anonymous bucket and is still refused by JWTAuth
	assert.Equal(t, http.StatusUnauthorized, serve(e, http.MethodGet, "/v1/bookings", forged.Token).Code)
}
