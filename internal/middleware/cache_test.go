package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozautos/car-marketplace/internal/config"
	"github.com/ozautos/car-marketplace/internal/view"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func newTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestCacheKey_DistinctPerConcretePath(t *testing.T) {
	cfg := testCacheConfig()
	e := echo.New()

	keyFor := func(target string) string {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/cars/:slug")
		return cacheKey(cfg, c)
	}

	camry := keyFor("/v1/cars/2021-toyota-camry")
	mazda := keyFor("/v1/cars/2019-mazda-cx5")

	// Two cars sharing one route pattern must never share an entry;
	// the same goes for two order confirmations.
	assert.NotEqual(t, camry, mazda)
	assert.Equal(t, camry, keyFor("/v1/cars/2021-toyota-camry"), "same path is stable")

	withQuery := keyFor("/v1/cars/2021-toyota-camry?x=1")
	assert.NotEqual(t, camry, withQuery, "query string discriminates")
}

func TestRedisCache_ServesPerPathAndInvalidates(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := testCacheConfig()

	hits := 0
	e := echo.New()
	e.GET("/v1/cars/:slug", func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusOK, echo.Map{"slug": c.Param("slug")})
	}, NewRedisCache(cfg, rdb))

	get := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	// First request misses and populates the cache.
	rec := get("/v1/cars/2021-toyota-camry")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "2021-toyota-camry")
	assert.Equal(t, 1, hits)

	// Second request is served from Redis without reaching the handler.
	rec = get("/v1/cars/2021-toyota-camry")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "2021-toyota-camry")
	assert.Equal(t, 1, hits)

	// A different car on the same route gets its own entry and its
	// own body, never the first car's.
	rec = get("/v1/cars/2019-mazda-cx5")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "2019-mazda-cx5")
	assert.NotContains(t, rec.Body.String(), "2021-toyota-camry")
	assert.Equal(t, 2, hits)

	rec = get("/v1/cars/2019-mazda-cx5")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "2019-mazda-cx5")
	assert.Equal(t, 2, hits)

	// Invalidating the logical route drops every entry indexed under
	// it, so both cars are recomputed afterwards.
	inv := view.NewInvalidator(rdb, cfg.Prefix, zerolog.Nop())
	inv.Invalidate(context.Background(), "/v1/cars/:slug")

	rec = get("/v1/cars/2021-toyota-camry")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 3, hits)
	rec = get("/v1/cars/2019-mazda-cx5")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 4, hits)
}

func TestRedisCache_SkipsUncachedMethods(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := testCacheConfig()

	hits := 0
	e := echo.New()
	e.POST("/v1/cars/:slug", func(c echo.Context) error {
		hits++
		return c.NoContent(http.StatusNoContent)
	}, NewRedisCache(cfg, rdb))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/cars/2021-toyota-camry", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Equal(t, 2, hits)
}

func TestRedisCache_DoesNotCacheErrors(t *testing.T) {
	rdb := newTestRedis(t)
	cfg := testCacheConfig()

	hits := 0
	e := echo.New()
	e.GET("/v1/cars/:slug", func(c echo.Context) error {
		hits++
		return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
	}, NewRedisCache(cfg, rdb))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/cars/nope", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNotFound, rec.Code)
	}
	assert.Equal(t, 2, hits, "non-200 responses are recomputed every time")
}
