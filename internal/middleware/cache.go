package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/ozautos/car-marketplace/internal/config"
    "github.com/ozautos/car-marketplace/internal/view"
)

// captureWriter captures the response body and status while
// forwarding to the client, bounded by limit.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
    cw.status = code
    cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
    if remain := cw.limit - cw.size; remain > 0 {
        if int64(len(b)) <= remain {
            cw.buf.Write(b)
        } else {
            cw.buf.Write(b[:remain])
        }
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// cachedResponse is the stored representation of a response: status,
// headers and body, JSON encoded. Headers are kept so clients see the
// same content type and formatting on a hit as on the original.
type cachedResponse struct {
    Status int         `json:"status"`
    Header http.Header `json:"header"`
    Body   []byte      `json:"body"`
}

// cacheKey hashes the concrete request path + raw query under the
// configured prefix. The concrete path keeps every slug and order
// number on its own entry; the route pattern is used only for the
// per-route invalidation set index.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
    tail := c.Request().URL.Path + "?" + c.Request().URL.RawQuery
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// NewRedisCache returns a response-caching middleware over Redis.
// Every stored key is also added to the set for its route
// (view.RouteSetKey) so the view invalidator can drop a whole logical
// route after a mutation instead of waiting for TTL expiry.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return next(c)
            }

            ctx := c.Request().Context()
            key := cacheKey(cfg, c)

            if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
                var cached cachedResponse
                if err := json.Unmarshal(raw, &cached); err == nil {
                    for k, vals := range cached.Header {
                        if strings.EqualFold(k, "Content-Length") {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(cached.Status)
                    if len(cached.Body) > 0 {
                        _, _ = c.Response().Write(cached.Body)
                    }
                    return nil
                }
            }

            cw := &captureWriter{
                ResponseWriter: c.Response().Writer,
                status:         http.StatusOK,
                limit:          int64(cfg.MaxBodyBytes),
            }
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            // Only complete 200 responses are cached; a truncated
            // capture means the body exceeded the configured bound.
            if cw.status == http.StatusOK && cw.size <= cw.limit {
                hdr := make(http.Header, len(c.Response().Header()))
                for k, vals := range c.Response().Header() {
                    vv := make([]string, len(vals))
                    copy(vv, vals)
                    hdr[k] = vv
                }
                payload, err := json.Marshal(cachedResponse{Status: cw.status, Header: hdr, Body: cw.buf.Bytes()})
                if err == nil {
                    bg := context.Background()
                    pipe := rdb.Pipeline()
                    pipe.SetEx(bg, key, payload, cfg.TTL)
                    pipe.SAdd(bg, view.RouteSetKey(cfg.Prefix, c.Path()), key)
                    _, _ = pipe.Exec(bg)
                }
            }
            return nil
        }
    }
}
