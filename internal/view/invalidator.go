// Package view implements the view invalidation contract: after a
// mutation, the caller names the logical routes whose cached
// responses are stale and the invalidator drops them from Redis. The
// cache middleware indexes every cached response key under a per-route
// set, so invalidation is a set read plus a bulk delete rather than a
// keyspace scan.
package view

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Logical routes used across the service. They match the echo route
// patterns the cache middleware sees, so invalidating CarDetail drops
// every cached car detail page.
const (
	Cars         = "/v1/cars"
	CarDetail    = "/v1/cars/:slug"
	Favorites    = "/v1/favorites"
	Reservations = "/v1/reservations"
)

// RouteSetKey returns the Redis set that indexes cached response keys
// for a route. Shared with the cache middleware.
func RouteSetKey(prefix, route string) string {
	return prefix + ":routes:" + route
}

// Invalidator drops cached responses for logical routes. A nil
// Invalidator or nil Redis client disables invalidation, which keeps
// the mutation path working when caching is off.
type Invalidator struct {
	rdb    *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewInvalidator builds an Invalidator over the given Redis client.
// The prefix must match the cache middleware's key prefix.
func NewInvalidator(rdb *redis.Client, prefix string, logger zerolog.Logger) *Invalidator {
	return &Invalidator{rdb: rdb, prefix: prefix, logger: logger.With().Str("component", "view-invalidator").Logger()}
}

// Invalidate removes all cached responses recorded under each route.
// Failures are logged and swallowed: the mutation has already
// committed and stale cache entries expire on their own TTL anyway.
func (i *Invalidator) Invalidate(ctx context.Context, routes ...string) {
	if i == nil || i.rdb == nil {
		return
	}
	for _, route := range routes {
		setKey := RouteSetKey(i.prefix, route)
		keys, err := i.rdb.SMembers(ctx, setKey).Result()
		if err != nil {
			i.logger.Warn().Err(err).Str("route", route).Msg("failed to read cached keys for route")
			continue
		}
		if len(keys) > 0 {
			if err := i.rdb.Del(ctx, keys...).Err(); err != nil {
				i.logger.Warn().Err(err).Str("route", route).Msg("failed to drop cached responses")
				continue
			}
		}
		if err := i.rdb.Del(ctx, setKey).Err(); err != nil {
			i.logger.Warn().Err(err).Str("route", route).Msg("failed to drop route index")
		}
	}
}
