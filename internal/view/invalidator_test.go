package view

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRouteSetKey(t *testing.T) {
	assert.Equal(t, "cache:routes:/v1/cars", RouteSetKey("cache", Cars))
	assert.Equal(t, "cache:routes:/v1/cars/:slug", RouteSetKey("cache", CarDetail))
}

func TestInvalidate_NilSafe(t *testing.T) {
	// Mutations must keep working when caching is disabled; neither a
	// nil invalidator nor one without a Redis client may panic.
	var nilInv *Invalidator
	nilInv.Invalidate(context.Background(), Cars)

	inv := NewInvalidator(nil, "cache", zerolog.Nop())
	inv.Invalidate(context.Background(), Cars, CarDetail)
}
