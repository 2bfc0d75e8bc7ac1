package service

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderNumber_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{4}-\d{5}$`)

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		n, err := NewOrderNumber(now)
		require.NoError(t, err)
		assert.Regexp(t, pattern, n)
	}
}

func TestNewOrderNumber_UsesGivenYear(t *testing.T) {
	n, err := NewOrderNumber(time.Date(2031, time.December, 31, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "ORD-2031-", n[:9])
}

func TestNewOrderNumber_ZeroPadded(t *testing.T) {
	// The random component is uniform over [0,100000); sampling a
	// batch exercises the padding without depending on any one draw.
	now := time.Now()
	for i := 0; i < 200; i++ {
		n, err := NewOrderNumber(now)
		require.NoError(t, err)
		assert.Len(t, n, len(fmt.Sprintf("ORD-%d-00000", now.Year())))
	}
}
