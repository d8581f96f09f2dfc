package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awidjaja/tripplanner/internal/models"
)

func TestGenerateKey(t *testing.T) {
	q := models.TripQuery{DestinationCity: "Paris", DepartureDate: "2026-09-10"}

	key := generateKey(q)
	assert.True(t, strings.HasPrefix(key, "tripplan:"))
	assert.Equal(t, key, generateKey(q), "same query must hash to the same key")

	other := q
	other.DestinationCity = "Rome"
	assert.NotEqual(t, key, generateKey(other))
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()
	q := models.TripQuery{DestinationCity: "Paris"}

	require.NoError(t, c.Set(ctx, q, []byte(`{}`)))
	_, found := c.Get(ctx, q)
	assert.False(t, found)
	assert.NoError(t, c.Close())
}
