package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/product-service/internal/domain"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ProductCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewProductCache(client, ttl), mr
}

func TestProductCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	got, gen, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, gen)

	product := &domain.Product{
		ID:          "p1",
		OwnerID:     "a1",
		Name:        "Widget",
		Description: "blue",
		Price:       9.99,
		CreatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, c.Fill(ctx, product, gen))
	assert.True(t, mr.Exists("product:p1"))
	assert.Equal(t, time.Minute, mr.TTL("product:p1"))

	got, _, err = c.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, product.Name, got.Name)
	assert.Equal(t, product.OwnerID, got.OwnerID)
	assert.Equal(t, product.Price, got.Price)
	assert.True(t, product.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, c.Invalidate(ctx, "p1"))
	got, gen, err = c.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int64(1), gen)
	assert.Equal(t, generationTTL, mr.TTL("product-gen:p1"))
}

func TestProductCacheSkipsFillAfterInvalidation(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, seen, err := c.Get(ctx, "p1")
	require.NoError(t, err)

	// the row changes and is invalidated while the reader holds the old copy
	require.NoError(t, c.Invalidate(ctx, "p1"))

	require.NoError(t, c.Fill(ctx, &domain.Product{ID: "p1", Name: "old", Price: 1}, seen))
	assert.False(t, mr.Exists("product:p1"))

	_, current, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	require.NoError(t, c.Fill(ctx, &domain.Product{ID: "p1", Name: "new", Price: 1}, current))

	got, _, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.Name)
}

func TestProductCacheExpires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Fill(ctx, &domain.Product{ID: "p1", Price: 1}, 0))
	mr.FastForward(2 * time.Minute)

	got, _, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProductCacheDropsCorruptEntries(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set("product:p1", "{not json"))

	got, _, err := c.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("product:p1"))
}

func TestProductCacheRejectsCorruptGeneration(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set("product-gen:p1", "abc"))

	_, _, err := c.Get(context.Background(), "p1")
	assert.Error(t, err)
}

func TestProductCacheDefaultTTL(t *testing.T) {
	c, mr := newTestCache(t, 0)
	require.NoError(t, c.Fill(context.Background(), &domain.Product{ID: "p1", Price: 1}, 0))
	assert.Equal(t, DefaultProductTTL, mr.TTL("product:p1"))
}

func TestProductCacheReportsUnreachableRedis(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	mr.Close()
	_, _, err := c.Get(ctx, "p1")
	assert.Error(t, err)
	assert.Error(t, c.Fill(ctx, &domain.Product{ID: "p1", Price: 1}, 0))
	assert.Error(t, c.Invalidate(ctx, "p1"))
}
