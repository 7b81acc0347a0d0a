package services

import (
	"context"
	"testing"
	"time"

	"food-truck/db"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisBasketStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisBasketStore(client, ttl)
}

func fixedClock(t *testing.T, ms int64) {
	t.Helper()
	prev := nowMillis
	nowMillis = func() int64 { return ms }
	t.Cleanup(func() { nowMillis = prev })
}

func TestRedisBasketStore_LoadEmpty(t *testing.T) {
	_, store := setupRedisStore(t, 0)
	b, err := store.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, b.Items)
	assert.NotNil(t, b.Items)
	assert.Nil(t, b.RestaurantID)
	assert.Zero(t, b.Updated)
}

func TestRedisBasketStore_AddAndLoad(t *testing.T) {
	mr, store := setupRedisStore(t, time.Hour)
	fixedClock(t, 1700000000000)
	ctx := context.Background()

	_, err := AddToBasket(ctx, store, "b1", 2, "MacFries", "3.49 dollars")
	require.NoError(t, err)
	_, err = AddToBasket(ctx, store, "b1", 2, "MacFries", "3.49 dollars")
	require.NoError(t, err)

	b, err := store.Load(ctx, "b1")
	require.NoError(t, err)
	require.NotNil(t, b.RestaurantID)
	assert.Equal(t, int64(2), *b.RestaurantID)
	assert.Len(t, b.Items, 2)
	assert.Equal(t, int64(1700000000000), b.Updated)

	raw, err := mr.Get("basket:b1:items")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title":"MacFries","price":"3.49 dollars"},{"title":"MacFries","price":"3.49 dollars"}]`, raw)
	assert.Equal(t, time.Hour, mr.TTL("basket:b1:items"))
}

func TestRedisBasketStore_UpdateAndClear(t *testing.T) {
	mr, store := setupRedisStore(t, 0)
	ctx := context.Background()

	_, err := AddToBasket(ctx, store, "b2", 1, "Coke", "19 dollars")
	require.NoError(t, err)
	b, err := UpdateBasket(ctx, store, "b2", func(e []BasketEntry) []BasketEntry { return Increase(e, "Coke") })
	require.NoError(t, err)
	assert.Equal(t, 2, Count(Group(b.Items)))

	fixedClock(t, 42)
	require.NoError(t, store.Clear(ctx, "b2"))
	assert.False(t, mr.Exists("basket:b2:items"))
	assert.False(t, mr.Exists("basket:b2:restaurant_id"))

	b, err = store.Load(ctx, "b2")
	require.NoError(t, err)
	assert.Empty(t, b.Items)
	assert.Nil(t, b.RestaurantID)
	assert.Equal(t, int64(42), b.Updated)
}

func TestRedisBasketStore_CorruptItems(t *testing.T) {
	mr, store := setupRedisStore(t, 0)
	require.NoError(t, mr.Set("basket:bad:items", "not json"))
	_, err := store.Load(context.Background(), "bad")
	assert.Error(t, err)
}

func TestAddToBasketValidation(t *testing.T) {
	_, store := setupRedisStore(t, 0)
	ctx := context.Background()
	_, err := AddToBasket(ctx, store, "b", 1, "", "1")
	assert.Error(t, err)
	_, err = AddToBasket(ctx, store, "b", 0, "Coke", "1")
	assert.Error(t, err)
}

func TestAddToBasketSwitchesRestaurant(t *testing.T) {
	_, store := setupRedisStore(t, 0)
	ctx := context.Background()
	_, err := AddToBasket(ctx, store, "b", 1, "Coke", "19 dollars")
	require.NoError(t, err)
	b, err := AddToBasket(ctx, store, "b", 2, "MacFries", "3.49 dollars")
	require.NoError(t, err)
	assert.Equal(t, int64(2), *b.RestaurantID)
	assert.Len(t, b.Items, 2)
}

// Integration test (requires DB). Skips if db.Pool is nil or -short.
func TestPostgresBasketStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping basket store integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping basket store integration test: no DB pool")
	}
	ctx := context.Background()
	const id = "00000000-0000-4000-8000-00000000b45e"
	defer db.Pool.Exec(ctx, `DELETE FROM baskets WHERE basket_id = $1`, id)
	var store PostgresBasketStore

	b, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, b.Items)
	assert.Nil(t, b.RestaurantID)

	fixedClock(t, 1000)
	_, err = AddToBasket(ctx, store, id, 2, "MacFries", "3.49 dollars")
	require.NoError(t, err)
	_, err = AddToBasket(ctx, store, id, 2, "MacNuggets", "5.59 dollars")
	require.NoError(t, err)

	fixedClock(t, 2000)
	_, err = UpdateBasket(ctx, store, id, func(e []BasketEntry) []BasketEntry { return Increase(e, "MacFries") })
	require.NoError(t, err)
	_, err = UpdateBasket(ctx, store, id, func(e []BasketEntry) []BasketEntry { return Decrease(e, "MacNuggets") })
	require.NoError(t, err)

	b, err = store.Load(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, b.RestaurantID)
	assert.Equal(t, int64(2), *b.RestaurantID)
	assert.Equal(t, int64(2000), b.Updated)
	assert.Equal(t, []BasketEntry{
		{Title: "MacFries", Price: "3.49 dollars", Quantity: 2},
		{Title: "MacNuggets", Price: "5.59 dollars", Quantity: 1},
	}, Group(b.Items))

	fixedClock(t, 3000)
	require.NoError(t, store.Clear(ctx, id))
	b, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, b.Items)
	assert.Nil(t, b.RestaurantID)
	assert.Equal(t, int64(3000), b.Updated)
}
