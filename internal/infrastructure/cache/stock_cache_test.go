package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-tienda/pkg/config"
)

func newCache(t *testing.T, ttl time.Duration) (*cache.StockCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewStockCache(client, ttl, "test"), mr
}

// fill llena la llave con la generación vigente.
func fill(t *testing.T, c *cache.StockCache, key entity.StockKey, qty int64) {
	t.Helper()
	ctx := context.Background()
	version, err := c.Version(ctx, key)
	require.NoError(t, err)
	stored, err := c.Fill(ctx, key, qty, version)
	require.NoError(t, err)
	require.True(t, stored)
}

func TestStockCache_GetSet(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	ctx := context.Background()
	key := entity.StockKey{ProductID: "camisa", LocationID: "bodega"}

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "llave ausente es un fallo de caché, no un error")

	fill(t, c, key, 42)
	qty, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), qty)

	assert.True(t, mr.Exists(`test:stock:"camisa"/"bodega"`))
	assert.Equal(t, time.Minute, mr.TTL(`test:stock:"camisa"/"bodega"`))
}

func TestStockCache_CeroEsUnValorValido(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()
	key := entity.StockKey{ProductID: "gorra", LocationID: "piso"}

	fill(t, c, key, 0)
	qty, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, qty)
}

func TestStockCache_TTLExpira(t *testing.T) {
	c, mr := newCache(t, 10*time.Second)
	ctx := context.Background()
	key := entity.StockKey{ProductID: "camisa", LocationID: "piso"}

	fill(t, c, key, 3)
	mr.FastForward(11 * time.Second)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStockCache_Invalidate(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	ctx := context.Background()
	a := entity.StockKey{ProductID: "camisa", LocationID: "bodega"}
	b := entity.StockKey{ProductID: "camisa", LocationID: "piso"}
	other := entity.StockKey{ProductID: "gorra", LocationID: "piso"}
	for _, k := range []entity.StockKey{a, b, other} {
		fill(t, c, k, 1)
	}

	require.NoError(t, c.Invalidate(ctx, a, b))
	require.NoError(t, c.Invalidate(ctx))

	assert.False(t, mr.Exists(`test:stock:"camisa"/"bodega"`))
	assert.False(t, mr.Exists(`test:stock:"camisa"/"piso"`))
	assert.True(t, mr.Exists(`test:stock:"gorra"/"piso"`))
}

func TestStockCache_InvalidacionDuranteLecturaNoSeSobrescribe(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	ctx := context.Background()
	key := entity.StockKey{ProductID: "camisa", LocationID: "bodega"}

	// Una lectura toma la generación, el commit invalida y luego la lectura intenta llenar.
	version, err := c.Version(ctx, key)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, key))

	stored, err := c.Fill(ctx, key, 50, version)
	require.NoError(t, err)
	assert.False(t, stored, "el valor previo al commit no debe volver a la caché")
	assert.False(t, mr.Exists(`test:stock:"camisa"/"bodega"`))

	next, err := c.Version(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, version+1, next)

	stored, err = c.Fill(ctx, key, 30, next)
	require.NoError(t, err)
	assert.True(t, stored)
	qty, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(30), qty)
}

func TestStockCache_LlavesConSeparadoresNoColisionan(t *testing.T) {
	c, _ := newCache(t, time.Minute)
	ctx := context.Background()
	a := entity.StockKey{ProductID: "a:b", LocationID: "c"}
	b := entity.StockKey{ProductID: "a", LocationID: "b:c"}

	fill(t, c, a, 1)
	fill(t, c, b, 2)

	qty, _, err := c.Get(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(1), qty)
	qty, _, err = c.Get(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(2), qty)
}

func TestStockCache_ValorCorrupto(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	require.NoError(t, mr.Set(`test:stock:"camisa"/"bodega"`, "muchas"))

	_, _, err := c.Get(context.Background(), entity.StockKey{ProductID: "camisa", LocationID: "bodega"})
	assert.Error(t, err)
}

func TestStockCache_ErrorDeConexion(t *testing.T) {
	c, mr := newCache(t, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background(), entity.StockKey{ProductID: "camisa", LocationID: "bodega"})
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := cache.NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	_ = client.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = cache.NewClient(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestNewStockCache_Defaults(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	c := cache.NewStockCache(client, 0, "")

	fill(t, c, entity.StockKey{ProductID: "p", LocationID: "l"}, 1)
	assert.True(t, mr.Exists(`inventario:stock:"p"/"l"`))
	assert.Equal(t, cache.DefaultTTL, mr.TTL(`inventario:stock:"p"/"l"`))
}
