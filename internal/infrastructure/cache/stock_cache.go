// Package cache caché de lectura de existencias sobre Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/pkg/config"
)

var _ inventory.StockCache = (*StockCache)(nil)

// DefaultTTL vida de una existencia en caché si no se configura otra.
const DefaultTTL = 30 * time.Second

// versionTTL vida de la generación de una llave. Si expira durante una lectura, Fill no escribe.
const versionTTL = 24 * time.Hour

// fillScript escribe KEYS[1] solo si la generación KEYS[2] sigue valiendo ARGV[1].
var fillScript = redis.NewScript(`
local v = redis.call('GET', KEYS[2])
if (v or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// StockCache cache-aside: se llena al leer y se borra después de cada commit que toca la llave.
// Invalidate avanza la generación de la llave, así una lectura iniciada antes del commit
// no puede volver a escribir su valor viejo.
type StockCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewStockCache construye la caché. ttl <= 0 usa DefaultTTL.
func NewStockCache(client *redis.Client, ttl time.Duration, prefix string) *StockCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "inventario"
	}
	return &StockCache{client: client, ttl: ttl, prefix: prefix}
}

// NewClient crea el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar redis: %w", err)
	}
	return client, nil
}

func (c *StockCache) key(k entity.StockKey) string {
	return c.prefix + ":stock:" + k.String()
}

func (c *StockCache) versionKey(k entity.StockKey) string {
	return c.prefix + ":stockver:" + k.String()
}

// Get devuelve ok=false si la llave no está en caché.
func (c *StockCache) Get(ctx context.Context, k entity.StockKey) (int64, bool, error) {
	val, err := c.client.Get(ctx, c.key(k)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("leer caché: %w", err)
	}
	qty, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("valor de caché inválido %q: %w", val, err)
	}
	return qty, true, nil
}

// Version devuelve la generación actual de la llave (0 si nunca se invalidó).
func (c *StockCache) Version(ctx context.Context, k entity.StockKey) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey(k)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("leer generación de caché: %w", err)
	}
	return v, nil
}

// Fill guarda la cantidad con TTL si la generación sigue siendo version.
func (c *StockCache) Fill(ctx context.Context, k entity.StockKey, qty, version int64) (bool, error) {
	ttl := max(c.ttl.Milliseconds(), 1)
	n, err := fillScript.Run(ctx, c.client,
		[]string{c.key(k), c.versionKey(k)},
		strconv.FormatInt(version, 10), qty, ttl,
	).Int()
	if err != nil {
		return false, fmt.Errorf("escribir caché: %w", err)
	}
	return n == 1, nil
}

// Invalidate avanza la generación y borra el valor de cada llave, en una sola transacción.
func (c *StockCache) Invalidate(ctx context.Context, keys ...entity.StockKey) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, k := range keys {
			vk := c.versionKey(k)
			pipe.Incr(ctx, vk)
			pipe.Expire(ctx, vk, versionTTL)
			pipe.Del(ctx, c.key(k))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidar caché: %w", err)
	}
	return nil
}
