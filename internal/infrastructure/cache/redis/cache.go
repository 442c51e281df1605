// internal/infrastructure/cache/redis/cache.go
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crypto-signal-trading-bot/internal/types"

	"github.com/go-redis/redis/v8"
)

// TTL кэша. Цены живут недолго, сигналы — до следующего цикла.
const (
	priceTTL   = 2 * time.Minute
	signalsTTL = 30 * time.Minute
)

type Cache struct {
	client *redis.Client
	prefix string
}

func NewCache(addr, password string, db int) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		prefix: "signalbot:",
	}
}

// Ping проверяет доступность Redis
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close закрывает соединение с Redis
func (c *Cache) Close() error {
	return c.client.Close()
}

// Set устанавливает значение в Redis с TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	fullKey := c.prefix + key

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, fullKey, data, ttl).Err()
}

// Get получает значение из Redis
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	fullKey := c.prefix + key

	data, err := c.client.Get(ctx, fullKey).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), dest)
}

// Delete удаляет ключ из Redis
func (c *Cache) Delete(ctx context.Context, key string) error {
	fullKey := c.prefix + key
	return c.client.Del(ctx, fullKey).Err()
}

// SetPrice кэширует текущую цену символа.
// Реализует market.PriceCacheSetter для вотчера тикеров.
func (c *Cache) SetPrice(symbol string, price float64) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := fmt.Sprintf("price:%s", symbol)
	if err := c.Set(ctx, key, price, priceTTL); err != nil {
		// Кэш цен best-effort: пропущенное обновление перезапишет следующее
		return
	}
}

// GetPrice возвращает закэшированную цену символа
func (c *Cache) GetPrice(ctx context.Context, symbol string) (float64, error) {
	key := fmt.Sprintf("price:%s", symbol)

	var price float64
	if err := c.Get(ctx, key, &price); err != nil {
		return 0, err
	}
	return price, nil
}

// SetPrices кэширует пакет цен
func (c *Cache) SetPrices(ctx context.Context, prices map[string]float64) error {
	for symbol, price := range prices {
		key := fmt.Sprintf("price:%s", symbol)
		if err := c.Set(ctx, key, price, priceTTL); err != nil {
			return err
		}
	}
	return nil
}

// SetLatestSignals кэширует сигналы последнего цикла
func (c *Cache) SetLatestSignals(ctx context.Context, signals []types.FusedSignal) error {
	return c.Set(ctx, "signals:latest", signals, signalsTTL)
}

// GetLatestSignals возвращает сигналы последнего цикла
func (c *Cache) GetLatestSignals(ctx context.Context) ([]types.FusedSignal, error) {
	var signals []types.FusedSignal
	if err := c.Get(ctx, "signals:latest", &signals); err != nil {
		return nil, err
	}
	return signals, nil
}
