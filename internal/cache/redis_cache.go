package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Wesllen-Vinicius/controle-producao-sub001/internal/domain"
)

const balancesKey = "inventory:balances"

type RedisBalanceCache struct {
	client *redis.Client
}

func NewRedisBalanceCache(addr string, password string, db int) *RedisBalanceCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisBalanceCache{client: client}
}

func (c *RedisBalanceCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisBalanceCache) Close() error {
	return c.client.Close()
}

func (c *RedisBalanceCache) Get(ctx context.Context) ([]domain.Balance, bool, error) {
	val, err := c.client.Get(ctx, balancesKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var balances []domain.Balance
	if err := json.Unmarshal([]byte(val), &balances); err != nil {
		return nil, false, err
	}
	return balances, true, nil
}

func (c *RedisBalanceCache) Set(ctx context.Context, balances []domain.Balance, ttl time.Duration) error {
	if balances == nil {
		return nil
	}
	payload, err := json.Marshal(balances)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, balancesKey, payload, ttl).Err()
}

func (c *RedisBalanceCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, balancesKey).Err()
}
