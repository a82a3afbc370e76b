package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/divinecircle/poojabook/config"
	"github.com/divinecircle/poojabook/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client  *redis.Client
	viewTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, viewTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:  redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		viewTTL: viewTTL,
	}
}

func (c *RedisCache) GetMonthView(ctx context.Context, year, month int) (*domain.MonthView, error) {
	data, err := c.client.Get(ctx, monthKey(year, month)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var view domain.MonthView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *RedisCache) SetMonthView(ctx context.Context, year, month int, view *domain.MonthView) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, monthKey(year, month), payload, c.viewTTL).Err()
}

func (c *RedisCache) InvalidateMonth(ctx context.Context, year, month int) error {
	return c.client.Del(ctx, monthKey(year, month)).Err()
}

func monthKey(year, month int) string {
	return fmt.Sprintf("cache:events:%04d-%02d", year, month)
}
