package dal

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"course-checkout-api/internal/config"
)

// NewRedis 未配置 addr 时返回 nil（去重、缓存随之关闭）
func NewRedis(c config.RedisCfg) (*redis.Client, error) {
	if c.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
