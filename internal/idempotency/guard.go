package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"course-checkout-api/internal/constant"
	rediskey "course-checkout-api/internal/types/redis-key"
)

const (
	inFlight = "__inflight__"

	// 占用期只需覆盖一次下单的上游耗时；进程崩溃后最多锁这么久
	defaultInFlightTTL = 2 * time.Minute
)

// Guard 基于 Redis 的请求去重；Redis 不可用时放行
// 占用时用较短的 inFlightTTL，Complete 后按 ttl 保存响应
type Guard struct {
	rdb         *redis.Client
	ttl         time.Duration
	inFlightTTL time.Duration
	log         logrus.FieldLogger
}

func NewGuard(rdb *redis.Client, ttl time.Duration, log logrus.FieldLogger) *Guard {
	inflight := defaultInFlightTTL
	if ttl > 0 && ttl < inflight {
		inflight = ttl
	}
	return &Guard{rdb: rdb, ttl: ttl, inFlightTTL: inflight, log: log}
}

// WithInFlightTTL 覆盖占用期，不超过 ttl
func (g *Guard) WithInFlightTTL(d time.Duration) *Guard {
	if d > 0 && (g.ttl <= 0 || d <= g.ttl) {
		g.inFlightTTL = d
	}
	return g
}

func (g *Guard) enabled() bool { return g != nil && g.rdb != nil }

// Claim 占用去重键。
// 返回 (nil, nil) 表示占用成功；返回缓存的响应表示重复请求已完成；
// 仍在处理中返回 conflict 错误。
func (g *Guard) Claim(ctx context.Context, key string) ([]byte, error) {
	if !g.enabled() || key == "" {
		return nil, nil
	}
	k := rediskey.CheckoutDedup(key)
	ok, err := g.rdb.SetNX(ctx, k, inFlight, g.inFlightTTL).Result()
	if err != nil {
		g.log.WithError(err).Warn("[Dedup] redis 不可用，跳过去重")
		return nil, nil
	}
	if ok {
		return nil, nil
	}

	val, err := g.rdb.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		// 刚好过期，重新抢一次
		if ok, err := g.rdb.SetNX(ctx, k, inFlight, g.inFlightTTL).Result(); err == nil && ok {
			return nil, nil
		}
		return nil, constant.NewError(constant.KindConflict, constant.MsgDuplicateRequest)
	}
	if err != nil {
		g.log.WithError(err).Warn("[Dedup] redis 读取失败，跳过去重")
		return nil, nil
	}
	if string(val) == inFlight {
		return nil, constant.NewError(constant.KindConflict, constant.MsgDuplicateRequest)
	}
	return val, nil
}

// Complete 保存最终响应，后续相同请求直接回放
func (g *Guard) Complete(ctx context.Context, key string, response []byte) {
	if !g.enabled() || key == "" {
		return
	}
	if err := g.rdb.Set(ctx, rediskey.CheckoutDedup(key), response, g.ttl).Err(); err != nil {
		g.log.WithError(err).Warn("[Dedup] 保存响应失败")
	}
}

// Release 失败时释放，允许重试
func (g *Guard) Release(ctx context.Context, key string) {
	if !g.enabled() || key == "" {
		return
	}
	if err := g.rdb.Del(ctx, rediskey.CheckoutDedup(key)).Err(); err != nil {
		g.log.WithError(err).Warn("[Dedup] 释放失败")
	}
}

// MarkEvent 首次见到该回调事件返回 true；Redis 不可用时也返回 true
func (g *Guard) MarkEvent(ctx context.Context, eventID string, ttl time.Duration) bool {
	if !g.enabled() || eventID == "" {
		return true
	}
	ok, err := g.rdb.SetNX(ctx, rediskey.WebhookEvent(eventID), time.Now().Unix(), ttl).Result()
	if err != nil {
		g.log.WithError(err).Warn("[Dedup] 回调标记失败")
		return true
	}
	return ok
}

// UnmarkEvent 处理失败时删除标记，允许网关重投
func (g *Guard) UnmarkEvent(ctx context.Context, eventID string) {
	if !g.enabled() || eventID == "" {
		return
	}
	_ = g.rdb.Del(ctx, rediskey.WebhookEvent(eventID)).Err()
}
