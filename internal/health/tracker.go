package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"course-checkout-api/internal/notify"
	rediskey "course-checkout-api/internal/types/redis-key"
)

const (
	UpstreamGateway   = "asaas"
	UpstreamDataStore = "supabase"
)

// Tracker 记录上游调用成功率，低于阈值时告警（不熔断）。
// 多实例共享 Redis 中的成功率；读改写不加锁，并发下以最后一次写入为准。
type Tracker struct {
	rdb       *redis.Client
	strategy  SuccessRateStrategy
	threshold float64
	ttl       time.Duration
	notifier  notify.Notifier
	log       logrus.FieldLogger
	names     []string

	mu        sync.Mutex
	local     map[string]float64   // Redis 不可用时使用
	lastAlert map[string]time.Time // 同上
}

func NewTracker(rdb *redis.Client, strategy SuccessRateStrategy, threshold float64, ttl time.Duration,
	notifier notify.Notifier, log logrus.FieldLogger, names ...string) *Tracker {
	if strategy == nil {
		strategy = NewStrategy("")
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Tracker{
		rdb: rdb, strategy: strategy, threshold: threshold, ttl: ttl,
		notifier: notifier, log: log, names: names,
		local:     make(map[string]float64),
		lastAlert: make(map[string]time.Time),
	}
}

// Observe 记录一次调用结果
func (t *Tracker) Observe(ctx context.Context, upstream string, success bool) {
	if t == nil {
		return
	}
	rate := t.strategy.Update(t.Rate(ctx, upstream), success)
	t.store(ctx, upstream, rate)
	if rate < t.threshold && t.claimAlert(ctx, upstream) {
		t.log.WithFields(logrus.Fields{"upstream": upstream, "rate": rate}).Warn("[Health] 上游成功率过低")
		t.notifier.Alert(notify.Alert{
			Level: notify.LevelWarn,
			Title: "Upstream degradado",
			Extra: map[string]string{
				"upstream":  upstream,
				"rate":      fmt.Sprintf("%.1f", rate),
				"threshold": fmt.Sprintf("%.1f", t.threshold),
			},
		})
	}
}

// Rate 当前成功率，没有记录时为 100
func (t *Tracker) Rate(ctx context.Context, upstream string) float64 {
	if t.rdb != nil {
		v, err := t.rdb.Get(ctx, rediskey.UpstreamRate(upstream)).Float64()
		if err == nil {
			return v
		}
		if err == redis.Nil {
			return 100
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.local[upstream]; ok {
		return v
	}
	return 100
}

// Snapshot /healthz 展示用
func (t *Tracker) Snapshot(ctx context.Context) map[string]float64 {
	if t == nil {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(t.names))
	for _, n := range t.names {
		out[n] = t.Rate(ctx, n)
	}
	return out
}

func (t *Tracker) store(ctx context.Context, upstream string, rate float64) {
	if t.rdb != nil {
		if err := t.rdb.Set(ctx, rediskey.UpstreamRate(upstream), rate, t.ttl).Err(); err == nil {
			return
		}
	}
	t.mu.Lock()
	t.local[upstream] = rate
	t.mu.Unlock()
}

// claimAlert TTL 内每个上游只告警一次
func (t *Tracker) claimAlert(ctx context.Context, upstream string) bool {
	if t.rdb != nil {
		ok, err := t.rdb.SetNX(ctx, rediskey.UpstreamDegraded(upstream), 1, t.ttl).Result()
		if err == nil {
			return ok
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if last, ok := t.lastAlert[upstream]; ok && time.Since(last) < t.ttl {
		return false
	}
	t.lastAlert[upstream] = time.Now()
	return true
}
