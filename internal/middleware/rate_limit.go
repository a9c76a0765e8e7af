package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/utils"
)

type ipLimiter struct {
	limiter *rate.Limiter
	last    time.Time
}

// IPRateLimiter 按客户端 IP 限流，闲置超过 idle 的条目会被清理
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	rps      rate.Limit
	burst    int
	idle     time.Duration
}

func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &IPRateLimiter{
		limiters: make(map[string]*ipLimiter),
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     30 * time.Minute,
	}
}

func (l *IPRateLimiter) Allow(ip string) bool {
	now := time.Now()
	l.mu.Lock()
	il, ok := l.limiters[ip]
	if !ok {
		il = &ipLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = il
	}
	il.last = now
	l.mu.Unlock()
	return il.limiter.AllowN(now, 1)
}

// Cleanup 删除闲置条目，由后台定时调用
func (l *IPRateLimiter) Cleanup() {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, il := range l.limiters {
		if now.Sub(il.last) > l.idle {
			delete(l.limiters, ip)
		}
	}
}

// RunCleanup 每 5 分钟清理一次，直到 stop 关闭
func (l *IPRateLimiter) RunCleanup(stop <-chan struct{}) {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			l.Cleanup()
		case <-stop:
			return
		}
	}
}

// RateLimit rps <= 0 时不限流
func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.rps <= 0 {
			c.Next()
			return
		}
		if !l.Allow(utils.ClientIP(c)) {
			utils.AbortWithError(c, constant.NewError(constant.KindRateLimited, constant.MsgRateLimited))
			return
		}
		c.Next()
	}
}
