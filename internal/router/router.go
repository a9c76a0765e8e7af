package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/handler"
	"course-checkout-api/internal/middleware"
	"course-checkout-api/internal/utils"
)

type Handlers struct {
	Checkout *handler.CheckoutHandler
	Webhook  *handler.WebhookHandler
	Course   *handler.CourseHandler
	Order    *handler.OrderHandler
}

// UpstreamHealth *health.Tracker 满足
type UpstreamHealth interface {
	Snapshot(ctx context.Context) map[string]float64
}

type Options struct {
	Mode           string
	TrustedProxies []string
	WebhookToken   string
	JWTSecret      string
	Limiter        *middleware.IPRateLimiter
	Audit          middleware.AuditSink
	Health         UpstreamHealth
	Log            logrus.FieldLogger
}

func New(h Handlers, opt Options) *gin.Engine {
	if opt.Mode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	// 可信代理 IP（如本地或内网）；为空时不信任任何转发头，gin 默认是全部信任
	if err := r.SetTrustedProxies(opt.TrustedProxies); err != nil {
		if opt.Log != nil {
			opt.Log.WithError(err).Warn("[Router] trustedProxies 配置无效，忽略转发头")
		}
		_ = r.SetTrustedProxies(nil)
	}
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		utils.AbortWithError(c, constant.NewError(constant.KindMethodNotAllowed, constant.MsgMethodNotAllowed))
	})
	r.NoRoute(func(c *gin.Context) {
		utils.AbortWithError(c, constant.NotFound(constant.MsgNotFound))
	})

	r.Use(middleware.Recover(opt.Log))
	// 健康检查不进审计
	r.GET("/healthz", func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		if opt.Health != nil {
			body["upstreams"] = opt.Health.Snapshot(c.Request.Context())
		}
		c.JSON(http.StatusOK, body)
	})

	r.Use(middleware.TraceAudit(opt.Audit), middleware.RequestLogger(opt.Log))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/checkout",
			middleware.RateLimit(opt.Limiter),
			middleware.JWTAuth(opt.JWTSecret),
			h.Checkout.Create)
		v1.POST("/webhooks/asaas", middleware.WebhookToken(opt.WebhookToken), h.Webhook.Receive)

		v1.GET("/courses", h.Course.List)
		v1.GET("/courses/:id", h.Course.Get)

		orders := v1.Group("/orders", middleware.JWTAuth(opt.JWTSecret))
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
	}
	return r
}
