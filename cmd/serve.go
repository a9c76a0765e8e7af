package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"course-checkout-api/internal/callback"
	"course-checkout-api/internal/config"
	"course-checkout-api/internal/dal"
	"course-checkout-api/internal/datastore"
	"course-checkout-api/internal/event"
	"course-checkout-api/internal/gateway"
	"course-checkout-api/internal/handler"
	"course-checkout-api/internal/health"
	"course-checkout-api/internal/idempotency"
	"course-checkout-api/internal/idgen"
	"course-checkout-api/internal/logger"
	"course-checkout-api/internal/middleware"
	"course-checkout-api/internal/mq"
	"course-checkout-api/internal/notify"
	"course-checkout-api/internal/repo"
	"course-checkout-api/internal/router"
	"course-checkout-api/internal/service"
	"course-checkout-api/internal/utils"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the checkout HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, _ := cmd.Flags().GetString("env")
			cfg, err := config.Load(env)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Root) error {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	if err := idgen.Init(cfg.Snowflake.NodeID); err != nil {
		return fmt.Errorf("init snowflake: %w", err)
	}

	// init infra，均为可选
	rdb, err := dal.NewRedis(cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("[Serve] redis 不可用，去重与缓存关闭")
		rdb = nil
	}
	auditDB, err := dal.NewAuditDB(cfg.MysqlAudit, log)
	if err != nil {
		log.WithError(err).Warn("[Serve] 审计库不可用，回调流水与请求审计关闭")
		auditDB = nil
	}
	rabbit, err := dal.NewRabbitMQ(cfg.RabbitMQ, log)
	if err != nil {
		log.WithError(err).Warn("[Serve] RabbitMQ 不可用，事件不发布")
		rabbit = nil
	}
	notifier, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID, log)
	if err != nil {
		log.WithError(err).Warn("[Serve] Telegram 初始化失败，告警关闭")
		notifier = notify.Nop{}
	}

	loc, err := time.LoadLocation(cfg.Checkout.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Checkout.Timezone, err)
	}

	tracker := health.NewTracker(rdb, health.NewStrategy(cfg.Health.Strategy), cfg.Health.Threshold, cfg.HealthTTL(),
		notifier, log, health.UpstreamGateway, health.UpstreamDataStore)
	store := datastore.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey, utils.NewHTTPClient(cfg.SupabaseTimeout()), log).
		WithObserver(tracker)
	gw := gateway.NewClient(cfg.Asaas.BaseURL, cfg.Asaas.APIKey, utils.NewHTTPClient(cfg.AsaasTimeout()), log).
		WithObserver(tracker)

	orders := repo.NewOrderRepo(store)
	courses := repo.NewCourseRepo(store)
	ledger := repo.NewWebhookEventRepo(auditDB)
	guard := idempotency.NewGuard(rdb, cfg.DedupTTL(), log).WithInFlightTTL(cfg.InFlightTTL())

	var pub event.Publisher = event.Nop{}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if rabbit != nil {
		defer rabbit.Close()
		pub = mq.NewPublisher(rabbit, rabbit.Exchange)
		go mq.NewStatusConsumer(rabbit, rabbit.Exchange, notifier, log).Run(ctx)
	}

	checkoutSvc := service.NewCheckoutService(gw, orders, guard, pub, notifier, service.CheckoutOptions{
		DueDays:     cfg.Checkout.DueDays,
		Location:    loc,
		DedupWindow: cfg.DedupWindow(),
	}, log)
	cb := callback.NewPaymentCallback(orders, ledger, guard, pub, notifier, log)

	limiter := middleware.NewIPRateLimiter(cfg.Server.CheckoutRPS, cfg.Server.CheckoutBurst)
	go limiter.RunCleanup(ctx.Done())

	var audit middleware.AuditSink
	if auditDB != nil {
		audit = logger.NewAuditWriter(auditDB, log)
	}

	engine := router.New(router.Handlers{
		Checkout: handler.NewCheckoutHandler(checkoutSvc),
		Webhook:  handler.NewWebhookHandler(cb, log),
		Course:   handler.NewCourseHandler(service.NewCourseService(courses, rdb, log)),
		Order:    handler.NewOrderHandler(service.NewOrderService(orders, ledger, log)),
	}, router.Options{
		Mode:           cfg.Server.Mode,
		TrustedProxies: cfg.Server.TrustedProxies,
		WebhookToken:   cfg.Asaas.WebhookToken,
		JWTSecret:      cfg.Security.JWTSecret,
		Limiter:        limiter,
		Audit:          audit,
		Health:         tracker,
		Log:            log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "jwt": cfg.Security.JWTSecret != ""}).Info("[Serve] listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("[Serve] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if auditDB != nil {
		if sqlDB, err := auditDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return nil
}
