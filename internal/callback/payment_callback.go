package callback

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"course-checkout-api/internal/dto"
	"course-checkout-api/internal/event"
	"course-checkout-api/internal/idgen"
	ordermodel "course-checkout-api/internal/model/order"
	"course-checkout-api/internal/notify"
)

const eventMarkerTTL = 24 * time.Hour

// OrderUpdater 订单查找与状态更新，*repo.OrderRepo 满足
type OrderUpdater interface {
	GetByChargeID(ctx context.Context, chargeID string) (*ordermodel.Order, error)
	UpdateStatus(ctx context.Context, id string, status ordermodel.Status, at time.Time) error
}

// Ledger 回调流水，*repo.WebhookEventRepo 满足
type Ledger interface {
	Insert(ctx context.Context, e *ordermodel.WebhookEvent) error
	LatestByEventID(ctx context.Context, eventID string) (*ordermodel.WebhookEvent, error)
}

// EventMarker 重复投递标记，*idempotency.Guard 满足
type EventMarker interface {
	MarkEvent(ctx context.Context, eventID string, ttl time.Duration) bool
	UnmarkEvent(ctx context.Context, eventID string)
}

type PaymentCallback struct {
	orders   OrderUpdater
	ledger   Ledger
	marker   EventMarker
	pub      event.Publisher
	notifier notify.Notifier
	log      logrus.FieldLogger
	now      func() time.Time
	newID    func() uint64
}

func NewPaymentCallback(orders OrderUpdater, ledger Ledger, marker EventMarker, pub event.Publisher,
	notifier notify.Notifier, log logrus.FieldLogger) *PaymentCallback {
	if pub == nil {
		pub = event.Nop{}
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &PaymentCallback{
		orders: orders, ledger: ledger, marker: marker, pub: pub, notifier: notifier,
		log: log, now: time.Now, newID: idgen.New,
	}
}

// MapEventStatus 网关事件 -> 订单状态；其余事件不处理
func MapEventStatus(evt string) (ordermodel.Status, bool) {
	switch evt {
	case "PAYMENT_RECEIVED", "PAYMENT_CONFIRMED":
		return ordermodel.StatusPaid, true
	case "PAYMENT_OVERDUE":
		return ordermodel.StatusFailed, true
	case "PAYMENT_REFUNDED":
		return ordermodel.StatusRefunded, true
	default:
		return "", false
	}
}

// Handle 处理一次网关回调，返回处理结果。
// 错误只用于记录，调用方无论如何都应回复已收到。
func (cb *PaymentCallback) Handle(ctx context.Context, req *dto.WebhookReq, raw []byte) (string, error) {
	chargeID := req.ChargeID()
	log := cb.log.WithFields(logrus.Fields{"event": req.Event, "event_id": req.ID, "charge_id": chargeID})

	status, ok := MapEventStatus(req.Event)
	entry := &ordermodel.WebhookEvent{
		EventID:     req.ID,
		EventType:   req.Event,
		ChargeID:    chargeID,
		Status:      string(status),
		PayloadJSON: string(raw),
	}

	if !ok {
		log.Debug("[CALLBACK] 事件无需处理")
		return cb.record(ctx, entry, ordermodel.OutcomeIgnored, nil)
	}

	// 1) 重复投递
	if cb.isDuplicate(ctx, req.ID) {
		log.Info("[CALLBACK] 重复事件，跳过")
		return cb.record(ctx, entry, ordermodel.OutcomeDuplicate, nil)
	}

	// 2) 按收款ID找订单
	if chargeID == "" {
		log.Warn("[CALLBACK] 回调缺少 payment.id")
		return cb.record(ctx, entry, ordermodel.OutcomeNoOrder, nil)
	}
	order, err := cb.orders.GetByChargeID(ctx, chargeID)
	if err != nil {
		cb.fail(ctx, req, err)
		return cb.record(ctx, entry, ordermodel.OutcomeError, err)
	}
	if order == nil {
		// 订单可能尚未落库，或与本系统无关
		log.Info("[CALLBACK] 未找到对应订单")
		return cb.record(ctx, entry, ordermodel.OutcomeNoOrder, nil)
	}

	// 3) 金额核对，只告警
	if amount, ok := callbackAmount(req); ok && !amount.Equal(order.Amount) {
		log.Warnf("[CALLBACK] 金额不一致: callback=%s order=%s", amount, order.Amount)
		cb.notifier.Alert(notify.Alert{
			Level: notify.LevelWarn,
			Title: "Valor do webhook diverge do pedido",
			Extra: map[string]string{
				"charge_id":       chargeID,
				"order_id":        order.ID.String(),
				"callback_amount": amount.String(),
				"order_amount":    order.Amount.String(),
			},
		})
	}

	// 4) 更新状态（后写覆盖）
	now := cb.now()
	if err := cb.orders.UpdateStatus(ctx, order.ID.String(), status, now); err != nil {
		cb.fail(ctx, req, err)
		return cb.record(ctx, entry, ordermodel.OutcomeError, err)
	}
	log.WithFields(logrus.Fields{"order_id": order.ID, "from": order.Status, "to": status}).Info("[CALLBACK] 订单状态已更新")

	if err := cb.pub.Publish(ctx, event.TopicOrderStatusChanged, event.OrderStatusChanged{
		OrderID:   order.ID.String(),
		ChargeID:  chargeID,
		Status:    string(status),
		Event:     req.Event,
		ChangedAt: now.Unix(),
	}); err != nil {
		log.WithError(err).Warn("[CALLBACK] 发布状态变更事件失败")
	}
	return cb.record(ctx, entry, ordermodel.OutcomeUpdated, nil)
}

// isDuplicate 先看 Redis 标记，Redis 不可用时再查流水
func (cb *PaymentCallback) isDuplicate(ctx context.Context, eventID string) bool {
	if eventID == "" {
		return false
	}
	if cb.marker != nil && !cb.marker.MarkEvent(ctx, eventID, eventMarkerTTL) {
		return true
	}
	if cb.ledger == nil {
		return false
	}
	prev, err := cb.ledger.LatestByEventID(ctx, eventID)
	if err != nil {
		cb.log.WithError(err).Warn("[CALLBACK] 查询回调流水失败")
		return false
	}
	return prev != nil && prev.Outcome == ordermodel.OutcomeUpdated
}

// fail 处理失败：清除重复标记以便网关重投，并告警
func (cb *PaymentCallback) fail(ctx context.Context, req *dto.WebhookReq, err error) {
	cb.log.WithFields(logrus.Fields{"event": req.Event, "charge_id": req.ChargeID()}).WithError(err).Error("[CALLBACK] 处理失败")
	if cb.marker != nil {
		cb.marker.UnmarkEvent(ctx, req.ID)
	}
	cb.notifier.Alert(notify.Alert{
		Level:    notify.LevelError,
		Title:    "Falha ao processar webhook",
		Endpoint: "POST /api/v1/webhooks/asaas",
		Extra: map[string]string{
			"event":     req.Event,
			"charge_id": req.ChargeID(),
			"error":     err.Error(),
		},
	})
}

func (cb *PaymentCallback) record(ctx context.Context, e *ordermodel.WebhookEvent, outcome string, cause error) (string, error) {
	e.Outcome = outcome
	if cause != nil {
		e.ErrorMsg = cause.Error()
	}
	if cb.ledger != nil {
		e.ID = cb.newID()
		e.CreatedAt = cb.now()
		if err := cb.ledger.Insert(ctx, e); err != nil {
			cb.log.WithError(err).Warn("[CALLBACK] 写入回调流水失败")
		}
	}
	if cause != nil {
		return outcome, fmt.Errorf("webhook %s: %w", e.EventType, cause)
	}
	return outcome, nil
}

// callbackAmount 回调金额缺失、为零或无法解析时不做核对
func callbackAmount(req *dto.WebhookReq) (decimal.Decimal, bool) {
	if req == nil || req.Payment == nil {
		return decimal.Zero, false
	}
	amount, ok := req.Payment.Value.Decimal()
	if !ok || amount.IsZero() {
		return decimal.Zero, false
	}
	return amount, true
}
