package mq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"course-checkout-api/internal/event"
	ordermodel "course-checkout-api/internal/model/order"
	"course-checkout-api/internal/notify"
)

const StatusQueue = "checkout.order_status"

var errDeliveryClosed = errors.New("delivery channel closed")

// ChannelSource *dal.RabbitMQ 满足
type ChannelSource interface {
	Channel() (*amqp.Channel, error)
}

// StatusConsumer 消费订单状态变更，付款成功时推送运营通知
type StatusConsumer struct {
	src      ChannelSource
	exchange string
	notifier notify.Notifier
	log      logrus.FieldLogger
	retry    time.Duration
}

func NewStatusConsumer(src ChannelSource, exchange string, notifier notify.Notifier, log logrus.FieldLogger) *StatusConsumer {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &StatusConsumer{src: src, exchange: exchange, notifier: notifier, log: log, retry: 5 * time.Second}
}

// Run 阻塞到 ctx 结束；连接断开后等待重连继续消费
func (c *StatusConsumer) Run(ctx context.Context) {
	for {
		err := c.consumeOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		c.log.WithError(err).Warn("[MQ] 状态消费中断，稍后重试")
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.retry):
		}
	}
}

func (c *StatusConsumer) consumeOnce(ctx context.Context) error {
	ch, err := c.src.Channel()
	if err != nil {
		return err
	}
	q, err := ch.QueueDeclare(StatusQueue, true, false, false, false, nil)
	if err != nil {
		return err
	}
	if err := ch.QueueBind(q.Name, event.TopicOrderStatusChanged, c.exchange, false, nil); err != nil {
		return err
	}
	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	c.log.WithField("queue", q.Name).Info("[MQ] 开始消费订单状态")
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errDeliveryClosed
			}
			c.handle(d)
		}
	}
}

func (c *StatusConsumer) handle(d amqp.Delivery) {
	if err := c.process(d.Body); err != nil {
		c.log.WithError(err).Error("[MQ] 状态消息解析失败，丢弃")
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (c *StatusConsumer) process(body []byte) error {
	var msg event.OrderStatusChanged
	if err := json.Unmarshal(body, &msg); err != nil {
		return err
	}
	if msg.OrderID == "" {
		return errors.New("order_id is empty")
	}
	log := c.log.WithFields(logrus.Fields{"order_id": msg.OrderID, "status": msg.Status})
	if ordermodel.Status(msg.Status) != ordermodel.StatusPaid {
		log.Debug("[MQ] 非付款状态，跳过通知")
		return nil
	}
	c.notifier.Alert(notify.Alert{
		Level: notify.LevelInfo,
		Title: "Pagamento confirmado",
		Extra: map[string]string{
			"order_id":  msg.OrderID,
			"charge_id": msg.ChargeID,
			"event":     msg.Event,
		},
		At: time.Unix(msg.ChangedAt, 0),
	})
	log.Info("[MQ] 已推送付款通知")
	return nil
}
