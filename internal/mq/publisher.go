package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
)

// Sender *amqp.Channel 与 *dal.RabbitMQ 均满足
type Sender interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher 以 topic 为 routing key 发布 JSON 消息
type Publisher struct {
	sender   Sender
	exchange string
}

func NewPublisher(sender Sender, exchange string) *Publisher {
	return &Publisher{sender: sender, exchange: exchange}
}

func (p *Publisher) Publish(ctx context.Context, topic string, msg any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.sender.Publish(p.exchange, topic, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now(),
		Body:         body,
	})
}
