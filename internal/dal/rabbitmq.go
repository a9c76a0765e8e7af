package dal

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"course-checkout-api/internal/config"
)

var ErrRabbitUnavailable = errors.New("rabbitmq channel unavailable")

// RabbitMQ 带自愈的连接：连接或通道关闭后后台重连，期间发布直接失败
type RabbitMQ struct {
	url      string
	Exchange string
	log      logrus.FieldLogger

	mu     sync.RWMutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

// NewRabbitMQ 未配置 url 时返回 nil
func NewRabbitMQ(c config.RabbitCfg, log logrus.FieldLogger) (*RabbitMQ, error) {
	if c.URL == "" {
		return nil, nil
	}
	r := &RabbitMQ{url: c.URL, Exchange: c.Exchange, log: log}
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *RabbitMQ) connect() error {
	conn, err := amqp.Dial(r.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(r.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return err
	}

	r.mu.Lock()
	r.conn, r.ch = conn, ch
	r.mu.Unlock()

	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))
	go r.watchClose(connClosed, chClosed)

	r.log.WithField("exchange", r.Exchange).Info("[RabbitMQ] 连接成功")
	return nil
}

// watchClose 监听关闭事件并触发重连
func (r *RabbitMQ) watchClose(connClosed, chClosed chan *amqp.Error) {
	var err *amqp.Error
	select {
	case err = <-connClosed:
	case err = <-chClosed:
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
	r.conn, r.ch = nil, nil
	r.mu.Unlock()

	r.log.WithField("reason", err).Warn("[RabbitMQ] 连接关闭，开始重连")
	for {
		time.Sleep(5 * time.Second)
		r.mu.RLock()
		closed := r.closed
		r.mu.RUnlock()
		if closed {
			return
		}
		if err := r.connect(); err == nil {
			return
		}
	}
}

// Channel 当前可用通道
func (r *RabbitMQ) Channel() (*amqp.Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.ch == nil {
		return nil, ErrRabbitUnavailable
	}
	return r.ch, nil
}

// Publish 与 amqp.Channel.Publish 同签名，方便上层替换
func (r *RabbitMQ) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	ch, err := r.Channel()
	if err != nil {
		return err
	}
	return ch.Publish(exchange, key, mandatory, immediate, msg)
}

func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}
