package event

import "context"

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
)

// Publisher 业务事件发布
type Publisher interface {
	Publish(ctx context.Context, topic string, msg any) error
}

// Nop 未配置消息队列时使用
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
