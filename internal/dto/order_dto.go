package dto

import ordermodel "course-checkout-api/internal/model/order"

// OrderListQuery 按用户查询订单
type OrderListQuery struct {
	PageQuery
	UserID string `form:"user_id" binding:"required,max=64"`
}

// WebhookEventView 订单详情附带的回调流水
type WebhookEventView struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Status    string `json:"status"`
	Outcome   string `json:"outcome"`
	CreatedAt string `json:"created_at"`
}

// OrderDetail 订单详情
type OrderDetail struct {
	ordermodel.Order
	Events []WebhookEventView `json:"events,omitempty"`
}
