package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/dto"
	ordermodel "course-checkout-api/internal/model/order"
	"course-checkout-api/internal/utils/timeutil"
)

type OrderReader interface {
	GetByID(ctx context.Context, id string) (*ordermodel.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]ordermodel.Order, error)
}

// EventHistory 回调流水查询，*repo.WebhookEventRepo 满足
type EventHistory interface {
	ListByChargeID(ctx context.Context, chargeID string) ([]ordermodel.WebhookEvent, error)
}

const defaultOrderPageSize = 20

type OrderService struct {
	orders  OrderReader
	history EventHistory
	log     logrus.FieldLogger
}

func NewOrderService(orders OrderReader, history EventHistory, log logrus.FieldLogger) *OrderService {
	return &OrderService{orders: orders, history: history, log: log}
}

// Get requester 非空时只能查看自己的订单，其他人的订单按不存在处理
func (s *OrderService) Get(ctx context.Context, id, requester string) (*dto.OrderDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, constant.NotFound(constant.MsgOrderNotFound)
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil || (requester != "" && o.UserID != requester) {
		return nil, constant.NotFound(constant.MsgOrderNotFound)
	}

	detail := &dto.OrderDetail{Order: *o}
	if s.history != nil && o.AsaasID != "" {
		events, err := s.history.ListByChargeID(ctx, o.AsaasID)
		if err != nil {
			// 流水只是附加信息
			s.log.WithError(err).WithField("order_id", id).Warn("[Order] 查询回调流水失败")
		}
		for _, e := range events {
			detail.Events = append(detail.Events, dto.WebhookEventView{
				EventID:   e.EventID,
				EventType: e.EventType,
				Status:    e.Status,
				Outcome:   e.Outcome,
				CreatedAt: timeutil.FormatISO8601(e.CreatedAt),
			})
		}
	}
	return detail, nil
}

func (s *OrderService) ListByUser(ctx context.Context, q dto.OrderListQuery) ([]ordermodel.Order, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultOrderPageSize
	}
	return s.orders.ListByUser(ctx, strings.TrimSpace(q.UserID), limit, q.Offset)
}
