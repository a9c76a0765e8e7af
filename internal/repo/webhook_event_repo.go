package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	ordermodel "course-checkout-api/internal/model/order"
)

// WebhookEventRepo 回调流水（审计库）；db 为空时所有操作为空操作
type WebhookEventRepo struct {
	db *gorm.DB
}

func NewWebhookEventRepo(db *gorm.DB) *WebhookEventRepo {
	return &WebhookEventRepo{db: db}
}

func (r *WebhookEventRepo) Insert(ctx context.Context, e *ordermodel.WebhookEvent) error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(e).Error
}

// LatestByEventID 未找到返回 nil, nil
func (r *WebhookEventRepo) LatestByEventID(ctx context.Context, eventID string) (*ordermodel.WebhookEvent, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	var m ordermodel.WebhookEvent
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).Order("id DESC").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByChargeID 某笔收款的全部回调，按时间正序
func (r *WebhookEventRepo) ListByChargeID(ctx context.Context, chargeID string) ([]ordermodel.WebhookEvent, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	var out []ordermodel.WebhookEvent
	err := r.db.WithContext(ctx).Where("charge_id = ?", chargeID).Order("id ASC").Find(&out).Error
	return out, err
}
