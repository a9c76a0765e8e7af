package ordermodel

import "time"

// webhook 处理结果
const (
	OutcomeUpdated   = "updated"
	OutcomeNoOrder   = "no_order"
	OutcomeIgnored   = "ignored"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

// WebhookEvent 网关回调流水，落在审计库
type WebhookEvent struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	EventID     string    `gorm:"column:event_id;type:varchar(100);not null;default:'';index" json:"eventId"`
	EventType   string    `gorm:"column:event_type;type:varchar(64);not null;index" json:"eventType"`
	ChargeID    string    `gorm:"column:charge_id;type:varchar(64);not null;default:'';index" json:"chargeId"`
	Status      string    `gorm:"column:status;type:varchar(16);not null;default:''" json:"status"`
	Outcome     string    `gorm:"column:outcome;type:varchar(16);not null" json:"outcome"`
	ErrorMsg    string    `gorm:"column:error_msg;type:text" json:"errorMsg"`
	PayloadJSON string    `gorm:"column:payload_json;type:longtext;not null" json:"payloadJson"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (WebhookEvent) TableName() string { return "payment_webhook_events" }
