package ordermodel

import "time"

// RequestLog 下单/回调接口请求审计
type RequestLog struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement:false"`
	TraceID      string    `gorm:"column:trace_id;type:varchar(64);index"`
	Method       string    `gorm:"column:method;type:varchar(8)"`
	Path         string    `gorm:"column:path;type:varchar(128)"`
	UserID       string    `gorm:"column:user_id;type:varchar(64);index"`
	ChargeID     string    `gorm:"column:charge_id;type:varchar(64);index"`
	HTTPStatus   int       `gorm:"column:http_status"`
	ErrorMsg     string    `gorm:"column:error_msg;type:text"`
	RequestBody  string    `gorm:"column:request_body;type:text"`
	ResponseBody string    `gorm:"column:response_body;type:text"`
	IP           string    `gorm:"column:ip;type:varchar(64)"`
	UserAgent    string    `gorm:"column:user_agent;type:varchar(255)"`
	LatencyMs    int64     `gorm:"column:latency_ms"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (RequestLog) TableName() string { return "checkout_request_logs" }
