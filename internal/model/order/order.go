package ordermodel

import (
	"time"

	"github.com/shopspring/decimal"

	"course-checkout-api/internal/utils"
)

// Status 订单状态
type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// Order represents the `orders` table in the data store
type Order struct {
	ID            utils.StringOrNumber `json:"id,omitempty"`         // 数据存储分配的主键
	UserID        string               `json:"user_id"`              // 购买者
	CourseID      string               `json:"course_id"`            // 课程
	Amount        decimal.Decimal      `json:"amount"`               // 订单金额
	PaymentMethod string               `json:"payment_method"`       // pay_pix | pay_boleto | pay_cc
	AsaasID       string               `json:"asaas_id"`             // 网关收款ID，webhook 关联键
	Status        Status               `json:"status"`               // pending | paid | failed | refunded
	InvoiceURL    *string              `json:"invoice_url,omitempty"` // 账单/发票链接
	PixCode       *string              `json:"pix_code,omitempty"`    // PIX 复制粘贴码
	CreatedAt     *time.Time           `json:"created_at,omitempty"`
	UpdatedAt     *time.Time           `json:"updated_at,omitempty"`
}

// StatusPatch 只更新状态与更新时间
type StatusPatch struct {
	Status    Status    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}
