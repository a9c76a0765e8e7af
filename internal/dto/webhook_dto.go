package dto

import "course-checkout-api/internal/utils"

// WebhookPayment 网关回调中的收款对象，只取对账需要的字段
type WebhookPayment struct {
	ID                string          `json:"id"`
	Customer          string          `json:"customer"`
	Status            string          `json:"status"`
	BillingType       string          `json:"billingType"`
	Value             utils.StringOrNumber `json:"value"` // 网关可能发字符串，解析不了就跳过金额核对
	ExternalReference string          `json:"externalReference"`
}

// WebhookReq 网关回调
type WebhookReq struct {
	ID          string          `json:"id"`
	Event       string          `json:"event"`
	DateCreated string          `json:"dateCreated"`
	Payment     *WebhookPayment `json:"payment"`
}

func (r *WebhookReq) ChargeID() string {
	if r == nil || r.Payment == nil {
		return ""
	}
	return r.Payment.ID
}

type WebhookAck struct {
	Received bool `json:"received"`
}
