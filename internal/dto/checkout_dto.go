package dto

import (
	"github.com/shopspring/decimal"

	"course-checkout-api/internal/utils"
)

// CustomerReq 付款人信息
type CustomerReq struct {
	Name          string `json:"name" binding:"omitempty,max=120"`
	Cpf           string `json:"cpf" binding:"omitempty,max=18"`            // CPF/CNPJ，可带标点
	Email         string `json:"email" binding:"omitempty,email,max=160"`   //邮箱
	Phone         string `json:"phone" binding:"omitempty,max=20"`          //手机号
	PostalCode    string `json:"postal_code" binding:"omitempty,max=9"`     //信用卡持卡人邮编
	AddressNumber string `json:"address_number" binding:"omitempty,max=10"` //门牌号
}

// CardReq 信用卡信息，仅 pay_cc 需要
type CardReq struct {
	HolderName  string               `json:"holder_name"`
	Number      utils.StringOrNumber `json:"number"`
	ExpiryMonth utils.StringOrNumber `json:"expiry_month"`
	ExpiryYear  utils.StringOrNumber `json:"expiry_year"`
	Ccv         utils.StringOrNumber `json:"ccv"`
}

// CheckoutReq 下单请求
type CheckoutReq struct {
	UserID        utils.StringOrNumber `json:"user_id"`
	CourseID      utils.StringOrNumber `json:"course_id"`
	Amount        decimal.Decimal      `json:"amount"`
	PaymentMethod string               `json:"payment_method"` // pay_pix | pay_boleto | pay_cc
	Customer      *CustomerReq         `json:"customer"`
	Card          *CardReq             `json:"card"`
}

type PixQRCodeResp struct {
	Payload        string `json:"payload"`
	EncodedImage   string `json:"encodedImage"`
	ExpirationDate string `json:"expirationDate,omitempty"`
}

// PaymentResp 返回给前端的收款摘要
type PaymentResp struct {
	ID                string          `json:"id"`
	Customer          string          `json:"customer"`
	Status            string          `json:"status"`
	BillingType       string          `json:"billingType"`
	Value             decimal.Decimal `json:"value"`
	DueDate           string          `json:"dueDate"`
	Description       string          `json:"description"`
	ExternalReference string          `json:"externalReference"`
	InvoiceURL        string          `json:"invoiceUrl,omitempty"`
	BankSlipURL       string          `json:"bankSlipUrl,omitempty"`
	PixQRCode         *PixQRCodeResp  `json:"pix_qrcode,omitempty"`
}

// CheckoutResp 下单响应；订单落库失败时 order_id 为 "unknown"
type CheckoutResp struct {
	Message string      `json:"message"`
	Payment PaymentResp `json:"payment"`
	OrderID string      `json:"order_id"`
}
