package gateway

import "github.com/shopspring/decimal"

// BillingType 网关收款方式
type BillingType string

const (
	BillingPix        BillingType = "PIX"
	BillingBoleto     BillingType = "BOLETO"
	BillingCreditCard BillingType = "CREDIT_CARD"
)

// Customer 网关客户
type Customer struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	CpfCnpj     string `json:"cpfCnpj,omitempty"`
	MobilePhone string `json:"mobilePhone,omitempty"`
}

type CreditCard struct {
	HolderName  string `json:"holderName"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	Ccv         string `json:"ccv"`
}

type CreditCardHolderInfo struct {
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	CpfCnpj       string `json:"cpfCnpj,omitempty"`
	MobilePhone   string `json:"mobilePhone,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	AddressNumber string `json:"addressNumber,omitempty"`
}

// PaymentRequest 创建收款请求
type PaymentRequest struct {
	Customer             string                `json:"customer"`
	BillingType          BillingType           `json:"billingType"`
	Value                float64               `json:"value"`
	DueDate              string                `json:"dueDate"` // YYYY-MM-DD
	Description          string                `json:"description,omitempty"`
	ExternalReference    string                `json:"externalReference,omitempty"`
	CreditCard           *CreditCard           `json:"creditCard,omitempty"`
	CreditCardHolderInfo *CreditCardHolderInfo `json:"creditCardHolderInfo,omitempty"`
}

// Payment 网关收款
type Payment struct {
	ID                string          `json:"id"`
	Customer          string          `json:"customer"`
	Status            string          `json:"status"`
	BillingType       string          `json:"billingType"`
	Value             decimal.Decimal `json:"value"`
	DueDate           string          `json:"dueDate"`
	Description       string          `json:"description"`
	ExternalReference string          `json:"externalReference"`
	InvoiceURL        string          `json:"invoiceUrl"`
	BankSlipURL       string          `json:"bankSlipUrl"`
}

// PixQRCode PIX 二维码
type PixQRCode struct {
	Payload        string `json:"payload"`
	EncodedImage   string `json:"encodedImage"`
	ExpirationDate string `json:"expirationDate"`
}

// Account myAccount 探测返回，仅保留常用字段
type Account struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	CpfCnpj string `json:"cpfCnpj"`
}

type PixAddressKey struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// APIError 网关错误项
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type errorResponse struct {
	Errors []APIError `json:"errors"`
}

type listResponse[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"totalCount"`
	HasMore    bool `json:"hasMore"`
}
