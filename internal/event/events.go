package event

// OrderCreated 下单成功后发布
type OrderCreated struct {
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id"`
	CourseID      string `json:"course_id"`
	ChargeID      string `json:"charge_id"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	BillingType   string `json:"billing_type"`
	CreatedAt     int64  `json:"created_at"`
}

// OrderStatusChanged webhook 更新订单状态后发布
type OrderStatusChanged struct {
	OrderID   string `json:"order_id"`
	ChargeID  string `json:"charge_id"`
	Status    string `json:"status"`
	Event     string `json:"event"`
	ChangedAt int64  `json:"changed_at"`
}
