package middleware

// gin.Context 中使用的键
const (
	CtxTraceID   = "trace_id"
	CtxRequester = "requester" // JWT 中的用户ID
	CtxUserID    = "user_id"   // 审计用：请求中的用户ID
	CtxChargeID  = "charge_id" // 审计用：网关收款ID
)
