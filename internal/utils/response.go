package utils

import (
	"github.com/gin-gonic/gin"

	"course-checkout-api/internal/constant"
)

// ErrorBody 统一错误响应格式 {"error": "...", "details": ...}
type ErrorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
}

// ErrorWithTrace 错误响应（带 TraceID）
func ErrorWithTrace(message string, details interface{}, traceID string) ErrorBody {
	return ErrorBody{Error: message, Details: details, TraceID: traceID}
}

// AbortWithError 根据错误分类写出响应并终止后续 handler
func AbortWithError(c *gin.Context, err error) {
	traceID := c.GetString("trace_id")
	if ce, ok := constant.As(err); ok {
		c.AbortWithStatusJSON(ce.Kind().HTTPStatus(), ErrorWithTrace(ce.Message(), ce.Details(), traceID))
		return
	}
	c.AbortWithStatusJSON(constant.KindInternal.HTTPStatus(), ErrorWithTrace(constant.MsgInternal, nil, traceID))
}
