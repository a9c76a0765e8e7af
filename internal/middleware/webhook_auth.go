package middleware

import (
	"github.com/gin-gonic/gin"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/utils"
)

const webhookTokenHeader = "asaas-access-token"

// WebhookToken 校验网关在回调头中携带的令牌
func WebhookToken(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.VerifyToken(c.GetHeader(webhookTokenHeader), expected) {
			utils.AbortWithError(c, constant.NewError(constant.KindUnauthorized, constant.MsgWebhookUnauthorized))
			return
		}
		c.Next()
	}
}
