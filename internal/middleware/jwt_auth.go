package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/utils"
)

// JWTAuth 校验 Supabase 会话令牌（HS256），sub 作为请求者身份写入上下文。
// secret 为空时不做校验。
func JWTAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}
		parts := strings.Fields(c.GetHeader("Authorization"))
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			utils.AbortWithError(c, constant.NewError(constant.KindUnauthorized, constant.MsgUnauthorized))
			return
		}

		claims := jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(parts[1], &claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			utils.AbortWithError(c, constant.NewError(constant.KindUnauthorized, constant.MsgUnauthorized))
			return
		}
		c.Set(CtxRequester, claims.Subject)
		c.Next()
	}
}

// Requester 当前请求者，未启用 JWT 时为空
func Requester(c *gin.Context) string {
	return c.GetString(CtxRequester)
}
