package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/middleware"
	"course-checkout-api/internal/utils"
)

// bindError 绑定失败统一按 400 返回，带上字段级原因
func bindError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make(map[string]string, len(ve))
		for _, fe := range ve {
			details[strings.ToLower(fe.Field())] = fe.Tag()
		}
		utils.AbortWithError(c, constant.Validation(constant.MsgInvalidPayload).WithData(details))
		return
	}
	utils.AbortWithError(c, constant.Validation(constant.MsgInvalidPayload).WithData(err.Error()))
}

// checkRequester JWT 启用时，请求中的用户必须是会话用户本人
func checkRequester(c *gin.Context, userID string) bool {
	requester := middleware.Requester(c)
	if requester == "" || requester == userID {
		return true
	}
	utils.AbortWithError(c, constant.NewError(constant.KindUnauthorized, constant.MsgForbiddenRequester))
	return false
}
