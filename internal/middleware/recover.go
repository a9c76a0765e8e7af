package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/utils"
)

func Recover(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"path":     c.Request.URL.Path,
					"trace_id": c.GetString(CtxTraceID),
				}).Errorf("[Recover] panic: %v\n%s", r, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					utils.ErrorWithTrace(constant.MsgInternal, nil, c.GetString(CtxTraceID)))
			}
		}()
		c.Next()
	}
}
