package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/dto"
	"course-checkout-api/internal/middleware"
	"course-checkout-api/internal/utils"
)

const maxWebhookBody = 1 << 20

// 只约束对账用到的字段，其余字段原样放过
var webhookSchema = gojsonschema.NewStringLoader(`{
  "type": "object",
  "required": ["event"],
  "properties": {
    "id":    {"type": "string"},
    "event": {"type": "string", "minLength": 1},
    "payment": {
      "type": "object",
      "properties": {
        "id":    {"type": "string"},
        "value": {"type": ["number", "string"]}
      }
    }
  }
}`)

type WebhookProcessor interface {
	Handle(ctx context.Context, req *dto.WebhookReq, raw []byte) (string, error)
}

type WebhookHandler struct {
	cb  WebhookProcessor
	log logrus.FieldLogger
}

func NewWebhookHandler(cb WebhookProcessor, log logrus.FieldLogger) *WebhookHandler {
	return &WebhookHandler{cb: cb, log: log}
}

// Receive POST /api/v1/webhooks/asaas
// 读到合法事件后一律回 200，避免网关无限重试
func (h *WebhookHandler) Receive(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil || len(strings.TrimSpace(string(raw))) == 0 {
		utils.AbortWithError(c, constant.Validation(constant.MsgMissingEvent))
		return
	}
	if err := validateJSONSchema(webhookSchema, raw); err != nil {
		utils.AbortWithError(c, constant.Validation(constant.MsgMissingEvent).WithData(err.Error()))
		return
	}
	var req dto.WebhookReq
	if err := json.Unmarshal(raw, &req); err != nil {
		utils.AbortWithError(c, constant.Validation(constant.MsgInvalidPayload).WithData(err.Error()))
		return
	}
	c.Set(middleware.CtxChargeID, req.ChargeID())

	outcome, err := h.cb.Handle(c.Request.Context(), &req, raw)
	entry := h.log.WithFields(logrus.Fields{
		"event":    req.Event,
		"event_id": req.ID,
		"outcome":  outcome,
		"trace_id": c.GetString(middleware.CtxTraceID),
	})
	if err != nil {
		_ = c.Error(err)
		entry.WithError(err).Error("[WEBHOOK] 对账失败")
	} else {
		entry.Debug("[WEBHOOK] done")
	}
	c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
}

func validateJSONSchema(schema gojsonschema.JSONLoader, body []byte) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var sb strings.Builder
		for i, e := range result.Errors() {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(e.String())
		}
		return fmt.Errorf("payload does not conform to schema: %s", sb.String())
	}
	return nil
}
