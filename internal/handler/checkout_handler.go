package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"course-checkout-api/internal/dto"
	"course-checkout-api/internal/middleware"
	"course-checkout-api/internal/utils"
)

const idempotencyHeader = "Idempotency-Key"

type Checkouter interface {
	Checkout(ctx context.Context, req dto.CheckoutReq, idempotencyKey string) (*dto.CheckoutResp, error)
}

type CheckoutHandler struct{ svc Checkouter }

func NewCheckoutHandler(svc Checkouter) *CheckoutHandler { return &CheckoutHandler{svc: svc} }

// Create POST /api/v1/checkout
func (h *CheckoutHandler) Create(c *gin.Context) {
	var req dto.CheckoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	c.Set(middleware.CtxUserID, req.UserID.String())
	if !checkRequester(c, req.UserID.String()) {
		return
	}

	resp, err := h.svc.Checkout(c.Request.Context(), req, strings.TrimSpace(c.GetHeader(idempotencyHeader)))
	if err != nil {
		_ = c.Error(err)
		utils.AbortWithError(c, err)
		return
	}
	c.Set(middleware.CtxChargeID, resp.Payment.ID)
	c.JSON(http.StatusOK, resp)
}
