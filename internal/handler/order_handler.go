package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"course-checkout-api/internal/dto"
	"course-checkout-api/internal/middleware"
	ordermodel "course-checkout-api/internal/model/order"
	"course-checkout-api/internal/utils"
)

type OrderQuerier interface {
	Get(ctx context.Context, id, requester string) (*dto.OrderDetail, error)
	ListByUser(ctx context.Context, q dto.OrderListQuery) ([]ordermodel.Order, error)
}

type OrderHandler struct{ svc OrderQuerier }

func NewOrderHandler(svc OrderQuerier) *OrderHandler { return &OrderHandler{svc: svc} }

func (h *OrderHandler) Get(c *gin.Context) {
	detail, err := h.svc.Get(c.Request.Context(), c.Param("id"), middleware.Requester(c))
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(detail))
}

// List GET /api/v1/orders?user_id=
func (h *OrderHandler) List(c *gin.Context) {
	var q dto.OrderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	if !checkRequester(c, q.UserID) {
		return
	}
	list, err := h.svc.ListByUser(c.Request.Context(), q)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	if list == nil {
		list = []ordermodel.Order{}
	}
	c.JSON(http.StatusOK, dto.OK(list))
}
