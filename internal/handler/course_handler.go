package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"course-checkout-api/internal/dto"
	coursemodel "course-checkout-api/internal/model/course"
	"course-checkout-api/internal/utils"
)

type CourseQuerier interface {
	List(ctx context.Context, q dto.CourseListQuery) ([]coursemodel.Course, error)
	Get(ctx context.Context, id string) (*coursemodel.Course, error)
}

type CourseHandler struct{ svc CourseQuerier }

func NewCourseHandler(svc CourseQuerier) *CourseHandler { return &CourseHandler{svc: svc} }

func (h *CourseHandler) List(c *gin.Context) {
	var q dto.CourseListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	list, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	if list == nil {
		list = []coursemodel.Course{}
	}
	c.JSON(http.StatusOK, dto.OK(list))
}

func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.OK(course))
}
