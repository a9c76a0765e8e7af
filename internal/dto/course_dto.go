package dto

// CourseListQuery 课程列表筛选参数
type CourseListQuery struct {
	PageQuery
	Pilar    string `form:"pilar" binding:"omitempty,max=64"`
	Level    string `form:"level" binding:"omitempty,max=32"`
	Status   string `form:"status" binding:"omitempty,max=32"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	MinPrice string `form:"min_price" binding:"omitempty,numeric"`
	MaxPrice string `form:"max_price" binding:"omitempty,numeric"`
}
