package repo

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"course-checkout-api/internal/datastore"
	coursemodel "course-checkout-api/internal/model/course"
)

const defaultCourseStatus = "active"

// CourseFilter 课程列表筛选条件
type CourseFilter struct {
	Pilar    string
	Level    string
	Status   string // 为空时只看 active
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Limit    int
	Offset   int
}

type CourseRepo struct {
	store Store
}

func NewCourseRepo(store Store) *CourseRepo {
	return &CourseRepo{store: store}
}

func (r *CourseRepo) List(ctx context.Context, f CourseFilter) ([]coursemodel.Course, error) {
	q := datastore.NewQuery()
	if f.Pilar != "" {
		q.Eq("pilar", f.Pilar)
	}
	if f.Level != "" {
		q.Eq("level", f.Level)
	}
	status := f.Status
	if status == "" {
		status = defaultCourseStatus
	}
	q.Eq("status", status)
	if f.MinPrice != nil {
		q.Gte("price", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		q.Lte("price", f.MaxPrice.String())
	}
	if s := sanitizeSearch(f.Search); s != "" {
		q.Or("title.ilike.*"+s+"*", "description.ilike.*"+s+"*")
	}
	q.Order("created_at", true).Limit(f.Limit).Offset(f.Offset)

	rows := make([]coursemodel.Course, 0)
	if err := r.store.Select(ctx, tableCourses, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// GetByID 未找到返回 nil, nil
func (r *CourseRepo) GetByID(ctx context.Context, id string) (*coursemodel.Course, error) {
	var rows []coursemodel.Course
	if err := r.store.Select(ctx, tableCourses, datastore.NewQuery().Eq("id", id).Limit(1), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// sanitizeSearch 去掉会破坏 or=(...) 语法的字符
func sanitizeSearch(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ',', '(', ')', '*', '"':
			return -1
		}
		return r
	}, s)
}
