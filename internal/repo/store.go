package repo

import (
	"context"

	"course-checkout-api/internal/datastore"
)

// Store 远程数据存储，*datastore.Client 满足
type Store interface {
	Select(ctx context.Context, table string, q *datastore.Query, out any) error
	Insert(ctx context.Context, table string, row any, out any) error
	Update(ctx context.Context, table string, q *datastore.Query, patch any, out any) error
}

const (
	tableOrders  = "orders"
	tableCourses = "courses"
)
