package repo

import (
	"context"
	"time"

	"course-checkout-api/internal/datastore"
	ordermodel "course-checkout-api/internal/model/order"
)

type OrderRepo struct {
	store Store
}

func NewOrderRepo(store Store) *OrderRepo {
	return &OrderRepo{store: store}
}

// Insert 返回数据存储中的行（含 id）；未返回行时原样返回入参
func (r *OrderRepo) Insert(ctx context.Context, o *ordermodel.Order) (*ordermodel.Order, error) {
	var rows []ordermodel.Order
	if err := r.store.Insert(ctx, tableOrders, o, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return o, nil
	}
	return &rows[0], nil
}

// GetByID 未找到返回 nil, nil
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*ordermodel.Order, error) {
	return r.first(ctx, datastore.NewQuery().Eq("id", id).Limit(1))
}

// GetByChargeID 按网关收款ID查找
func (r *OrderRepo) GetByChargeID(ctx context.Context, chargeID string) (*ordermodel.Order, error) {
	return r.first(ctx, datastore.NewQuery().Eq("asaas_id", chargeID).Limit(1))
}

func (r *OrderRepo) first(ctx context.Context, q *datastore.Query) (*ordermodel.Order, error) {
	var rows []ordermodel.Order
	if err := r.store.Select(ctx, tableOrders, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status ordermodel.Status, at time.Time) error {
	patch := ordermodel.StatusPatch{Status: status, UpdatedAt: at.UTC()}
	return r.store.Update(ctx, tableOrders, datastore.NewQuery().Eq("id", id), patch, nil)
}

// ListByUser 按创建时间倒序
func (r *OrderRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]ordermodel.Order, error) {
	q := datastore.NewQuery().
		Eq("user_id", userID).
		Order("created_at", true).
		Limit(limit).
		Offset(offset)
	rows := make([]ordermodel.Order, 0)
	if err := r.store.Select(ctx, tableOrders, q, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
