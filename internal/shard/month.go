package shard

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// MonthTable 按月分表：base_YYYYMM（UTC）
func MonthTable(base string, t time.Time) string {
	if t.IsZero() || t.Year() < 2000 {
		log.Printf("[Shard] 非法时间: %v，使用当前时间", t)
		t = time.Now()
	}
	return fmt.Sprintf("%s_%s", base, t.UTC().Format("200601"))
}

// MonthRouter 返回写入时间对应的月表，首次使用某张表时调用 ensure 建表
type MonthRouter struct {
	base   string
	ensure func(table string) error

	mu    sync.Mutex
	ready map[string]bool
}

func NewMonthRouter(base string, ensure func(table string) error) *MonthRouter {
	return &MonthRouter{base: base, ensure: ensure, ready: make(map[string]bool)}
}

func (r *MonthRouter) Table(t time.Time) (string, error) {
	table := MonthTable(r.base, t)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready[table] {
		return table, nil
	}
	if r.ensure != nil {
		if err := r.ensure(table); err != nil {
			return "", fmt.Errorf("ensure table %s: %w", table, err)
		}
	}
	r.ready[table] = true
	return table, nil
}
