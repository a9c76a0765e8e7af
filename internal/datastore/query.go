package datastore

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query PostgREST 查询参数构造器：过滤、排序、分页
type Query struct {
	params url.Values
}

func NewQuery() *Query {
	return &Query{params: url.Values{}}
}

func (q *Query) filter(col, op string, v any) *Query {
	q.params.Add(col, op+"."+fmt.Sprint(v))
	return q
}

func (q *Query) Select(cols string) *Query {
	q.params.Set("select", cols)
	return q
}

func (q *Query) Eq(col string, v any) *Query  { return q.filter(col, "eq", v) }
func (q *Query) Neq(col string, v any) *Query { return q.filter(col, "neq", v) }
func (q *Query) Gt(col string, v any) *Query  { return q.filter(col, "gt", v) }
func (q *Query) Gte(col string, v any) *Query { return q.filter(col, "gte", v) }
func (q *Query) Lt(col string, v any) *Query  { return q.filter(col, "lt", v) }
func (q *Query) Lte(col string, v any) *Query { return q.filter(col, "lte", v) }

// Like 模式中用 * 作为通配符
func (q *Query) Like(col, pattern string) *Query  { return q.filter(col, "like", pattern) }
func (q *Query) ILike(col, pattern string) *Query { return q.filter(col, "ilike", pattern) }

func (q *Query) In(col string, values ...string) *Query {
	return q.filter(col, "in", "("+strings.Join(values, ",")+")")
}

// Or 条件形如 "title.ilike.*abc*"
func (q *Query) Or(conds ...string) *Query {
	q.params.Add("or", "("+strings.Join(conds, ",")+")")
	return q
}

func (q *Query) Order(col string, desc bool) *Query {
	dir := "asc"
	if desc {
		dir = "desc"
	}
	q.params.Add("order", col+"."+dir)
	return q
}

func (q *Query) Limit(n int) *Query {
	if n > 0 {
		q.params.Set("limit", strconv.Itoa(n))
	}
	return q
}

func (q *Query) Offset(n int) *Query {
	if n > 0 {
		q.params.Set("offset", strconv.Itoa(n))
	}
	return q
}

// Encode 生成 query string（不含 ?）
func (q *Query) Encode() string {
	if q == nil {
		return ""
	}
	return q.params.Encode()
}

// Values 返回底层参数，便于测试断言
func (q *Query) Values() url.Values {
	if q == nil {
		return url.Values{}
	}
	return q.params
}
