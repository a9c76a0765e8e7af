package datastore

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"course-checkout-api/internal/constant"
	"course-checkout-api/internal/utils"
)

// Client Supabase REST (PostgREST) 表接口封装
type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
	log        logrus.FieldLogger
	observer   Observer
}

// Observer *health.Tracker 满足
type Observer interface {
	Observe(ctx context.Context, upstream string, success bool)
}

func NewClient(baseURL, serviceKey string, httpClient *http.Client, log logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = utils.NewHTTPClient(0)
	}
	return &Client{baseURL: baseURL, serviceKey: serviceKey, http: httpClient, log: log}
}

func (c *Client) WithObserver(o Observer) *Client {
	c.observer = o
	return c
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"apikey":        c.serviceKey,
		"Authorization": "Bearer " + c.serviceKey,
		"Prefer":        "return=representation", // 写操作返回受影响的数据
	}
}

func (c *Client) endpoint(table string, q *Query) string {
	u := c.baseURL + "/rest/v1/" + table
	if qs := q.Encode(); qs != "" {
		u += "?" + qs
	}
	return u
}

// Do 发起一次表请求，非 2xx 统一转为 upstream 错误
func (c *Client) Do(ctx context.Context, method, table string, q *Query, body any) (*utils.HTTPResult, error) {
	url := c.endpoint(table, q)
	res, err := utils.DoJSON(ctx, c.http, method, url, c.headers(), body)
	if c.observer != nil {
		c.observer.Observe(ctx, "supabase", err == nil && res.StatusCode < http.StatusInternalServerError)
	}
	if err != nil {
		c.log.WithFields(logrus.Fields{"method": method, "table": table}).WithError(err).Error("[DataStore] 请求失败")
		return res, constant.Wrap(constant.KindUpstream, "data store request failed", err).
			WithData(map[string]any{"transport_error": transportErr(res, err)})
	}
	if !res.OK() {
		c.log.WithFields(logrus.Fields{"method": method, "table": table, "status": res.StatusCode}).
			Warnf("[DataStore] 返回错误: %s", res.Raw)
		return res, constant.Upstream("data store request failed", map[string]any{
			"status": res.StatusCode,
			"body":   res.Parsed(),
		})
	}
	return res, nil
}

// Select GET table?filters，结果解析到 out（通常为切片）
func (c *Client) Select(ctx context.Context, table string, q *Query, out any) error {
	res, err := c.Do(ctx, http.MethodGet, table, q, nil)
	if err != nil {
		return err
	}
	return decode(res, out)
}

// Insert POST table，返回插入后的行
func (c *Client) Insert(ctx context.Context, table string, row any, out any) error {
	res, err := c.Do(ctx, http.MethodPost, table, nil, row)
	if err != nil {
		return err
	}
	return decode(res, out)
}

// Update PATCH table?filters，返回更新后的行
func (c *Client) Update(ctx context.Context, table string, q *Query, patch any, out any) error {
	res, err := c.Do(ctx, http.MethodPatch, table, q, patch)
	if err != nil {
		return err
	}
	return decode(res, out)
}

func (c *Client) Delete(ctx context.Context, table string, q *Query) error {
	_, err := c.Do(ctx, http.MethodDelete, table, q, nil)
	return err
}

func decode(res *utils.HTTPResult, out any) error {
	if out == nil {
		return nil
	}
	if err := res.Decode(out); err != nil {
		return constant.Wrap(constant.KindUpstream, "unexpected data store response", err).
			WithData(res.Parsed())
	}
	return nil
}

func transportErr(res *utils.HTTPResult, err error) string {
	if res != nil && res.TransportErr != "" {
		return res.TransportErr
	}
	return err.Error()
}
