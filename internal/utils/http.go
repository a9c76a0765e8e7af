package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPResult 上游调用的原始结果，便于排查问题
type HTTPResult struct {
	StatusCode   int
	Body         []byte
	Raw          string
	TransportErr string
}

// OK 2xx 视为成功
func (r *HTTPResult) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode 将响应体解析到 v，空响应体不报错
func (r *HTTPResult) Decode(v any) error {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Parsed 将响应体解析为任意 JSON，解析失败返回原始字符串
func (r *HTTPResult) Parsed() any {
	if r == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return r.Raw
	}
	return v
}

// NewHTTPClient 统一的上游 HTTP 客户端
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// DoJSON 发送一次 JSON 请求；传输层失败时同时返回 result（TransportErr 已填充）与 error
func DoJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, payload any) (*HTTPResult, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal json error: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("new request error: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		result := &HTTPResult{TransportErr: err.Error()}
		return result, fmt.Errorf("http request error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		result := &HTTPResult{StatusCode: resp.StatusCode, TransportErr: err.Error()}
		return result, fmt.Errorf("read response error: %w", err)
	}

	return &HTTPResult{
		StatusCode: resp.StatusCode,
		Body:       raw,
		Raw:        string(raw),
	}, nil
}
