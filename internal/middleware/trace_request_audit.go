package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ordermodel "course-checkout-api/internal/model/order"
	"course-checkout-api/internal/utils"
)

const (
	maxAuditBody    = 8 << 10
	maxAuditCapture = 64 << 10
)

// AuditSink *logger.AuditWriter 满足
type AuditSink interface {
	Write(entry ordermodel.RequestLog)
}

type bodyWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w bodyWriter) Write(b []byte) (int, error) {
	if w.buf.Len() < maxAuditBody {
		w.buf.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

func (w bodyWriter) WriteString(s string) (int, error) {
	if w.buf.Len() < maxAuditBody {
		w.buf.WriteString(s)
	}
	return w.ResponseWriter.WriteString(s)
}

// TraceAudit 生成 trace id，记录请求与响应；卡号等敏感字段入库前脱敏
func TraceAudit(sink AuditSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.New().String()
		}
		c.Set(CtxTraceID, traceID)
		c.Writer.Header().Set("X-Trace-ID", traceID)

		// 最多预读 maxAuditCapture，剩余部分原样留给 handler
		var reqBody []byte
		oversized := false
		if c.Request.Body != nil {
			reqBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditCapture+1))
			oversized = len(reqBody) > maxAuditCapture
			c.Request.Body = readCloser{
				Reader: io.MultiReader(bytes.NewReader(reqBody), c.Request.Body),
				Closer: c.Request.Body,
			}
		}
		bw := bodyWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = bw
		start := time.Now()

		c.Next()

		if sink == nil {
			return
		}
		entry := ordermodel.RequestLog{
			TraceID:      traceID,
			Method:       c.Request.Method,
			Path:         c.FullPath(),
			UserID:       c.GetString(CtxUserID),
			ChargeID:     c.GetString(CtxChargeID),
			HTTPStatus:   c.Writer.Status(),
			RequestBody:  auditRequestBody(reqBody, oversized),
			ResponseBody: truncate(bw.buf.String()),
			IP:           utils.ClientIP(c),
			UserAgent:    c.Request.UserAgent(),
			LatencyMs:    time.Since(start).Milliseconds(),
			CreatedAt:    start.UTC(),
		}
		if entry.Path == "" {
			entry.Path = c.Request.URL.Path
		}
		if len(c.Errors) > 0 {
			entry.ErrorMsg = c.Errors.String()
		}
		sink.Write(entry)
	}
}

// MaskSensitive 卡号只留后四位，CVV 与有效期全部隐藏
func MaskSensitive(body []byte) string {
	var m map[string]any
	if len(body) == 0 || json.Unmarshal(body, &m) != nil {
		return string(body)
	}
	card, ok := m["card"].(map[string]any)
	if !ok {
		return string(body)
	}
	if n, ok := card["number"]; ok {
		card["number"] = utils.MaskDigits(utils.OnlyDigits(toString(n)), 4)
	}
	for _, k := range []string{"ccv", "expiry_month", "expiry_year"} {
		if _, ok := card[k]; ok {
			card[k] = "***"
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

// 超长请求体无法解析脱敏，只记长度
func auditRequestBody(body []byte, oversized bool) string {
	if oversized {
		return fmt.Sprintf("[omitted: body over %d bytes]", maxAuditCapture)
	}
	return truncate(MaskSensitive(body))
}

// truncate 按字节截断，回退到完整 UTF-8 字符边界，避免 utf8mb4 列拒绝写入
func truncate(s string) string {
	if len(s) <= maxAuditBody {
		return s
	}
	n := maxAuditBody
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
