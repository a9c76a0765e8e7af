package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordermodel "course-checkout-api/internal/model/order"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.Any("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"requester": c.GetString(CtxRequester)})
	})
	return r
}

func TestWebhookToken(t *testing.T) {
	r := newEngine(WebhookToken("whsec"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.Header.Set("asaas-access-token", "whsec")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	for _, token := range []string{"", "wrong"} {
		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, "/ping", nil)
		if token != "" {
			req.Header.Set("asaas-access-token", token)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid webhook token")
	}
}

func signToken(t *testing.T, secret, sub string, method jwt.SigningMethod) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTAuth(t *testing.T) {
	r := newEngine(JWTAuth("jwt-secret"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "jwt-secret", "user-1", jwt.SigningMethodHS256))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"requester":"user-1"}`, w.Body.String())

	cases := map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"bad secret": "Bearer " + signToken(t, "other", "user-1", jwt.SigningMethodHS256),
		"no subject": "Bearer " + signToken(t, "jwt-secret", "", jwt.SigningMethodHS256),
	}
	for name, header := range cases {
		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodGet, "/ping", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestJWTAuthDisabled(t *testing.T) {
	r := newEngine(JWTAuth(""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitPerIP(t *testing.T) {
	r := newEngine(RateLimit(NewIPRateLimiter(1, 1)))

	do := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":5000"
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, do("192.0.2.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("192.0.2.1"))
	assert.Equal(t, http.StatusOK, do("192.0.2.2"))
}

func TestRateLimitUsesTrustedProxiesOnly(t *testing.T) {
	do := func(r *gin.Engine, remote, forwarded string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = remote + ":5000"
		req.Header.Set("X-Forwarded-For", forwarded)
		r.ServeHTTP(w, req)
		return w.Code
	}

	direct := newEngine(RateLimit(NewIPRateLimiter(1, 1)))
	require.NoError(t, direct.SetTrustedProxies(nil))
	allowed := 0
	for i := 1; i <= 20; i++ {
		if do(direct, "203.0.113.7", fmt.Sprintf("10.0.0.%d", i)) == http.StatusOK {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)

	proxied := newEngine(RateLimit(NewIPRateLimiter(1, 1)))
	require.NoError(t, proxied.SetTrustedProxies([]string{"10.1.0.1"}))
	assert.Equal(t, http.StatusOK, do(proxied, "10.1.0.1", "198.51.100.1"))
	assert.Equal(t, http.StatusOK, do(proxied, "10.1.0.1", "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, do(proxied, "10.1.0.1", "198.51.100.2"))
}

func TestRateLimiterCleanup(t *testing.T) {
	l := NewIPRateLimiter(10, 10)
	l.idle = 0
	l.Allow("192.0.2.9")
	time.Sleep(time.Millisecond)
	l.Cleanup()
	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Empty(t, l.limiters)
}

func TestMaskSensitive(t *testing.T) {
	body := `{"user_id":"u1","card":{"holder_name":"ANA","number":"4111 1111 1111 1234","expiry_month":"12","expiry_year":"2030","ccv":"123"}}`
	out := MaskSensitive([]byte(body))

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	card := m["card"].(map[string]any)
	assert.Equal(t, "************1234", card["number"])
	assert.Equal(t, "***", card["ccv"])
	assert.Equal(t, "***", card["expiry_month"])
	assert.Equal(t, "ANA", card["holder_name"])
	assert.NotContains(t, out, "4111")

	assert.Equal(t, `{"event":"PAYMENT_RECEIVED"}`, MaskSensitive([]byte(`{"event":"PAYMENT_RECEIVED"}`)))
	assert.Equal(t, "not json", MaskSensitive([]byte("not json")))
}

type captureSink struct {
	mu      sync.Mutex
	entries []ordermodel.RequestLog
}

func (s *captureSink) Write(e ordermodel.RequestLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

func TestTraceAuditWritesEntry(t *testing.T) {
	sink := &captureSink{}
	r := gin.New()
	r.Use(TraceAudit(sink))
	r.POST("/api/v1/checkout", func(c *gin.Context) {
		c.Set(CtxUserID, "u1")
		c.Set(CtxChargeID, "pay_1")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout",
		strings.NewReader(`{"card":{"number":"4111111111111234","ccv":"999"}}`))
	req.RemoteAddr = "198.51.100.7:4000"
	r.ServeHTTP(w, req)

	require.Len(t, sink.entries, 1)
	e := sink.entries[0]
	assert.Equal(t, w.Header().Get("X-Trace-ID"), e.TraceID)
	assert.NotEmpty(t, e.TraceID)
	assert.Equal(t, "/api/v1/checkout", e.Path)
	assert.Equal(t, "u1", e.UserID)
	assert.Equal(t, "pay_1", e.ChargeID)
	assert.Equal(t, http.StatusOK, e.HTTPStatus)
	assert.Equal(t, "198.51.100.7", e.IP)
	assert.JSONEq(t, `{"ok":true}`, e.ResponseBody)
	assert.NotContains(t, e.RequestBody, "999")
	assert.Contains(t, e.RequestBody, "1234")
}

func TestTraceAuditLargeBodyPassesThrough(t *testing.T) {
	sink := &captureSink{}
	r := gin.New()
	r.Use(TraceAudit(sink))
	var seen int
	r.POST("/upload", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		seen = len(b)
		c.Status(http.StatusNoContent)
	})

	body := strings.Repeat("a", maxAuditCapture*2)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(body)))

	assert.Equal(t, len(body), seen)
	require.Len(t, sink.entries, 1)
	assert.Less(t, len(sink.entries[0].RequestBody), 100)
	assert.Contains(t, sink.entries[0].RequestBody, "omitted")
}

func TestTruncateKeepsRunes(t *testing.T) {
	s := "a" + strings.Repeat("ç", maxAuditBody)
	out := truncate(s)
	assert.True(t, utf8.ValidString(out))
	assert.LessOrEqual(t, len(out), maxAuditBody)
	assert.Equal(t, "short", truncate("short"))
}

func TestTraceAuditKeepsValidTraceHeader(t *testing.T) {
	r := newEngine(TraceAudit(nil))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-ID", "6f1c2a8e-3b7d-4e55-9a0b-1c2d3e4f5a6b")
	r.ServeHTTP(w, req)
	assert.Equal(t, "6f1c2a8e-3b7d-4e55-9a0b-1c2d3e4f5a6b", w.Header().Get("X-Trace-ID"))
}

func TestRecoverReturns500(t *testing.T) {
	log := logrus.New()
	log.SetOutput(new(strings.Builder))
	r := gin.New()
	r.Use(TraceAudit(nil), Recover(log))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal error")
}
