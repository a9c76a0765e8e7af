package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("access_token"))
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"cus_1","name":"` + in["name"].(string) + `"}`))
	}))
	defer srv.Close()

	res, err := DoJSON(context.Background(), NewHTTPClient(0), http.MethodPost, srv.URL, map[string]string{"access_token": "secret"}, map[string]string{"name": "Ana"})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var out struct{ ID, Name string }
	require.NoError(t, res.Decode(&out))
	assert.Equal(t, "cus_1", out.ID)
	assert.Equal(t, "Ana", out.Name)
}

func TestDoJSON_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res, err := DoJSON(context.Background(), NewHTTPClient(0), http.MethodGet, url, nil, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.TransportErr)
	assert.False(t, res.OK())
}

func TestHTTPResultParsed(t *testing.T) {
	r := &HTTPResult{Body: []byte(`{"errors":[{"code":"x"}]}`)}
	assert.IsType(t, map[string]any{}, r.Parsed())

	r = &HTTPResult{Body: []byte(`<html>`), Raw: "<html>"}
	assert.Equal(t, "<html>", r.Parsed())
}

func TestStringOrNumber(t *testing.T) {
	var v struct {
		A StringOrNumber `json:"a"`
		B StringOrNumber `json:"b"`
		C StringOrNumber `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":42,"b":"7f1c","c":null}`), &v))
	assert.Equal(t, "42", v.A.String())
	assert.Equal(t, "7f1c", v.B.String())
	assert.Equal(t, "", v.C.String())
}

func TestStringOrNumberRejectsNonScalars(t *testing.T) {
	for _, body := range []string{`{"a":{"x":1}}`, `{"a":true}`, `{"a":[1]}`} {
		var v struct {
			A StringOrNumber `json:"a"`
		}
		assert.Error(t, json.Unmarshal([]byte(body), &v), body)
	}
}

func TestStringOrNumberDecimal(t *testing.T) {
	d, ok := StringOrNumber("199.90").Decimal()
	require.True(t, ok)
	assert.Equal(t, "199.9", d.String())

	for _, s := range []StringOrNumber{"", "R$ 10,00", "abc"} {
		_, ok := s.Decimal()
		assert.False(t, ok, string(s))
	}
}

func TestVerifyToken(t *testing.T) {
	assert.True(t, VerifyToken("abc", "abc"))
	assert.False(t, VerifyToken("abd", "abc"))
	assert.False(t, VerifyToken("", ""))
	assert.False(t, VerifyToken("abc", ""))
}

func TestHashKey(t *testing.T) {
	a := HashKey("u1", "c1", "297.00")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashKey(" u1", "c1 ", "297.00"))
	assert.NotEqual(t, a, HashKey("u1", "c1", "297.01"))
}

func TestMaskDigits(t *testing.T) {
	assert.Equal(t, "************1111", MaskDigits("4111111111111111", 4))
	assert.Equal(t, "12", MaskDigits("12", 4))
}

func TestClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	var got []string
	r.GET("/", func(c *gin.Context) { got = append(got, ClientIP(c)) })

	for _, remote := range []string{"203.0.113.7:4000", "203.0.113.8", "bogus"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		req.Header.Set("X-Forwarded-For", "10.0.0.1")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, []string{"203.0.113.7", "203.0.113.8", ""}, got)
}
