package datastore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-checkout-api/internal/constant"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewClient(srv.URL, "service-key", srv.Client(), log)
}

func TestQueryEncode(t *testing.T) {
	q := NewQuery().
		Eq("status", "active").
		Gte("price", 10).
		Lte("price", 99.9).
		Or("title.ilike.*go*", "description.ilike.*go*").
		Order("created_at", true).
		Limit(20).
		Offset(40)

	v := q.Values()
	assert.Equal(t, "eq.active", v.Get("status"))
	assert.Equal(t, []string{"gte.10", "lte.99.9"}, v["price"])
	assert.Equal(t, "(title.ilike.*go*,description.ilike.*go*)", v.Get("or"))
	assert.Equal(t, "created_at.desc", v.Get("order"))
	assert.Equal(t, "20", v.Get("limit"))
	assert.Equal(t, "40", v.Get("offset"))
}

func TestQueryZeroPagingOmitted(t *testing.T) {
	q := NewQuery().In("id", "1", "2").Limit(0).Offset(0)
	assert.Equal(t, "in.(1,2)", q.Values().Get("id"))
	assert.Empty(t, q.Values().Get("limit"))
	assert.Empty(t, q.Values().Get("offset"))
	assert.Equal(t, "", (*Query)(nil).Encode())
}

func TestSelectSendsAuthHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/orders", r.URL.Path)
		assert.Equal(t, "eq.pay_1", r.URL.Query().Get("asaas_id"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		_, _ = w.Write([]byte(`[{"id":7,"asaas_id":"pay_1"}]`))
	})

	var rows []map[string]any
	err := c.Select(context.Background(), "orders", NewQuery().Eq("asaas_id", "pay_1"), &rows)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "pay_1", rows[0]["asaas_id"])
}

func TestInsertPostsBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1", body["user_id"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":1,"user_id":"u1"}]`))
	})

	var rows []map[string]any
	err := c.Insert(context.Background(), "orders", map[string]any{"user_id": "u1"}, &rows)
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows[0]["id"])
}

func TestUpdateErrorCarriesDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"column missing"}`))
	})

	err := c.Update(context.Background(), "orders", NewQuery().Eq("id", 1), map[string]string{"status": "paid"}, nil)
	require.Error(t, err)
	ce, ok := constant.As(err)
	require.True(t, ok)
	assert.Equal(t, constant.KindUpstream, ce.Kind())
	details := ce.Details().(map[string]any)
	assert.Equal(t, http.StatusBadRequest, details["status"])
	assert.Equal(t, map[string]any{"message": "column missing"}, details["body"])
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	log := logrus.New()
	log.SetOutput(io.Discard)
	c := NewClient(srv.URL, "k", nil, log)

	err := c.Delete(context.Background(), "orders", NewQuery().Eq("id", 1))
	require.Error(t, err)
	assert.Equal(t, constant.KindUpstream, constant.KindOf(err))
}
