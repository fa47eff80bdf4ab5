package gateway

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artishokq/order-payments-saga/internal/httpx"
)

func newBackends(t *testing.T) (orders, payments *httptest.Server, seen *[]string) {
	t.Helper()
	paths := []string{}
	orders = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, "orders:"+r.URL.Path)
		_, _ = w.Write([]byte(`{"from":"orders"}`))
	}))
	payments = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, "payments:"+r.URL.Path)
		_, _ = w.Write([]byte(`{"from":"payments"}`))
	}))
	t.Cleanup(orders.Close)
	t.Cleanup(payments.Close)
	return orders, payments, &paths
}

func TestProxyForwardsOrders(t *testing.T) {
	ordersSrv, paymentsSrv, seen := newBackends(t)
	p, err := New(ordersSrv.URL, paymentsSrv.URL)
	require.NoError(t, err)

	router := httpx.NewRouter()
	p.Register(router)
	edge := httptest.NewServer(router)
	defer edge.Close()

	resp, err := http.Get(edge.URL + "/api/v1/orders")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, `{"from":"orders"}`, string(body))
	assert.Contains(t, *seen, "orders:/api/v1/orders")
}

func TestProxyRewritesAccountsPath(t *testing.T) {
	ordersSrv, paymentsSrv, seen := newBackends(t)
	p, err := New(ordersSrv.URL, paymentsSrv.URL)
	require.NoError(t, err)

	router := httpx.NewRouter()
	p.Register(router)
	edge := httptest.NewServer(router)
	defer edge.Close()

	resp, err := http.Get(edge.URL + "/api/v1/accounts/42/balance")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, `{"from":"payments"}`, string(body))
	assert.Contains(t, *seen, "payments:/api/v1/payments/accounts/42/balance")
}
