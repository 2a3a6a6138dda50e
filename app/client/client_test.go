package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vperfumes/tracker/app/client"
	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/pkg/api"
)

func newTestClient(t *testing.T, handler http.Handler) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := api.New(api.WithBaseURL(srv.URL), api.WithCookieFile(""))
	require.NoError(t, err)
	return client.New(a)
}

func TestLoginReturnsIdentity(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "aroma1", creds["username"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"user": models.Identity{ID: "u1", Username: "aroma1", Role: "company", CompanyName: "Aroma Delivery"},
		})
	}))

	identity, err := c.Login(context.Background(), "aroma1", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.ID)
	assert.True(t, identity.IsCompany())
}

func TestLoginBadCredentials(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect username or password"}`))
	}))

	_, err := c.Login(context.Background(), "aroma1", "wrong")
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestOrdersDecodesList(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		w.Write([]byte(`[{"id":"o1","order_number":"1001","status":"جاري","order_date":"2025-03-10"}]`))
	}))

	orders, err := c.Orders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.StatusOngoing, orders[0].Status)
}

func TestCreateOrderSendsInput(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var in models.OrderInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "1001", in.OrderNumber)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Order{ID: "o1", OrderNumber: in.OrderNumber})
	}))

	order, err := c.CreateOrder(context.Background(), models.OrderInput{OrderNumber: "1001"})
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
}

func TestUpdateOrderUsesPut(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/orders/o1", r.URL.Path)
		json.NewEncoder(w).Encode(models.Order{ID: "o1"})
	}))

	_, err := c.UpdateOrder(context.Background(), "o1", models.OrderInput{})
	require.NoError(t, err)
}

func TestDeleteOrderSurfacesNotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Order not found"}`))
	}))

	err := c.DeleteOrder(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Order not found")
}

func TestReportPassesDate(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/report", r.URL.Path)
		assert.Equal(t, "2025-03-10", r.URL.Query().Get("date"))
		w.Write([]byte(`[]`))
	}))

	orders, err := c.Report(context.Background(), "2025-03-10")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestStats(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats", r.URL.Path)
		w.Write([]byte(`{"total":10,"ongoing":4,"completed":5,"cancelled":1}`))
	}))

	stats, err := c.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 4, stats.Ongoing)
}

func TestResetCompanyPassword(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/companies/c1/reset-password", r.URL.Path)
		json.NewEncoder(w).Encode(models.ResetPasswordResult{
			CompanyName: "Aroma Delivery", Username: "aroma1", NewPassword: "Zx9Yw8Vu7T",
		})
	}))

	result, err := c.ResetCompanyPassword(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, result.NewPassword, 10)
}

func TestOrderHistory(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/o1/history", r.URL.Path)
		w.Write([]byte(`[{"id":"h1","order_id":"o1","action":"updated","changes":{"status":{"old":"جاري","new":"تم"}}}]`))
	}))

	entries, err := c.OrderHistory(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "updated", entries[0].Action)
	assert.Contains(t, entries[0].Changes, "status")
}
