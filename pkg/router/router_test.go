package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vperfumes/tracker/pkg/router"
)

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestGroupPrefixesRoutes(t *testing.T) {
	r := router.New()
	api := r.Group("/api")
	api.Get("/orders", "orders-list", ok)
	api.Post("/orders", "orders-create", ok)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/orders")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/orders")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRoutesListsEverything(t *testing.T) {
	r := router.New()
	r.Get("/ping", "ping", ok)
	r.Group("/api").Delete("/orders/{id}", "orders-delete", ok)

	routes := r.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "ping", routes[0].Name)
	assert.Equal(t, http.MethodDelete, routes[1].Method)
	assert.Equal(t, "/api/orders/{id}", routes[1].Path)
}

func TestURLSubstitutesParams(t *testing.T) {
	r := router.New()
	r.Get("/orders/{id}/history", "orders-history", ok)

	url, err := r.URL("orders-history", map[string]string{"id": "o1"})
	require.NoError(t, err)
	assert.Equal(t, "/orders/o1/history", url)

	_, err = r.URL("orders-history", nil)
	assert.Error(t, err, "unbound parameter")

	_, err = r.URL("nope", nil)
	assert.Error(t, err)
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(label string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, label)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := router.New()
	r.Use(mw("router"))
	r.Group("/api", mw("group")).Get("/ping", "ping", ok, mw("route"))

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	_, err := http.Get(srv.URL + "/api/ping")
	require.NoError(t, err)
	assert.Equal(t, []string{"router", "group", "route"}, order)
}
