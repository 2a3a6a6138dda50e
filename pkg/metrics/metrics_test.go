package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vperfumes/tracker/pkg/metrics"
)

// Instrumented routes include the push channel, so the status wrapper must
// keep the writer hijackable for WebSocket upgrades.
func TestMiddlewareAllowsHijack(t *testing.T) {
	h := metrics.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok, "instrumented writer must remain an http.Hijacker")

		conn, buf, err := hj.Hijack()
		require.NoError(t, err)
		defer conn.Close()

		buf.WriteString("HTTP/1.1 204 No Content\r\nConnection: close\r\n\r\n")
		require.NoError(t, buf.Flush())
	}))

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHandlerServesRegistry(t *testing.T) {
	srv := httptest.NewServer(metrics.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
