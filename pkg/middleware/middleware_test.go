package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vperfumes/tracker/pkg/middleware"
)

// The push channel upgrades through the full middleware chain, so the logging
// wrapper has to expose the underlying connection for hijacking.
func TestLoggerAllowsHijack(t *testing.T) {
	srv := httptest.NewServer(middleware.Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		require.True(t, ok, "wrapped writer must remain an http.Hijacker")

		conn, buf, err := hj.Hijack()
		require.NoError(t, err)
		defer conn.Close()

		buf.WriteString("HTTP/1.1 204 No Content\r\nConnection: close\r\n\r\n")
		require.NoError(t, buf.Flush())
	})))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestLoggerSetsRequestID(t *testing.T) {
	srv := httptest.NewServer(middleware.Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
