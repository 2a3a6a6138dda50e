package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/vperfumes/tracker/pkg/logger"
)

// Recovery catches any panic in downstream handlers, logs the stack trace,
// and returns a 500 in the API's {"detail": ...} error shape. Register it
// first so it wraps all other middleware and handlers.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					"error", fmt.Sprintf("%v", err),
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"detail":"Internal Server Error"}`)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
