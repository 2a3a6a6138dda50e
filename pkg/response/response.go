// Package response writes the tracking API's JSON responses.
//
// Success responses are the raw payload, not an envelope. Errors always use
// the {"detail": "..."} shape, matching what the client transport parses.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/vperfumes/tracker/pkg/logger"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response: encode", "error", err)
	}
}

// OK writes v with status 200.
func OK(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

// Created writes v with status 201.
func Created(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusCreated, v)
}

// Message writes a {"message": ...} body with status 200.
func Message(w http.ResponseWriter, format string, args ...interface{}) {
	JSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf(format, args...)})
}

// Detail writes a {"detail": ...} error body.
func Detail(w http.ResponseWriter, status int, format string, args ...interface{}) {
	JSON(w, status, map[string]string{"detail": fmt.Sprintf(format, args...)})
}

// ValidationFailed writes a 422 carrying the first failure from a field
// error map, chosen in field-name order so responses are deterministic.
func ValidationFailed(w http.ResponseWriter, errs map[string]string) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	Detail(w, http.StatusUnprocessableEntity, "%s", errs[fields[0]])
}

// Unauthorized writes the API's standard 401.
func Unauthorized(w http.ResponseWriter) {
	Detail(w, http.StatusUnauthorized, "Not authenticated")
}

// Forbidden writes the API's standard 403.
func Forbidden(w http.ResponseWriter) {
	Detail(w, http.StatusForbidden, "Not authorized")
}

// NotFound writes a 404 with the given subject.
func NotFound(w http.ResponseWriter, subject string) {
	Detail(w, http.StatusNotFound, "%s not found", subject)
}

// Internal writes the API's standard 500.
func Internal(w http.ResponseWriter) {
	Detail(w, http.StatusInternalServerError, "Internal Server Error")
}
