// Package httpx holds the JSON response helpers shared by the HTTP handlers.
package httpx

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/platform/rbac"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ErrorBody is the JSON envelope of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes an ErrorBody.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorBody{Error: code, Message: message})
}

// WriteGuardError maps a guard result to a response: a denial keeps its status, code and
// message; anything else is an operational failure and becomes an opaque 500.
func WriteGuardError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if ae, ok := rbac.AsAuthError(err); ok {
		WriteError(w, ae.Status, string(ae.Code), ae.Message)
		return
	}
	WriteInternal(w, logger, err)
}

// WriteInternal logs err and writes a 500 that does not leak it.
func WriteInternal(w http.ResponseWriter, logger *zap.Logger, err error) {
	if logger != nil {
		logger.Error("request failed", zap.Error(err))
	}
	WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}

// Page reads limit and offset query parameters. limit defaults to DefaultPageSize and is
// capped at MaxPageSize; invalid values fall back to the defaults.
func Page(r *http.Request) (limit, offset int32) {
	limit = DefaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		if v > MaxPageSize {
			v = MaxPageSize
		}
		limit = int32(v)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		if v > math.MaxInt32 {
			v = math.MaxInt32
		}
		offset = int32(v)
	}
	return limit, offset
}
