package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error codes returned in errResponse.Code.
const (
	codeNotFound     = "not_found"
	codeInvalidInput = "invalid_input"
	codeNotReady     = "not_ready"
	codeUnauthorized = "unauthorized"
	codeInternal     = "internal"
)

// writeJSON encodes v as the response body. Preview responses change on
// every rebuild and are never cached.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Code  string `json:"code" example:"not_found" validate:"required"`
	Error string `json:"error" validate:"required"`
}

func errorBody(code, msg string) errResponse {
	return errResponse{Code: code, Error: msg}
}
