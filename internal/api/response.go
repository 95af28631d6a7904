// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/movici/simulation-core/internal/logging"
)

// Envelope is the wrapper every status API response uses, success or
// error, so clients parse one shape regardless of endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta carries response metadata useful for tracing.
type Meta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes used across the status API.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, env Envelope) {
	env.Meta.Timestamp = time.Now()
	if env.Meta.RequestID == "" {
		env.Meta.RequestID = logging.RequestIDFromContext(r.Context())
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondSuccess writes a 200 response wrapping data.
func respondSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	writeJSON(w, r, http.StatusOK, Envelope{Success: true, Data: data})
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, Envelope{Success: false, Error: &APIError{Code: code, Message: message}})
}
