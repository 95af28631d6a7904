// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"
)

// loginRequest carries the shared operator secret. There is no
// username/password database here: one secret, one role, configured at
// deploy time as config.Security.JWTSecret.
type loginRequest struct {
	Secret string `json:"secret"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login exchanges the operator secret for a short-lived bearer token.
// It deliberately has no notion of users or roles beyond "operator":
// anyone holding the secret gets full access to the status API.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.jwtManager == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "authentication not configured")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	if h.config == nil || !validSecret(req.Secret, h.config.Security.JWTSecret) {
		respondError(w, r, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid secret")
		return
	}

	token, err := h.jwtManager.IssueToken("operator")
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue operator token")
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to issue token")
		return
	}

	respondSuccess(w, r, loginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.config.Security.TokenTTL),
	})
}

// validSecret compares in constant time to avoid leaking the secret
// through response-time side channels.
func validSecret(given, want string) bool {
	if given == "" || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
}
