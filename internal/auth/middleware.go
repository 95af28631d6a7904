// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

// ClaimsContextKey is the context key under which Authenticate stores the
// validated Claims for downstream handlers.
const ClaimsContextKey contextKey = "claims"

// Authenticate returns middleware that requires a valid "Authorization:
// Bearer <token>" header, validated against manager. A missing or invalid
// token is rejected with 401 before next ever runs.
func Authenticate(manager *JWTManager) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, err := extractBearerToken(r)
			if err != nil {
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}
			claims, err := manager.ValidateToken(token)
			if err != nil {
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errMalformedHeader
	}
	return parts[1], nil
}

// ClaimsFromContext retrieves the Claims stored by Authenticate. Returns
// nil if the request was never authenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}

var (
	errMissingToken    = httpError("missing token")
	errMalformedHeader = httpError("malformed Authorization header")
)

type httpError string

func (e httpError) Error() string { return string(e) }
