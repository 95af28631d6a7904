// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/movici/simulation-core/internal/auth"
	"github.com/movici/simulation-core/internal/config"
	"github.com/movici/simulation-core/internal/logging"
)

// Router builds the status API's chi.Router from a Handler and the
// security settings that drive CORS and rate limiting.
type Router struct {
	handler  *Handler
	security config.SecurityConfig
}

// NewRouter constructs a Router. Call Setup to obtain the http.Handler
// to serve.
func NewRouter(handler *Handler, security config.SecurityConfig) *Router {
	return &Router{handler: handler, security: security}
}

// Setup wires the global middleware stack and every route, in the
// order the teacher project standardized on: request ID and logging
// first, then recovery, then CORS (which must be global so it can
// answer OPTIONS preflights on every route).
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.corsMiddleware())
	r.Use(securityHeaders())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.rateLimit(1000, time.Minute))
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.rateLimit(5, 5*time.Minute))
		r.Post("/login", router.handler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(router.rateLimit(router.security.RateLimitReqs, router.security.RateLimitWindow))
		r.Use(router.requireAuth())
		r.Get("/ws", router.handler.WebSocket)
		r.Get("/api/v1/connectors", router.handler.Connectors)
	})

	return r
}

// requireAuth adapts auth.Authenticate to chi's middleware shape. A nil
// jwtManager means the status API was started without auth configured,
// so the route is refused outright rather than panicking inside
// ValidateToken.
func (router *Router) requireAuth() func(http.Handler) http.Handler {
	if router.handler.jwtManager == nil {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "authentication not configured")
			})
		}
	}
	authenticate := auth.Authenticate(router.handler.jwtManager)
	return func(next http.Handler) http.Handler {
		return authenticate(next.ServeHTTP)
	}
}

// corsMiddleware wraps go-chi/cors with the security config's allowed
// origins. It exposes no cross-origin cookies: the status API is
// bearer-token only, so there is nothing for a browser to send
// automatically that would need credentialed CORS.
func (router *Router) corsMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   router.security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// rateLimit builds an IP-keyed go-chi/httprate limiter. A non-positive
// request count disables limiting, which keeps tests and local runs
// with a zero-value config usable.
func (router *Router) rateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(requests, window)
}

// securityHeaders sets the handful of headers every response should
// carry regardless of route.
func securityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestIDWithLogging assigns a request ID (reusing chi's generator
// via the header it sets) and stores it in the request context so
// handlers and response envelopes can trace a single call end to end.
func requestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		chiNext := chimiddleware.RequestID(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimiddleware.GetReqID(r.Context())
			ctx := logging.ContextWithRequestID(r.Context(), reqID)
			chiNext.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
