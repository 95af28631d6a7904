// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/movici/simulation-core/internal/config"
	"github.com/movici/simulation-core/internal/transport"
)

func newTestHandler() *Handler {
	bus := transport.NewBus(config.NATSConfig{}, zerolog.Nop())
	cfg := &config.Config{}
	return NewHandler(bus, nil, nil, nil, cfg, zerolog.Nop())
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestHealthLive_AlwaysOK(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	rec := httptest.NewRecorder()

	h.HealthLive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("expected success envelope")
	}
}

func TestHealthReady_UnconnectedBusReturns503(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil)
	rec := httptest.NewRecorder()

	h.HealthReady(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	env := decodeEnvelope(t, rec)
	if env.Success {
		t.Error("expected error envelope")
	}
	if env.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("error code = %q, want %q", env.Error.Code, ErrCodeServiceUnavailable)
	}
}

func TestHealth_ReportsDegradedWithoutBus(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	env := decodeEnvelope(t, rec)
	data, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is %T, want map", env.Data)
	}
	if data["status"] != "degraded" {
		t.Errorf("status = %v, want %q", data["status"], "degraded")
	}
}
