// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package api

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/movici/simulation-core/internal/config"
	"github.com/movici/simulation-core/internal/supervisor"
	"github.com/movici/simulation-core/internal/transport"
)

func TestConnectors_NilRegistryReturns503(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/connectors", nil)
	rec := httptest.NewRecorder()

	h.Connectors(rec, req)

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

func TestConnectors_ReportsRegisteredConnector(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	reg, err := supervisor.NewConnectorRegistry(tree)
	if err != nil {
		t.Fatalf("NewConnectorRegistry() error = %v", err)
	}
	if err := reg.Add("traffic", supervisor.NewMockService("traffic")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	bus := transport.NewBus(config.NATSConfig{}, zerolog.Nop())
	h := NewHandler(bus, nil, nil, reg, &config.Config{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/connectors", nil)
	rec := httptest.NewRecorder()

	h.Connectors(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("expected success envelope")
	}
	data, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data is %T, want map", env.Data)
	}
	connectors, ok := data["connectors"].([]interface{})
	if !ok {
		t.Fatalf("connectors is %T, want slice", data["connectors"])
	}
	if len(connectors) != 1 {
		t.Fatalf("len(connectors) = %d, want 1", len(connectors))
	}
	entry, ok := connectors[0].(map[string]interface{})
	if !ok {
		t.Fatalf("connectors[0] is %T, want map", connectors[0])
	}
	if entry["model_id"] != "traffic" {
		t.Errorf("model_id = %v, want %q", entry["model_id"], "traffic")
	}
	if entry["running"] != true {
		t.Errorf("running = %v, want true", entry["running"])
	}
}
