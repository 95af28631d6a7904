// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package api

import (
	"net/http"
	"time"
)

// HealthLive answers the liveness probe: 200 as long as the process is
// running, regardless of NATS connectivity.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady answers the readiness probe: 200 only once the transport
// bus is connected, 503 otherwise. An orchestrator or connector cannot do
// anything useful with the bus down, so "ready" means "bus up".
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	busRunning := h.bus != nil && h.bus.IsRunning()

	if !busRunning {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "transport bus not connected")
		return
	}

	respondSuccess(w, r, map[string]interface{}{
		"bus_connected": busRunning,
		"uptime":        time.Since(h.startTime).Seconds(),
	})
}

// Health is the combined health summary used by monitoring dashboards.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	busRunning := h.bus != nil && h.bus.IsRunning()
	hubClients := 0
	if h.wsHub != nil {
		hubClients = h.wsHub.GetClientCount()
	}

	status := "healthy"
	if !busRunning {
		status = "degraded"
	}

	respondSuccess(w, r, map[string]interface{}{
		"status":            status,
		"bus_connected":     busRunning,
		"dashboard_clients": hubClients,
		"uptime":            time.Since(h.startTime).Seconds(),
	})
}
