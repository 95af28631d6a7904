// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package api

import "net/http"

// Connectors lists every model connector service currently registered
// with the supervisor tree, keyed by model ID.
func (h *Handler) Connectors(w http.ResponseWriter, r *http.Request) {
	if h.connectors == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "connector registry not configured")
		return
	}
	respondSuccess(w, r, map[string]interface{}{
		"connectors": h.connectors.AllStatuses(),
	})
}
