// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package api

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/movici/simulation-core/internal/auth"
	"github.com/movici/simulation-core/internal/config"
	"github.com/movici/simulation-core/internal/supervisor"
	"github.com/movici/simulation-core/internal/transport"
	"github.com/movici/simulation-core/internal/websocket"
)

// Handler holds the dependencies every status API endpoint needs.
type Handler struct {
	bus        *transport.Bus
	wsHub      *websocket.Hub
	jwtManager *auth.JWTManager
	connectors *supervisor.ConnectorRegistry
	config     *config.Config
	startTime  time.Time
	logger     zerolog.Logger
}

// NewHandler constructs a Handler. wsHub, jwtManager, and connectors may
// be nil (the affected endpoints then respond 503/401 rather than
// panic), which keeps the status API optional for scenarios run
// without it.
func NewHandler(bus *transport.Bus, wsHub *websocket.Hub, jwtManager *auth.JWTManager, connectors *supervisor.ConnectorRegistry, cfg *config.Config, logger zerolog.Logger) *Handler {
	return &Handler{
		bus:        bus,
		wsHub:      wsHub,
		jwtManager: jwtManager,
		connectors: connectors,
		config:     cfg,
		startTime:  time.Now(),
		logger:     logger.With().Str("component", "api").Logger(),
	}
}
