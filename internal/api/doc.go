// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

/*
Package api exposes the status HTTP+WebSocket surface an operator uses to
watch (and authenticate against) a running simulation. It is deliberately
small: the simulation protocol itself runs entirely over NATS and never
touches this package. api only answers "is this process healthy", issues
the bearer token that gates everything else, reports which model
connectors are currently running, and upgrades a dashboard connection to
the live event feed served by internal/websocket.

Routing uses github.com/go-chi/chi/v5 with github.com/go-chi/cors and
github.com/go-chi/httprate, the same middleware stack the teacher project
standardized on (ADR-0016 in that project's history). Every response uses
the single Envelope wrapper defined in response.go so clients parse one
shape regardless of endpoint.

Usage:

	bus := transport.NewBus(cfg.NATS, logger)
	hub := websocket.NewHub()
	jwtManager, _ := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	tree, _ := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{})
	connectors, _ := supervisor.NewConnectorRegistry(tree)
	handler := api.NewHandler(bus, hub, jwtManager, connectors, cfg, logger)
	router := api.NewRouter(handler, cfg.Security)
	http.ListenAndServe(addr, router.Setup())
*/
package api
