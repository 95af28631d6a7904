// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

/*
Package websocket broadcasts live simulation progress to connected
dashboard clients.

It implements a hub-and-spoke architecture on top of
github.com/gorilla/websocket: a single Hub owns the set of connected
Clients and fans out every message it receives to all of them; each
Client runs its own read and write pump goroutine.

The Hub never talks to the Orchestrator directly. A Bridge subscribes
to the orchestrator's NATS subjects and translates each envelope it
observes (NEW_TIME, RESULT, END, ERROR, ...) into a Message the Hub
broadcasts. This keeps the Hub a dumb fan-out component reusable for
any JSON payload, and keeps the simulation-protocol decoding in one
place.

Usage:

	bus := transport.NewBus(cfg.NATS, logger)
	hub := websocket.NewHub()
	bridge := websocket.NewBridge(hub, bus, logger)

	tree.AddTransportService(services.NewWebSocketHubService(hub))
	tree.AddTransportService(bridge)

	handler := api.NewHandler(bus, hub, jwtManager, connectors, cfg, logger)
	router := api.NewRouter(handler, cfg.Security)
	http.ListenAndServe(addr, router.Setup()) // GET /ws upgrades into the hub
*/
package websocket
