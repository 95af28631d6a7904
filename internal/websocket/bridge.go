// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package websocket

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/movici/simulation-core/internal/transport"
	"github.com/movici/simulation-core/internal/wire"
)

// Bridge subscribes to the orchestrator's NATS subjects and forwards
// every envelope it observes to a Hub as a typed Message, so dashboard
// clients see simulation progress without talking to NATS directly.
// It implements suture.Service.
type Bridge struct {
	hub    *Hub
	bus    *transport.Bus
	logger zerolog.Logger
}

// NewBridge creates a Bridge forwarding bus events to hub.
func NewBridge(hub *Hub, bus *transport.Bus, logger zerolog.Logger) *Bridge {
	return &Bridge{hub: hub, bus: bus, logger: logger.With().Str("component", "websocket-bridge").Logger()}
}

// String implements fmt.Stringer / suture's service naming.
func (b *Bridge) String() string {
	return "websocket-bridge"
}

// Serve implements suture.Service: subscribe to the shared
// orchestrator event subject and the model command wildcard, and
// forward every envelope to the Hub until ctx is canceled.
func (b *Bridge) Serve(ctx context.Context) error {
	eventsSub, err := b.bus.Subscribe(wire.OrchestratorEventsSubject, b.forward)
	if err != nil {
		return fmt.Errorf("websocket: subscribe %q: %w", wire.OrchestratorEventsSubject, err)
	}
	defer func() { _ = eventsSub.Unsubscribe() }()

	commandsSub, err := b.bus.Subscribe("simcore.model.*.cmd", b.forward)
	if err != nil {
		return fmt.Errorf("websocket: subscribe model commands: %w", err)
	}
	defer func() { _ = commandsSub.Unsubscribe() }()

	statusSub, err := b.bus.Subscribe(wire.StatusSubject, b.forward)
	if err != nil {
		return fmt.Errorf("websocket: subscribe %q: %w", wire.StatusSubject, err)
	}
	defer func() { _ = statusSub.Unsubscribe() }()

	<-ctx.Done()
	return ctx.Err()
}

func (b *Bridge) forward(msg *nats.Msg) {
	env, err := wire.Unmarshal(msg.Data)
	if err != nil {
		b.logger.Warn().Err(err).Msg("dropping malformed envelope")
		return
	}

	switch env.Kind {
	case wire.KindNewTime:
		var nt wire.NewTime
		if err := env.Decode(&nt); err == nil {
			b.hub.BroadcastJSON(MessageTypeNewTime, nt)
		}
	case wire.KindResult:
		var result wire.Result
		if err := env.Decode(&result); err == nil {
			b.hub.BroadcastJSON(MessageTypeResult, result)
		}
	case wire.KindQuiescent:
		var q wire.Quiescent
		if err := env.Decode(&q); err == nil {
			b.hub.BroadcastJSON(MessageTypeQuiescent, q)
		}
	case wire.KindEnd:
		var end wire.End
		if err := env.Decode(&end); err == nil {
			b.hub.BroadcastJSON(MessageTypeEnd, end)
		}
	case wire.KindError:
		var payload wire.ErrorPayload
		if err := env.Decode(&payload); err == nil {
			b.hub.BroadcastJSON(MessageTypeError, payload)
		}
	}
}
