// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package initdata

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/movici/simulation-core/internal/metrics"
	"github.com/movici/simulation-core/internal/transport"
	"github.com/movici/simulation-core/internal/wire"
)

// Service exposes a Resolver over NATS request-reply on
// wire.InitDataSubject.
type Service struct {
	resolver *Resolver
	bus      *transport.Bus
	logger   zerolog.Logger
}

// NewService binds resolver to bus's InitDataSubject queue group.
func NewService(resolver *Resolver, bus *transport.Bus, logger zerolog.Logger) *Service {
	return &Service{resolver: resolver, bus: bus, logger: logger.With().Str("component", "init-data").Logger()}
}

// Serve implements suture.Service.
func (s *Service) Serve(ctx context.Context) error {
	sub, err := s.bus.QueueSubscribe(wire.InitDataSubject, "init-data", s.handle)
	if err != nil {
		return fmt.Errorf("initdata: subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *Service) String() string {
	return "init-data"
}

func (s *Service) handle(msg *nats.Msg) {
	env, err := wire.Unmarshal(msg.Data)
	if err != nil {
		s.reply(msg, wire.KindError, wire.ErrorPayload{Error: err.Error()})
		return
	}
	if env.Kind != wire.KindGet {
		s.reply(msg, wire.KindError, wire.ErrorPayload{Error: fmt.Sprintf("unexpected kind %s", env.Kind)})
		return
	}

	var get wire.Get
	if err := env.Decode(&get); err != nil {
		s.reply(msg, wire.KindError, wire.ErrorPayload{Error: err.Error()})
		return
	}

	start := time.Now()
	path, found, err := s.resolver.Resolve(get.Name)
	if err != nil {
		s.logger.Error().Err(err).Str("name", get.Name).Msg("resolve failed")
		metrics.RecordInitDataResolve(get.Name, time.Since(start), "io")
		s.reply(msg, wire.KindError, wire.ErrorPayload{Error: err.Error()})
		return
	}
	reason := ""
	if !found {
		reason = "not_found"
	}
	metrics.RecordInitDataResolve(get.Name, time.Since(start), reason)
	s.reply(msg, wire.KindPath, wire.Path{Path: path, Found: found})
}

func (s *Service) reply(msg *nats.Msg, kind wire.Kind, payload any) {
	env, err := wire.NewEnvelope(kind, payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to build reply envelope")
		return
	}
	data, err := wire.Marshal(env)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal reply envelope")
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Error().Err(err).Msg("failed to send reply")
	}
}
