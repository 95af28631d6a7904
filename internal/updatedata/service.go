// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package updatedata

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

// Service exposes a Store over NATS request-reply on
// wire.UpdateDataSubject, queue-subscribed so a future multi-instance
// deployment could share the load without double-handling requests.
type Service struct {
	store  *Store
	bus    *transport.Bus
	logger zerolog.Logger

	sub *nats.Subscription
}

// NewService binds store to bus's UpdateDataSubject queue group.
func NewService(store *Store, bus *transport.Bus, logger zerolog.Logger) *Service {
	return &Service{store: store, bus: bus, logger: logger.With().Str("component", "update-data").Logger()}
}

// Serve implements suture.Service.
func (s *Service) Serve(ctx context.Context) error {
	sub, err := s.bus.QueueSubscribe(wire.UpdateDataSubject, "update-data", s.handle)
	if err != nil {
		return fmt.Errorf("updatedata: subscribe: %w", err)
	}
	s.sub = sub
	defer sub.Unsubscribe()

	<-ctx.Done()
	return ctx.Err()
}

// String implements fmt.Stringer for logging.
func (s *Service) String() string {
	return "update-data"
}

func (s *Service) handle(msg *nats.Msg) {
	env, err := wire.Unmarshal(msg.Data)
	if err != nil {
		s.reply(msg, wire.KindError, wire.ErrorPayload{Error: err.Error()})
		return
	}

	switch env.Kind {
	case wire.KindPut:
		s.handlePut(msg, env)
	case wire.KindGet:
		s.handleGet(msg, env)
	case wire.KindClear:
		s.handleClear(msg, env)
	default:
		s.reply(msg, wire.KindError, wire.ErrorPayload{Error: fmt.Sprintf("unexpected kind %s", env.Kind)})
	}
}

func (s *Service) handlePut(msg *nats.Msg, env *wire.Envelope) {
	start := time.Now()
	var put wire.Put
	if err := env.Decode(&put); err != nil {
		s.reply(msg, wire.KindError, wire.ErrorPayload{Error: err.Error()})
		return
	}
	if err := s.store.Put(put.Key, put.Data); err != nil {
		s.logger.Error().Err(err).Str("key", put.Key).Msg("put failed")
		s.reply(msg, wire.KindError, wire.ErrorPayload{Error: err.Error()})
		return
	}
	metrics.RecordUpdateDataRequest("put", time.Since(start))
	s.reply(msg, wire.KindAck, nil)
}

func (s *Service) handleGet(msg *nats.Msg, env *wire.Envelope) {
	start := time.Now()
	var get wire.Get
	if err := env.Decode(&get); err != nil {
		s.reply(msg, wire.KindError, wire.ErrorPayload{Error: err.Error()})
		return
	}
	data, err := s.store.Get(get.Key, get.Mask)
	if err != nil {
		s.reply(msg, wire.KindError, wire.ErrorPayload{Error: err.Error()})
		return
	}
	metrics.RecordUpdateDataRequest("get", time.Since(start))
	s.reply(msg, wire.KindData, wire.Data{Data: data, Size: len(data)})
}

func (s *Service) handleClear(msg *nats.Msg, env *wire.Envelope) {
	var clear wire.Clear
	if err := env.Decode(&clear); err != nil {
		s.reply(msg, wire.KindError, wire.ErrorPayload{Error: err.Error()})
		return
	}
	if err := s.store.Clear(clear.Prefix); err != nil {
		s.logger.Error().Err(err).Str("prefix", clear.Prefix).Msg("clear failed")
		s.reply(msg, wire.KindError, wire.ErrorPayload{Error: err.Error()})
		return
	}
	s.reply(msg, wire.KindAck, nil)
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
