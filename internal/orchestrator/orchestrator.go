// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package orchestrator implements the central state machine that
// drives model registration, timeline progression, within-timestamp
// event dispatch and dependency coalescing, convergence detection, and
// shutdown — the runtime authority every Model Connector answers to.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/movici/simulation-core/internal/datamask"
	"github.com/movici/simulation-core/internal/metrics"
	"github.com/movici/simulation-core/internal/simerrors"
	"github.com/movici/simulation-core/internal/transport"
	"github.com/movici/simulation-core/internal/wire"
)

// Orchestrator holds the authoritative timeline and registry for one
// simulation run and drives it to completion or failure.
type Orchestrator struct {
	scenario     string
	expected     []simerrors.ModelID
	bus          *transport.Bus
	roundTimeout time.Duration
	endTime      *int64
	logger       zerolog.Logger

	timeline *Timeline
	matrix   *datamask.Matrix
	events   chan *nats.Msg
}

// NewOrchestrator creates an Orchestrator expecting exactly the models
// in expected to register before a run begins.
func NewOrchestrator(scenario string, expected []simerrors.ModelID, bus *transport.Bus, roundTimeout time.Duration, endTime *int64, logger zerolog.Logger) *Orchestrator {
	if roundTimeout <= 0 {
		roundTimeout = 30 * time.Second
	}
	return &Orchestrator{
		scenario:     scenario,
		expected:     expected,
		bus:          bus,
		roundTimeout: roundTimeout,
		endTime:      endTime,
		logger:       logger.With().Str("component", "orchestrator").Str("scenario", scenario).Logger(),
		timeline:     NewTimeline(),
		events:       make(chan *nats.Msg, 256),
	}
}

// String satisfies suture.Service.
func (o *Orchestrator) String() string {
	return fmt.Sprintf("orchestrator(%s)", o.scenario)
}

// Serve runs the full registration-through-shutdown lifecycle. It
// returns nil on a clean end of run, or an error identifying the first
// failure observed — the Supervisor (or cmd/simcore) maps a non-nil
// return to a nonzero process exit, per the failure path in §4.4.
func (o *Orchestrator) Serve(ctx context.Context) error {
	sub, err := o.bus.Subscribe(wire.OrchestratorEventsSubject, func(msg *nats.Msg) {
		select {
		case o.events <- msg:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("orchestrator: subscribe: %w", err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	masks, err := o.awaitRegistration(ctx)
	if err != nil {
		return err
	}
	if err := o.buildMatrix(masks); err != nil {
		return err
	}
	for _, m := range o.expected {
		o.timeline.Upsert(m, 0)
	}
	metrics.SetTimelineDepth(o.scenario, o.timeline.Len())

	for {
		active, t, ok := o.timeline.PopEarliest()
		metrics.SetTimelineDepth(o.scenario, o.timeline.Len())
		if !ok || (o.endTime != nil && t > *o.endTime) {
			metrics.SetQuiescent(o.scenario, true)
			return o.shutdown(ctx, false, "")
		}

		start := time.Now()
		if err := o.runRound(ctx, active, t); err != nil {
			o.logger.Error().Err(err).Int64("timestamp", t).Msg("round failed")
			_ = o.shutdown(ctx, true, err.Error())
			return err
		}
		metrics.RecordStep(o.scenario, time.Since(start))
		o.publishQuiescent(t)
	}
}

// runRound drives one timestamp's round to quiescence: NEW_TIME to
// every registered model, the bare time-wake UPDATE to the active set,
// then RESULT processing with cascaded dispatch and dependency
// coalescing until no model has a pending obligation.
func (o *Orchestrator) runRound(ctx context.Context, active []simerrors.ModelID, t int64) error {
	if err := o.broadcastNewTime(ctx, t); err != nil {
		return err
	}
	return o.runResultPhase(ctx, active, t)
}

func (o *Orchestrator) shutdown(ctx context.Context, dueToFailure bool, reason string) error {
	env, err := wire.NewEnvelope(wire.KindEnd, wire.End{DueToFailure: dueToFailure})
	if err != nil {
		return err
	}
	data, err := wire.Marshal(env)
	if err != nil {
		return err
	}
	for _, m := range o.expected {
		_ = o.bus.Publish(wire.ModelCommandSubject(string(m)), data)
	}
	o.awaitAcksBestEffort(ctx, o.expected)
	if dueToFailure {
		o.logger.Error().Str("reason", reason).Msg("simulation terminated due to failure")
	} else {
		o.logger.Info().Msg("simulation reached the end of its timeline")
	}
	return nil
}

// awaitAcksBestEffort drains ACKs for a bounded grace period during
// shutdown without failing the run further: by this point a failure
// (or a clean end) has already been decided.
func (o *Orchestrator) awaitAcksBestEffort(ctx context.Context, targets []simerrors.ModelID) {
	pending := toSet(targets)
	deadline := time.Now().Add(o.roundTimeout)
	for len(pending) > 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case msg := <-o.events:
			env, err := wire.Unmarshal(msg.Data)
			if err != nil || env.Kind != wire.KindAck {
				continue
			}
			var ack wire.Ack
			_ = env.Decode(&ack)
			delete(pending, simerrors.ModelID(ack.ModelID))
		case <-time.After(remaining):
			return
		}
	}
}

func toSet(ids []simerrors.ModelID) map[simerrors.ModelID]struct{} {
	set := make(map[simerrors.ModelID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
