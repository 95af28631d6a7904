// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/movici/simulation-core/internal/metrics"
	"github.com/movici/simulation-core/internal/simerrors"
	"github.com/movici/simulation-core/internal/wire"
)

// broadcastNewTime sends NEW_TIME(t) to every registered model and
// waits for every ACK, per §4.4 step 2. A timeout, an ERROR from any
// model, or an unexpected message is treated as simulation failure.
func (o *Orchestrator) broadcastNewTime(ctx context.Context, t int64) error {
	env, err := wire.NewEnvelope(wire.KindNewTime, wire.NewTime{Timestamp: t})
	if err != nil {
		return err
	}
	data, err := wire.Marshal(env)
	if err != nil {
		return err
	}
	for _, m := range o.expected {
		if err := o.bus.Publish(wire.ModelCommandSubject(string(m)), data); err != nil {
			return err
		}
	}

	pending := toSet(o.expected)
	deadline := time.Now().Add(o.roundTimeout)
	for len(pending) > 0 {
		wait := time.Until(deadline)
		if wait <= 0 {
			return &simerrors.TimeoutError{Waiting: "ACK"}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-o.events:
			env, err := wire.Unmarshal(msg.Data)
			if err != nil {
				return err
			}
			switch env.Kind {
			case wire.KindAck:
				var ack wire.Ack
				if err := env.Decode(&ack); err != nil {
					return err
				}
				id := simerrors.ModelID(ack.ModelID)
				if _, ok := pending[id]; !ok {
					metrics.RecordProtocolViolation(ack.ModelID)
					return &simerrors.ProtocolError{Peer: id, Got: "ACK", Want: "no outstanding NEW_TIME"}
				}
				delete(pending, id)
			case wire.KindError:
				return modelErrorFrom(env)
			default:
				metrics.RecordProtocolViolation("")
				return &simerrors.ProtocolError{Got: string(env.Kind), Want: "ACK"}
			}
		case <-time.After(wait):
			return &simerrors.TimeoutError{Waiting: "ACK"}
		}
	}
	return nil
}

// runResultPhase dispatches the active set's time-wake UPDATE, then
// processes RESULTs until the timestamp reaches quiescence (§4.4 steps
// 3-7): every model with a pending obligation has replied, and the
// last batch produced no further pointers.
func (o *Orchestrator) runResultPhase(ctx context.Context, active []simerrors.ModelID, t int64) error {
	pending := map[simerrors.ModelID]int{}
	dispatched := map[simerrors.ModelID]bool{}
	inbox := map[simerrors.ModelID][]wire.Update{}

	for _, m := range active {
		if err := o.sendUpdate(m, wire.Update{Timestamp: t}); err != nil {
			return err
		}
		pending[m]++
		dispatched[m] = true
	}

	deadline := time.Now().Add(o.roundTimeout)
	for !quiescent(pending, inbox) {
		wait := time.Until(deadline)
		if wait <= 0 {
			return &simerrors.TimeoutError{Waiting: "RESULT"}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-o.events:
			env, err := wire.Unmarshal(msg.Data)
			if err != nil {
				return err
			}
			switch env.Kind {
			case wire.KindResult:
				var result wire.Result
				if err := env.Decode(&result); err != nil {
					return err
				}
				model := simerrors.ModelID(result.Origin)
				if pending[model] <= 0 {
					metrics.RecordProtocolViolation(result.Origin)
					return &simerrors.ProtocolError{Peer: model, Got: "RESULT", Want: "no outstanding UPDATE"}
				}
				pending[model]--

				if result.NextTime != nil {
					o.timeline.Upsert(model, *result.NextTime)
				} else {
					o.timeline.Remove(model)
				}

				if result.Key != "" {
					subs := o.matrix.SubscribersOf(model)
					metrics.RecordFanout(string(model), len(subs))
					for _, s := range subs {
						inbox[s] = append(inbox[s], wire.Update{
							Timestamp: t,
							Key:       result.Key,
							Address:   result.Address,
							Origin:    string(model),
						})
					}
				}

				if err := o.flushReady(t, pending, dispatched, inbox); err != nil {
					return err
				}
			case wire.KindError:
				return modelErrorFrom(env)
			default:
				metrics.RecordProtocolViolation("")
				return &simerrors.ProtocolError{Got: string(env.Kind), Want: "RESULT"}
			}
			deadline = time.Now().Add(o.roundTimeout)
		case <-time.After(wait):
			return &simerrors.TimeoutError{Waiting: "RESULT"}
		}
	}
	return nil
}

// flushReady dispatches every subscriber's queued inbox that is no
// longer blocked by dependency coalescing: a subscriber s is held as
// long as any model it depends on is part of this round and still has
// a RESULT outstanding.
func (o *Orchestrator) flushReady(t int64, pending map[simerrors.ModelID]int, dispatched map[simerrors.ModelID]bool, inbox map[simerrors.ModelID][]wire.Update) error {
	for s, queued := range inbox {
		if len(queued) == 0 {
			continue
		}
		if o.blockedByPendingPublisher(s, dispatched, pending) {
			continue
		}
		if err := o.sendQueued(s, queued); err != nil {
			return err
		}
		pending[s]++
		dispatched[s] = true
		delete(inbox, s)
	}
	return nil
}

func (o *Orchestrator) blockedByPendingPublisher(s simerrors.ModelID, dispatched map[simerrors.ModelID]bool, pending map[simerrors.ModelID]int) bool {
	for _, p := range o.matrix.DependsOn(s) {
		if dispatched[p] && pending[p] > 0 {
			return true
		}
	}
	return false
}

// publishQuiescent announces round completion on the dashboard-only
// StatusSubject. It is best-effort: a dropped status event never
// affects the simulation's correctness, so a publish failure is only
// logged.
func (o *Orchestrator) publishQuiescent(t int64) {
	env, err := wire.NewEnvelope(wire.KindQuiescent, wire.Quiescent{Timestamp: t})
	if err != nil {
		return
	}
	data, err := wire.Marshal(env)
	if err != nil {
		return
	}
	if err := o.bus.Publish(wire.StatusSubject, data); err != nil {
		o.logger.Warn().Err(err).Msg("failed to publish QUIESCENT status")
	}
}

func (o *Orchestrator) sendUpdate(m simerrors.ModelID, update wire.Update) error {
	env, err := wire.NewEnvelope(wire.KindUpdate, update)
	if err != nil {
		return err
	}
	data, err := wire.Marshal(env)
	if err != nil {
		return err
	}
	return o.bus.Publish(wire.ModelCommandSubject(string(m)), data)
}

func (o *Orchestrator) sendQueued(m simerrors.ModelID, queued []wire.Update) error {
	if len(queued) == 1 {
		env, err := wire.NewEnvelope(wire.KindUpdate, queued[0])
		if err != nil {
			return err
		}
		data, err := wire.Marshal(env)
		if err != nil {
			return err
		}
		return o.bus.Publish(wire.ModelCommandSubject(string(m)), data)
	}
	env, err := wire.NewEnvelope(wire.KindUpdateSeries, wire.UpdateSeries{Updates: queued})
	if err != nil {
		return err
	}
	data, err := wire.Marshal(env)
	if err != nil {
		return err
	}
	return o.bus.Publish(wire.ModelCommandSubject(string(m)), data)
}

// quiescent reports whether the current timestamp has no model with a
// pending RESULT and no update pointers still queued awaiting flush.
func quiescent(pending map[simerrors.ModelID]int, inbox map[simerrors.ModelID][]wire.Update) bool {
	for _, n := range pending {
		if n > 0 {
			return false
		}
	}
	for _, q := range inbox {
		if len(q) > 0 {
			return false
		}
	}
	return true
}

func modelErrorFrom(env *wire.Envelope) error {
	var payload wire.ErrorPayload
	_ = env.Decode(&payload)
	return &simerrors.ModelError{
		Model: simerrors.ModelID(payload.ModelID),
		Cause: fmt.Errorf("%s", payload.Error),
	}
}
