// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package modelconnector

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/movici/simulation-core/internal/dataset"
	"github.com/movici/simulation-core/internal/metrics"
	"github.com/movici/simulation-core/internal/simerrors"
	"github.com/movici/simulation-core/internal/trackedstate"
	"github.com/movici/simulation-core/internal/transport"
	"github.com/movici/simulation-core/internal/wire"
)

// Connector owns one model instance: its Tracked State, its data
// mask, and the main loop driving it against the Orchestrator and the
// Init-Data/Update-Data services. It implements suture.Service so the
// Supervisor can run it in-process, and the same Serve method backs a
// spawned model subprocess's main.
type Connector struct {
	id               simerrors.ModelID
	datasetName      string
	model            Model
	state            *trackedstate.State
	timeline         TimelineInfo
	autoResetPubOnly bool

	bus          *transport.Bus
	logger       zerolog.Logger
	updateClient *UpdateDataClient
	initClient   *InitDataClient

	pubMask map[string]map[string][]string
	subMask map[string]map[string][]string

	timestamp        int64
	iteration        int
	modelInitialized bool
	lastNextTime     *int64
}

// NewConnector runs the model's Setup callback against a fresh Tracked
// State and returns a Connector ready for Serve. datasetName scopes
// the derived pub/sub mask and the keys this Connector writes to the
// Update-Data Service.
func NewConnector(id simerrors.ModelID, datasetName string, model Model, bus *transport.Bus, timeline TimelineInfo, autoResetPubOnly bool, logger zerolog.Logger) (*Connector, error) {
	state := trackedstate.New(nil)
	builder := state.Builder()
	if err := model.Setup(builder); err != nil {
		return nil, fmt.Errorf("modelconnector: setup %s: %w", id, err)
	}
	built := builder.Build()
	pub, sub := built.Mask(datasetName)

	return &Connector{
		id:               id,
		datasetName:      datasetName,
		model:            model,
		state:            built,
		timeline:         timeline,
		autoResetPubOnly: autoResetPubOnly,
		bus:              bus,
		logger:           logger.With().Str("component", "model-connector").Str("model_id", string(id)).Logger(),
		updateClient:     NewUpdateDataClient(bus, id),
		initClient:       NewInitDataClient(bus, id),
		pubMask:          pub,
		subMask:          sub,
	}, nil
}

// InitDataClient exposes this Connector's Init-Data client so a model
// implementation that needs to resolve a static dataset path can be
// constructed with it directly (the Model interface itself carries no
// transport handle, per the registry-not-metaclass design).
func (c *Connector) InitDataClient() *InitDataClient {
	return c.initClient
}

// String implements fmt.Stringer and suture's service naming.
func (c *Connector) String() string {
	return fmt.Sprintf("model-connector[%s]", c.id)
}

// Serve implements suture.Service: register, then run the main loop
// until END, context cancellation, or an unhandled failure.
func (c *Connector) Serve(ctx context.Context) error {
	if err := c.register(); err != nil {
		return fmt.Errorf("modelconnector: register %s: %w", c.id, err)
	}

	subject := wire.ModelCommandSubject(string(c.id))
	msgCh := make(chan *nats.Msg, 32)
	sub, err := c.bus.Subscribe(subject, func(msg *nats.Msg) {
		select {
		case msgCh <- msg:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fmt.Errorf("modelconnector: subscribe %s: %w", subject, err)
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			_ = c.model.Shutdown(context.Background())
			return ctx.Err()
		case msg := <-msgCh:
			done, err := c.dispatch(ctx, msg)
			if err != nil {
				c.logger.Error().Err(err).Msg("unhandled model connector failure")
				c.sendError(err)
				_ = c.model.Shutdown(context.Background())
				return err
			}
			if done {
				_ = c.model.Shutdown(context.Background())
				return nil
			}
		}
	}
}

func (c *Connector) register() error {
	env, err := wire.NewEnvelope(wire.KindReady, wire.Ready{ModelID: string(c.id), Pub: c.pubMask, Sub: c.subMask})
	if err != nil {
		return err
	}
	data, err := wire.Marshal(env)
	if err != nil {
		return err
	}
	return c.bus.Publish(wire.OrchestratorEventsSubject, data)
}

func (c *Connector) dispatch(ctx context.Context, msg *nats.Msg) (done bool, err error) {
	env, err := wire.Unmarshal(msg.Data)
	if err != nil {
		return false, &simerrors.ProtocolError{Peer: c.id, Got: "malformed", Want: "NEW_TIME|UPDATE|UPDATE_SERIES|END"}
	}

	switch env.Kind {
	case wire.KindNewTime:
		return false, c.handleNewTime(ctx, env)
	case wire.KindUpdate:
		return false, c.handleUpdate(ctx, env)
	case wire.KindUpdateSeries:
		return false, c.handleUpdateSeries(ctx, env)
	case wire.KindEnd:
		return true, c.ack()
	default:
		return false, &simerrors.ProtocolError{Peer: c.id, Got: string(env.Kind), Want: "NEW_TIME|UPDATE|UPDATE_SERIES|END"}
	}
}

func (c *Connector) handleNewTime(ctx context.Context, env *wire.Envelope) error {
	var nt wire.NewTime
	if err := env.Decode(&nt); err != nil {
		return err
	}
	c.timestamp = nt.Timestamp
	c.iteration = 0

	if err := c.updateClient.Clear(ctx, string(c.id)+"/"); err != nil {
		return err
	}
	return c.ack()
}

func (c *Connector) handleUpdate(ctx context.Context, env *wire.Envelope) error {
	var u wire.Update
	if err := env.Decode(&u); err != nil {
		return err
	}
	return c.processUpdates(ctx, []wire.Update{u})
}

func (c *Connector) handleUpdateSeries(ctx context.Context, env *wire.Envelope) error {
	var series wire.UpdateSeries
	if err := env.Decode(&series); err != nil {
		return err
	}
	return c.processUpdates(ctx, series.Updates)
}

// processUpdates applies every listed update (a bare time-wake has an
// empty Key and nothing to fetch), runs the model at most once, and
// emits exactly one RESULT - satisfying the UPDATE_SERIES
// single-RESULT rule as well as plain UPDATE handling.
func (c *Connector) processUpdates(ctx context.Context, updates []wire.Update) error {
	for _, u := range updates {
		if u.Key == "" {
			continue
		}
		raw, err := c.updateClient.Get(ctx, u.Key, c.subMask)
		if err != nil {
			return err
		}
		delta, err := dataset.ParseUpdate(raw, c.state.Schema())
		if err != nil {
			return &simerrors.DataError{Attr: u.Key, Reason: err.Error()}
		}
		if err := c.state.ApplyUpdate(delta); err != nil {
			return err
		}
	}

	if !c.state.AllInitFulfilled() {
		return c.replyResult("", "", c.lastNextTime)
	}

	if !c.modelInitialized {
		start := time.Now()
		err := c.model.Initialize(ctx)
		metrics.RecordModelCall(string(c.id), "initialize", time.Since(start), err)
		if err != nil {
			return &simerrors.ModelError{Model: c.id, Cause: err}
		}
		c.modelInitialized = true
	}

	return c.runModelAndReply(ctx)
}

func (c *Connector) runModelAndReply(ctx context.Context) error {
	moment := Moment{Timestamp: c.timestamp, Timeline: c.timeline}

	start := time.Now()
	nextTime, err := c.model.Update(ctx, moment)
	metrics.RecordModelCall(string(c.id), "update", time.Since(start), err)
	if err != nil {
		return &simerrors.ModelError{Model: c.id, Cause: err}
	}
	c.lastNextTime = nextTime

	delta := c.state.GenerateUpdate(trackedstate.ScopePub)
	var key, address string
	if len(delta.Groups) > 0 {
		delta.Name = c.datasetName
		encoded, err := delta.Encode()
		if err != nil {
			return fmt.Errorf("modelconnector: encode update: %w", err)
		}
		c.iteration++
		key = fmt.Sprintf("%s/%d/%d", c.id, c.timestamp, c.iteration)
		address = wire.UpdateDataSubject
		if err := c.updateClient.Put(ctx, key, encoded); err != nil {
			return err
		}
	}

	if err := c.replyResult(key, address, nextTime); err != nil {
		return err
	}

	if c.autoResetPubOnly {
		c.state.ResetTrackedChanges(trackedstate.ScopePub)
	} else {
		c.state.ResetTrackedChanges(trackedstate.ScopePub)
		c.state.ResetTrackedChanges(trackedstate.ScopeSub)
	}
	return nil
}

func (c *Connector) replyResult(key, address string, nextTime *int64) error {
	env, err := wire.NewEnvelope(wire.KindResult, wire.Result{Key: key, Address: address, NextTime: nextTime, Origin: string(c.id)})
	if err != nil {
		return err
	}
	data, err := wire.Marshal(env)
	if err != nil {
		return err
	}
	return c.bus.Publish(wire.OrchestratorEventsSubject, data)
}

func (c *Connector) ack() error {
	env, err := wire.NewEnvelope(wire.KindAck, wire.Ack{ModelID: string(c.id)})
	if err != nil {
		return err
	}
	data, err := wire.Marshal(env)
	if err != nil {
		return err
	}
	return c.bus.Publish(wire.OrchestratorEventsSubject, data)
}

func (c *Connector) sendError(cause error) {
	env, err := wire.NewEnvelope(wire.KindError, wire.ErrorPayload{ModelID: string(c.id), Error: cause.Error()})
	if err != nil {
		return
	}
	data, err := wire.Marshal(env)
	if err != nil {
		return
	}
	if err := c.bus.Publish(wire.OrchestratorEventsSubject, data); err != nil {
		c.logger.Error().Err(err).Msg("failed to publish ERROR")
	}
}
