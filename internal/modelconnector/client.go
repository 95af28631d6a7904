// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package modelconnector

import (
	"context"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/movici/simulation-core/internal/metrics"
	"github.com/movici/simulation-core/internal/simerrors"
	"github.com/movici/simulation-core/internal/transport"
	"github.com/movici/simulation-core/internal/wire"
)

// DefaultBreakerSettings returns the circuit breaker configuration a
// Connector wraps around every call to the Init-Data and Update-Data
// services: three trial requests in half-open state, a failure count
// reset every 30s, and a 10s open period after five straight failures.
func DefaultBreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

// UpdateDataClient is the Connector's request-reply client to the
// Update-Data Service, with a circuit breaker around the round trip so
// a stalled service degrades the model's calls instead of hanging the
// Connector indefinitely.
type UpdateDataClient struct {
	bus     *transport.Bus
	breaker *gobreaker.CircuitBreaker[[]byte]
	modelID simerrors.ModelID
}

// NewUpdateDataClient creates a client bound to bus, tagged with
// modelID for the circuit breaker's state metric.
func NewUpdateDataClient(bus *transport.Bus, modelID simerrors.ModelID) *UpdateDataClient {
	c := &UpdateDataClient{bus: bus, modelID: modelID}
	settings := DefaultBreakerSettings(fmt.Sprintf("update-data:%s", modelID))
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		metrics.SetCircuitState(string(modelID), circuitStateValue(to))
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](settings)
	return c
}

func circuitStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// Put stores data under key.
func (c *UpdateDataClient) Put(ctx context.Context, key string, data []byte) error {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return c.request(ctx, wire.KindPut, wire.Put{Key: key, Data: data, Size: len(data)})
	})
	return err
}

// Get retrieves the blob stored under key, optionally projected
// through mask.
func (c *UpdateDataClient) Get(ctx context.Context, key string, mask map[string]map[string][]string) ([]byte, error) {
	reply, err := c.breaker.Execute(func() ([]byte, error) {
		return c.request(ctx, wire.KindGet, wire.Get{Key: key, Mask: mask})
	})
	if err != nil {
		return nil, err
	}
	var data wire.Data
	if err := decodeReply(reply, wire.KindData, &data); err != nil {
		return nil, err
	}
	return data.Data, nil
}

// Clear removes every key under prefix, called once per NEW_TIME
// against the Connector's own model id.
func (c *UpdateDataClient) Clear(ctx context.Context, prefix string) error {
	_, err := c.breaker.Execute(func() ([]byte, error) {
		return c.request(ctx, wire.KindClear, wire.Clear{Prefix: prefix})
	})
	return err
}

func (c *UpdateDataClient) request(ctx context.Context, kind wire.Kind, payload any) ([]byte, error) {
	env, err := wire.NewEnvelope(kind, payload)
	if err != nil {
		return nil, err
	}
	data, err := wire.Marshal(env)
	if err != nil {
		return nil, err
	}
	reply, err := c.bus.Request(ctx, wire.UpdateDataSubject, data)
	if err != nil {
		return nil, &simerrors.ResourceError{Resource: "update-data", Cause: err}
	}
	if kind != wire.KindGet {
		return nil, ackOrError(reply)
	}
	return reply, nil
}

// InitDataClient is the Connector's request-reply client to the
// Init-Data Service.
type InitDataClient struct {
	bus     *transport.Bus
	breaker *gobreaker.CircuitBreaker[wire.Path]
	modelID simerrors.ModelID
}

// NewInitDataClient creates a client bound to bus, tagged with modelID
// for the circuit breaker's state metric.
func NewInitDataClient(bus *transport.Bus, modelID simerrors.ModelID) *InitDataClient {
	c := &InitDataClient{bus: bus, modelID: modelID}
	settings := DefaultBreakerSettings(fmt.Sprintf("init-data:%s", modelID))
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		metrics.SetCircuitState(string(modelID), circuitStateValue(to))
	}
	c.breaker = gobreaker.NewCircuitBreaker[wire.Path](settings)
	return c
}

// Resolve requests the filesystem path for a named dataset.
func (c *InitDataClient) Resolve(ctx context.Context, name string) (path string, found bool, err error) {
	result, err := c.breaker.Execute(func() (wire.Path, error) {
		env, err := wire.NewEnvelope(wire.KindGet, wire.Get{Name: name})
		if err != nil {
			return wire.Path{}, err
		}
		data, err := wire.Marshal(env)
		if err != nil {
			return wire.Path{}, err
		}
		reply, err := c.bus.Request(ctx, wire.InitDataSubject, data)
		if err != nil {
			return wire.Path{}, &simerrors.ResourceError{Resource: "init-data:" + name, Cause: err}
		}
		var path wire.Path
		if err := decodeReply(reply, wire.KindPath, &path); err != nil {
			return wire.Path{}, err
		}
		return path, nil
	})
	if err != nil {
		return "", false, err
	}
	return result.Path, result.Found, nil
}

// decodeReply unmarshals a reply envelope, surfacing an ERROR payload
// as a ResourceError and rejecting any kind other than want.
func decodeReply(raw []byte, want wire.Kind, target any) error {
	env, err := wire.Unmarshal(raw)
	if err != nil {
		return err
	}
	if env.Kind == wire.KindError {
		var errPayload wire.ErrorPayload
		_ = env.Decode(&errPayload)
		return &simerrors.ResourceError{Resource: string(want), Cause: fmt.Errorf("%s", errPayload.Error)}
	}
	if env.Kind != want {
		return fmt.Errorf("modelconnector: unexpected reply kind %s, want %s", env.Kind, want)
	}
	return env.Decode(target)
}

func ackOrError(raw []byte) error {
	env, err := wire.Unmarshal(raw)
	if err != nil {
		return err
	}
	if env.Kind == wire.KindError {
		var errPayload wire.ErrorPayload
		_ = env.Decode(&errPayload)
		return &simerrors.ResourceError{Resource: "update-data", Cause: fmt.Errorf("%s", errPayload.Error)}
	}
	return nil
}
