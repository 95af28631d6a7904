// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package modelconnector implements the Model Connector: it owns one
// model instance in one process, drives it through setup and
// registration, and runs the NEW_TIME/UPDATE/UPDATE_SERIES/END main
// loop against the Orchestrator and the Init-Data/Update-Data
// services.
package modelconnector

import (
	"context"
	"fmt"
	"sync"

	"github.com/movici/simulation-core/internal/trackedstate"
)

// TimelineInfo calibrates a scenario's discrete ticks to wall-clock
// time. It is constant for the lifetime of a run.
type TimelineInfo struct {
	ReferenceEpochSeconds   int64
	TimeScaleSecondsPerTick float64
	Start                   int64
	Duration                int64
}

// Moment is a timeline instant: a discrete tick plus the calibration
// needed to interpret it as wall-clock time.
type Moment struct {
	Timestamp int64
	Timeline  TimelineInfo
}

// Model is the capability set a simulation model implements. There is
// no ambient inheritance graph: a model is exactly these four calls,
// registered under a name with a Registry.
type Model interface {
	// Setup declares entity groups and attributes against s. Called
	// once, before registration.
	Setup(s *trackedstate.Builder) error

	// Initialize runs once, after every INIT-flagged attribute has
	// arrived.
	Initialize(ctx context.Context) error

	// Update runs the model for moment and returns its next wake tick,
	// or nil to leave the timeline (steady state).
	Update(ctx context.Context, moment Moment) (nextTime *int64, err error)

	// Shutdown releases any resources the model holds. Called once, on
	// END or on unrecoverable failure.
	Shutdown(ctx context.Context) error
}

// Factory constructs a Model from its scenario configuration.
type Factory func(config map[string]any) (Model, error)

// Registry maps a model type name to the Factory that constructs it.
// There is no metaclass or plugin-discovery magic: a type must be
// registered explicitly before a Connector can be built for it.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds name to f, overwriting any previous registration -
// useful for tests that substitute a fixture model under a fixed name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// New constructs the model registered under name, passing it config.
func (r *Registry) New(name string, config map[string]any) (Model, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("modelconnector: no factory registered for model type %q", name)
	}
	return f(config)
}
