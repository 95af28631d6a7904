// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package fixturemodels provides small, self-contained reference
// implementations of modelconnector.Model. They exist to exercise the
// Orchestrator/Connector/TrackedState pipeline end to end without
// needing an external model process, and are registered under fixed
// names so a scenario config can reference them directly.
package fixturemodels

import (
	"context"
	"fmt"

	"github.com/movici/simulation-core/internal/dataset"
	"github.com/movici/simulation-core/internal/modelconnector"
	"github.com/movici/simulation-core/internal/trackedstate"
)

// ArithmeticSquareModel subscribes to edge_length and publishes
// area = edge_length * edge_length, once, steady state.
type ArithmeticSquareModel struct {
	group string
	ids   []int64

	edgeLength trackedstate.Handle
	area       trackedstate.Handle
	state      *trackedstate.State
}

// NewArithmeticSquareModel builds a Factory for the registry. config
// must carry "group" (string) and "ids" ([]int64 or JSON-decoded
// equivalent).
func NewArithmeticSquareModel(config map[string]any) (modelconnector.Model, error) {
	group, ids, err := groupAndIDs(config)
	if err != nil {
		return nil, err
	}
	return &ArithmeticSquareModel{group: group, ids: ids}, nil
}

func (m *ArithmeticSquareModel) Setup(s *trackedstate.Builder) error {
	if err := s.RegisterEntityGroup(m.group, m.ids); err != nil {
		return err
	}

	edgeLength, err := s.RegisterAttribute(m.group, "edge_length", dataset.AttributeSpec{Primitive: dataset.Float64}, trackedstate.SUB)
	if err != nil {
		return err
	}
	area, err := s.RegisterAttribute(m.group, "area", dataset.AttributeSpec{Primitive: dataset.Float64}, trackedstate.PUB)
	if err != nil {
		return err
	}

	m.edgeLength = edgeLength
	m.area = area
	m.state = s.State()
	return nil
}

func (m *ArithmeticSquareModel) Initialize(ctx context.Context) error {
	return nil
}

func (m *ArithmeticSquareModel) Update(ctx context.Context, moment modelconnector.Moment) (*int64, error) {
	for idx := range m.ids {
		values, defined, err := m.state.Get(m.edgeLength, idx)
		if err != nil {
			return nil, err
		}
		if len(defined) == 0 || !defined[0] {
			continue
		}
		edge, ok := values[0].(float64)
		if !ok {
			return nil, fmt.Errorf("fixturemodels: edge_length[%d] is %T, want float64", idx, values[0])
		}
		if err := m.state.Set(m.area, idx, []any{edge * edge}, []bool{true}); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (m *ArithmeticSquareModel) Shutdown(ctx context.Context) error {
	return nil
}
