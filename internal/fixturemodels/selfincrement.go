// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package fixturemodels

import (
	"context"
	"fmt"

	"github.com/movici/simulation-core/internal/dataset"
	"github.com/movici/simulation-core/internal/modelconnector"
	"github.com/movici/simulation-core/internal/trackedstate"
)

// defaultIncrementPeriod is how often, in ticks, SelfIncrementingModel
// bumps its own attribute.
const defaultIncrementPeriod = 10

// SelfIncrementingModel owns attr (INIT|PUB) and increments every
// value by one every period ticks. It satisfies its own INIT
// requirement by writing the starting value during Setup, then
// clearing the resulting PUB-dirty flag in Initialize so that write
// never appears in the first round's emission - an INIT write is not
// a PUB change as far as a downstream subscriber is concerned.
type SelfIncrementingModel struct {
	group  string
	ids    []int64
	period int64

	attr  trackedstate.Handle
	state *trackedstate.State
}

// NewSelfIncrementingModel builds a Factory for the registry. config
// carries "group", "ids", and optionally "period" (ticks between
// increments, default 10).
func NewSelfIncrementingModel(config map[string]any) (modelconnector.Model, error) {
	group, ids, err := groupAndIDs(config)
	if err != nil {
		return nil, err
	}
	period := int64(defaultIncrementPeriod)
	if raw, ok := config["period"]; ok {
		p, err := toInt64(raw)
		if err != nil {
			return nil, fmt.Errorf("fixturemodels: period: %w", err)
		}
		period = p
	}
	return &SelfIncrementingModel{group: group, ids: ids, period: period}, nil
}

func (m *SelfIncrementingModel) Setup(s *trackedstate.Builder) error {
	if err := s.RegisterEntityGroup(m.group, m.ids); err != nil {
		return err
	}
	attr, err := s.RegisterAttribute(m.group, "attr", dataset.AttributeSpec{Primitive: dataset.Int32}, trackedstate.INIT|trackedstate.PUB)
	if err != nil {
		return err
	}
	m.attr = attr
	m.state = s.State()

	for idx := range m.ids {
		if err := m.state.Set(attr, idx, []any{int32(0)}, []bool{true}); err != nil {
			return err
		}
	}
	return nil
}

func (m *SelfIncrementingModel) Initialize(ctx context.Context) error {
	m.state.ResetTrackedChanges(trackedstate.ScopePub)
	return nil
}

func (m *SelfIncrementingModel) Update(ctx context.Context, moment modelconnector.Moment) (*int64, error) {
	if moment.Timestamp > 0 {
		for idx := range m.ids {
			values, defined, err := m.state.Get(m.attr, idx)
			if err != nil {
				return nil, err
			}
			if len(defined) == 0 || !defined[0] {
				continue
			}
			current, ok := values[0].(int32)
			if !ok {
				return nil, fmt.Errorf("fixturemodels: attr[%d] is %T, want int32", idx, values[0])
			}
			if err := m.state.Set(m.attr, idx, []any{current + 1}, []bool{true}); err != nil {
				return nil, err
			}
		}
	}
	next := moment.Timestamp + m.period
	return &next, nil
}

func (m *SelfIncrementingModel) Shutdown(ctx context.Context) error {
	return nil
}
