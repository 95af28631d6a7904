// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package dataset

import "fmt"

// EntityGroup is a named homogeneous collection of entities identified
// by a unique integer id, with ordering stable for the lifetime of the
// simulation, plus the attribute arrays whose i-th slot belongs to the
// group's i-th entity.
type EntityGroup struct {
	IDs        []int64
	Attributes map[string]*AttributeArray
}

// NewEntityGroup creates an empty group over the given entity ids.
func NewEntityGroup(ids []int64) *EntityGroup {
	return &EntityGroup{
		IDs:        ids,
		Attributes: make(map[string]*AttributeArray),
	}
}

// Validate checks invariant 1 (unique, non-negative ids) and that
// every attribute array is consistently shaped for NumEntities.
func (g *EntityGroup) Validate() error {
	seen := make(map[int64]struct{}, len(g.IDs))
	for _, id := range g.IDs {
		if id < 0 {
			return fmt.Errorf("dataset: entity id %d must be >= 0", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("dataset: duplicate entity id %d", id)
		}
		seen[id] = struct{}{}
	}
	for name, attr := range g.Attributes {
		if err := attr.Validate(len(g.IDs)); err != nil {
			return fmt.Errorf("dataset: attribute %q: %w", name, err)
		}
	}
	return nil
}

// IndexOf returns the position of id within IDs, or -1 if absent.
func (g *EntityGroup) IndexOf(id int64) int {
	for i, v := range g.IDs {
		if v == id {
			return i
		}
	}
	return -1
}
