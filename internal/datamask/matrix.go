// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package datamask

import (
	"sort"

	"github.com/movici/simulation-core/internal/simerrors"
)

type cell struct {
	dataset, group, attr string
}

// Matrix is the built PubSub dependency graph: for each (dataset,
// group, attribute) cell, which models publish it and which models
// subscribe to it, collapsed to the finest granularity the masks
// declare.
//
// The registry is keyed by model ID the same way ConnectorRegistry
// keys its managed connectors, for the same reason: set membership and
// duplicate detection matter more here than insertion order.
type Matrix struct {
	subscribers map[simerrors.ModelID]map[simerrors.ModelID]struct{}
	dependents  map[simerrors.ModelID]map[simerrors.ModelID]struct{}
	multiPub    map[cell][]simerrors.ModelID
}

// BuildMatrix intersects every publisher's pub cells with every other
// model's sub cells at (dataset, group, attribute) granularity.
// registrations must already be normalized (no wildcards, no nil
// trees standing in for "nothing" ambiguity).
func BuildMatrix(registrations map[simerrors.ModelID]Mask) (*Matrix, error) {
	publishersOf := make(map[cell][]simerrors.ModelID)
	for model, mask := range registrations {
		if mask.Pub == nil {
			continue
		}
		for dataset, groups := range *mask.Pub {
			for group, attrs := range groups {
				for _, attr := range attrs {
					c := cell{dataset, group, attr}
					publishersOf[c] = append(publishersOf[c], model)
				}
			}
		}
	}

	m := &Matrix{
		subscribers: make(map[simerrors.ModelID]map[simerrors.ModelID]struct{}),
		dependents:  make(map[simerrors.ModelID]map[simerrors.ModelID]struct{}),
		multiPub:    make(map[cell][]simerrors.ModelID),
	}
	for c, pubs := range publishersOf {
		if len(pubs) > 1 {
			m.multiPub[c] = pubs
		}
	}

	for subModel, mask := range registrations {
		if mask.Sub == nil {
			continue
		}
		for dataset, groups := range *mask.Sub {
			for group, attrs := range groups {
				for _, attr := range attrs {
					c := cell{dataset, group, attr}
					for _, pubModel := range publishersOf[c] {
						if pubModel == subModel {
							continue
						}
						addEdge(m.subscribers, pubModel, subModel)
						addEdge(m.dependents, subModel, pubModel)
					}
				}
			}
		}
	}
	return m, nil
}

func addEdge(edges map[simerrors.ModelID]map[simerrors.ModelID]struct{}, from, to simerrors.ModelID) {
	if edges[from] == nil {
		edges[from] = make(map[simerrors.ModelID]struct{})
	}
	edges[from][to] = struct{}{}
}

// SubscribersOf returns every model subscribed to any cell pub
// publishes, sorted for deterministic iteration.
func (m *Matrix) SubscribersOf(pub simerrors.ModelID) []simerrors.ModelID {
	return setToSortedSlice(m.subscribers[pub])
}

// DependsOn returns every model sub is dependent on - the set the
// orchestrator must see RESULT from before it may notify sub.
func (m *Matrix) DependsOn(sub simerrors.ModelID) []simerrors.ModelID {
	return setToSortedSlice(m.dependents[sub])
}

// MultiPublished returns the (dataset, group, attribute) cells more
// than one model declared in its pub mask, for registration-time
// diagnostics.
func (m *Matrix) MultiPublished() int {
	return len(m.multiPub)
}

func setToSortedSlice(set map[simerrors.ModelID]struct{}) []simerrors.ModelID {
	out := make([]simerrors.ModelID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
