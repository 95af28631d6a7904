// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package datamask normalizes per-model publication/subscription masks
// and builds the PubSub matrix the orchestrator uses to decide who
// depends on whom and who to broadcast to.
package datamask

import "fmt"

// Tree is a subscription/publication mask: dataset -> entity_group ->
// attribute names. A nil inner map or nil attribute slice is a
// wildcard, expanded by Normalize against the observed Catalog. An
// empty (non-nil) inner map or attribute slice is invalid at any
// nested level - only the top-level Tree itself may be empty, meaning
// "nothing".
type Tree map[string]map[string][]string

// Catalog is the full set of datasets/groups/attributes observed
// across every model's registration, used to resolve Tree wildcards.
type Catalog map[string]map[string][]string

// Mask is one model's declared publication and subscription trees.
type Mask struct {
	Pub *Tree
	Sub *Tree
}

// Normalize expands every wildcard entry in trees in place against
// observed, and rejects empty non-nil nested containers. nil trees are
// skipped (equivalent to "nothing").
func Normalize(trees []*Tree, observed Catalog) error {
	for _, t := range trees {
		if t == nil {
			continue
		}
		if err := normalizeTree(*t, observed); err != nil {
			return err
		}
	}
	return nil
}

func normalizeTree(t Tree, observed Catalog) error {
	for dataset, groups := range t {
		if groups == nil {
			observedGroups, ok := observed[dataset]
			if !ok {
				return fmt.Errorf("datamask: wildcard dataset %q not present in the registration catalog", dataset)
			}
			expanded := make(map[string][]string, len(observedGroups))
			for group := range observedGroups {
				expanded[group] = nil
			}
			t[dataset] = expanded
			groups = expanded
		}
		if len(groups) == 0 {
			return fmt.Errorf("datamask: dataset %q has an empty group map; use {} at the top level for \"nothing\"", dataset)
		}

		for group, attrs := range groups {
			if attrs == nil {
				observedAttrs, ok := observed[dataset][group]
				if !ok {
					return fmt.Errorf("datamask: wildcard group %q in dataset %q not present in the registration catalog", group, dataset)
				}
				groups[group] = append([]string(nil), observedAttrs...)
				continue
			}
			if len(attrs) == 0 {
				return fmt.Errorf("datamask: group %q in dataset %q has an empty attribute list; use {} at the top level for \"nothing\"", group, dataset)
			}
		}
	}
	return nil
}
