// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package trackedstate

// Handle addresses one registered attribute within a State by its
// (entity_group, name) pair.
type Handle struct {
	Group string
	Name  string
}
