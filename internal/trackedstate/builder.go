// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package trackedstate

import "github.com/movici/simulation-core/internal/dataset"

// Builder is the registration-only view of a State handed to a
// model's Setup callback. Registration is only legal before Build.
type Builder struct {
	state *State
}

// RegisterEntityGroup declares a named aggregate of attribute handles
// over the given entity ids.
func (b *Builder) RegisterEntityGroup(group string, ids []int64) error {
	return b.state.registerEntityGroup(group, ids)
}

// RegisterAttribute declares one attribute and returns a handle for
// later Get/Set access. flags is any subset of INIT|SUB|PUB|OPT.
func (b *Builder) RegisterAttribute(group, name string, spec dataset.AttributeSpec, flags Flags) (Handle, error) {
	return b.state.registerAttribute(group, name, spec, flags)
}

// State returns the underlying State for read/write access during the
// model's later lifecycle callbacks (Initialize/Update). Safe to call
// before or after Build.
func (b *Builder) State() *State {
	return b.state
}

// Build locks the State against further registration and returns it.
func (b *Builder) Build() *State {
	b.state.built = true
	return b.state
}
