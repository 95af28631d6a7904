// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package trackedstate owns per-model attribute storage and detects
// changes precisely enough to produce minimal updates: a per-cell
// change-flag state machine layered over dataset.AttributeArray.
package trackedstate

// Flags is a bitmask of attribute registration intents.
type Flags uint8

const (
	// INIT means the data must arrive before Initialize runs.
	INIT Flags = 1 << iota
	// SUB means the data must arrive before Update runs.
	SUB
	// PUB declares intent to publish this attribute.
	PUB
	// OPT marks the attribute non-required.
	OPT
)

func (f Flags) Has(flag Flags) bool {
	return f&flag != 0
}
