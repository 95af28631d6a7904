// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package cache provides small generic data structures shared by the
// runtime: a timestamp-ordered min-heap (the Orchestrator's timeline) and
// a bounded LRU (the Init-Data Service's resolved-path cache).
package cache
