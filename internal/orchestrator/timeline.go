// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package orchestrator

import (
	"time"

	"github.com/movici/simulation-core/internal/cache"
	"github.com/movici/simulation-core/internal/simerrors"
)

// Timeline is the Orchestrator's authoritative schedule: one entry per
// registered model, ordered by its next wake timestamp. It is a thin
// adapter over cache.MinHeap, translating simulation ticks (int64) to
// the time.Time ordering key that type already maintains, since a
// model id can hold at most one timeline entry (invariant 6) and
// MinHeap's byKey upsert-on-Push gives that for free.
type Timeline struct {
	heap *cache.MinHeap[simerrors.ModelID]
}

// NewTimeline creates an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{heap: cache.NewMinHeap[simerrors.ModelID](0)}
}

// Upsert schedules model to wake at timestamp, replacing any existing
// entry for that model.
func (t *Timeline) Upsert(model simerrors.ModelID, timestamp int64) {
	t.heap.Push(string(model), model, tickToTime(timestamp))
}

// Remove drops model's timeline entry, if any (the model went
// off-timeline: its last RESULT carried no next_time).
func (t *Timeline) Remove(model simerrors.ModelID) {
	t.heap.Remove(string(model))
}

// Len reports how many models currently hold a timeline entry.
func (t *Timeline) Len() int {
	return t.heap.Len()
}

// NextTimestamp peeks the smallest scheduled timestamp without
// popping anything. ok is false when the timeline is empty.
func (t *Timeline) NextTimestamp() (timestamp int64, ok bool) {
	entry := t.heap.Peek()
	if entry == nil {
		return 0, false
	}
	return timeToTick(entry.Timestamp), true
}

// PopEarliest removes and returns every model scheduled at the
// smallest timestamp currently on the timeline, forming a round's
// initial active set (per §4.4 step 1).
func (t *Timeline) PopEarliest() (models []simerrors.ModelID, timestamp int64, ok bool) {
	first := t.heap.Pop()
	if first == nil {
		return nil, 0, false
	}
	timestamp = timeToTick(first.Timestamp)
	models = []simerrors.ModelID{first.Value}

	for {
		next := t.heap.Peek()
		if next == nil || timeToTick(next.Timestamp) != timestamp {
			break
		}
		models = append(models, t.heap.Pop().Value)
	}
	return models, timestamp, true
}

// tickToTime and timeToTick give the heap's time.Time ordering key a
// lossless round trip through simulation ticks: one tick, one second.
func tickToTime(tick int64) time.Time { return time.Unix(tick, 0) }
func timeToTick(t time.Time) int64    { return t.Unix() }
