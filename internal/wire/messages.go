// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package wire

// Ready is the model->orchestrator registration payload. It carries
// the model's full data mask, keyed by dataset -> entity group ->
// attribute names; a nil slice means "match everything at this
// level" and mirrors datamask.Tree's wire shape directly.
type Ready struct {
	ModelID string                         `json:"model_id"`
	Pub     map[string]map[string][]string `json:"pub"`
	Sub     map[string]map[string][]string `json:"sub"`
}

// Ack acknowledges a NEW_TIME or END broadcast. ModelID identifies the
// sender on the shared orchestrator event subject.
type Ack struct {
	ModelID string `json:"model_id"`
}

// NewTime is broadcast by the Orchestrator at the start of every tick.
type NewTime struct {
	Timestamp int64 `json:"timestamp"`
}

// Update is sent orchestrator->model, either as a bare time wake
// (Key == "") or as a pointer to data held by the Update-Data Service.
type Update struct {
	Timestamp int64  `json:"timestamp"`
	Key       string `json:"key,omitempty"`
	Address   string `json:"address,omitempty"`
	Origin    string `json:"origin,omitempty"`
}

// UpdateSeries is a coalesced list of Update payloads requiring a
// single RESULT in reply.
type UpdateSeries struct {
	Updates []Update `json:"updates"`
}

// Result is the model->orchestrator reply to NEW_TIME/UPDATE/UPDATE_SERIES.
// NextTime == nil means the model leaves the timeline (absent / off-timeline).
type Result struct {
	Key      string `json:"key,omitempty"`
	Address  string `json:"address,omitempty"`
	NextTime *int64 `json:"next_time,omitempty"`
	Origin   string `json:"origin"`
}

// End is broadcast by the Orchestrator to request shutdown.
type End struct {
	DueToFailure bool `json:"due_to_failure"`
}

// ErrorPayload carries a freeform descriptive error, used for both
// model->orchestrator and service->model ERROR messages. ModelID
// identifies the sender on the shared orchestrator event subject; it
// is left empty for service->model replies, where the requester
// already knows who it asked.
type ErrorPayload struct {
	ModelID string `json:"model_id,omitempty"`
	Error   string `json:"error"`
}

// Get requests data from the Init-Data Service (Name set) or the
// Update-Data Service (Key set), with an optional sub-mask applied by
// the Update-Data Service before replying.
type Get struct {
	Key  string                         `json:"key,omitempty"`
	Name string                         `json:"name,omitempty"`
	Mask map[string]map[string][]string `json:"mask,omitempty"`
}

// Data is the Update-Data Service's reply to GET, possibly filtered by
// the requested mask.
type Data struct {
	Data []byte `json:"data"`
	Size int    `json:"size"`
}

// Path is the Init-Data Service's reply to GET: a resolved filesystem
// path, or Found == false when no such dataset is known.
type Path struct {
	Path  string `json:"path"`
	Found bool   `json:"found"`
}

// Put stores an opaque update blob under key in the Update-Data Service.
type Put struct {
	Key  string `json:"key"`
	Data []byte `json:"data"`
	Size int    `json:"size"`
}

// Clear removes every key with the given prefix from the Update-Data
// Service. Called by each model once per NEW_TIME against its own
// key prefix.
type Clear struct {
	Prefix string `json:"prefix"`
}

// Quiescent is published by the Orchestrator on StatusSubject once a
// timestamp's round has no model with a pending obligation and no
// inbox still queued. It is not part of the model protocol — no
// Connector subscribes to StatusSubject — it exists purely for
// dashboard observers via the websocket Bridge.
type Quiescent struct {
	Timestamp int64 `json:"timestamp"`
}
