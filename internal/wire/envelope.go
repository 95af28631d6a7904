// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package wire implements the message catalog and envelope framing
// carried over NATS subjects between the Orchestrator, Model
// Connectors, and the Init-Data and Update-Data services.
//
// Every message is framed as an Envelope: a short ASCII type tag plus
// a JSON payload. The payload shape is looked up by Kind and decoded
// on demand with Envelope.Payload, mirroring the corpus's
// tag-then-structured-text event framing (internal/eventprocessor's
// MediaEvent/Serializer pair) rather than introducing a binary codec.
package wire

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Kind is the first-frame type tag of a wire message.
type Kind string

// Message catalog, per the external interface message table.
const (
	KindReady        Kind = "READY"
	KindAck          Kind = "ACK"
	KindNewTime      Kind = "NEW_TIME"
	KindUpdate       Kind = "UPDATE"
	KindUpdateSeries Kind = "UPDATE_SERIES"
	KindResult       Kind = "RESULT"
	KindEnd          Kind = "END"
	KindError        Kind = "ERROR"
	KindGet          Kind = "GET"
	KindData         Kind = "DATA"
	KindPath         Kind = "PATH"
	KindPut          Kind = "PUT"
	KindClear        Kind = "CLEAR"

	// KindQuiescent is a dashboard-only status event; it is never sent
	// to or expected from a Connector.
	KindQuiescent Kind = "QUIESCENT"
)

// Envelope is the on-the-wire frame: a type tag plus its raw payload.
type Envelope struct {
	Kind    Kind            `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope marshals payload and wraps it with its kind tag.
func NewEnvelope(kind Kind, payload any) (*Envelope, error) {
	if payload == nil {
		return &Envelope{Kind: kind}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal %s payload: %w", kind, err)
	}
	return &Envelope{Kind: kind, Payload: raw}, nil
}

// Marshal encodes the envelope for transport.
func Marshal(env *Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal envelope: %w", err)
	}
	return data, nil
}

// Unmarshal decodes an envelope off the wire.
func Unmarshal(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("wire: unmarshal envelope: %w", err)
	}
	return &env, nil
}

// Decode unmarshals the envelope's payload into target, which must be
// a pointer to the payload type registered for env.Kind (e.g. *Update
// for KindUpdate).
func (e *Envelope) Decode(target any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return fmt.Errorf("wire: decode %s payload: %w", e.Kind, err)
	}
	return nil
}
