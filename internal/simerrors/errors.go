// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package simerrors defines the typed error taxonomy shared by every
// component that crosses a model, service, or transport boundary.
//
// Each type wraps enough context for the Orchestrator to decide whether
// a fault is fatal to one peer or to the whole run, and implements
// Unwrap so errors.As/errors.Is keep working across the gobreaker and
// NATS error boundaries.
package simerrors

import (
	"errors"
	"fmt"
)

// ModelID identifies a registered model connector. It is the same value
// used as the NATS subject component and in scenario configuration.
type ModelID string

// ProtocolError reports an unexpected message type or order for the
// state a peer is in. It is fatal to the offending peer; the
// Orchestrator treats the sender as failed.
type ProtocolError struct {
	Peer ModelID
	Got  string
	Want string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error from %s: got %s, want %s", e.Peer, e.Got, e.Want)
}

// DataError reports a malformed payload: shape/dtype mismatch,
// out-of-range ids, or an unparseable update. It is fatal to the
// receiving model.
type DataError struct {
	Attr   string
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error on attribute %q: %s", e.Attr, e.Reason)
}

// ModelError wraps an error raised by model logic itself. It is fatal
// to that model.
type ModelError struct {
	Model ModelID
	Cause error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s failed: %s", e.Model, e.Cause)
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}

// ResourceError reports that init-data was not found, an update-data
// key was missing, or a service was unreachable. It is fatal to the
// requesting model unless the attribute is marked OPT.
type ResourceError struct {
	Resource string
	Cause    error
}

func (e *ResourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resource %q unavailable: %s", e.Resource, e.Cause)
	}
	return fmt.Sprintf("resource %q unavailable", e.Resource)
}

func (e *ResourceError) Unwrap() error {
	return e.Cause
}

// TimeoutError reports that the Orchestrator did not receive an
// expected response within the bound it was waiting on. It is treated
// as a peer failure.
type TimeoutError struct {
	Peer    ModelID
	Waiting string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout waiting on %s for %s", e.Peer, e.Waiting)
}

// IsOptional reports whether err should be tolerated rather than
// escalated, per the ResourceError OPT-attribute exception described in
// the error handling design: a ResourceError for an attribute in the
// given optional set does not fail its model.
func IsOptional(err error, optionalAttrs map[string]bool) bool {
	var rerr *ResourceError
	if !errors.As(err, &rerr) {
		return false
	}
	return optionalAttrs[rerr.Resource]
}
