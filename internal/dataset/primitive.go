// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package dataset defines the canonical in-memory and wire
// representation of scenario data: typed attribute arrays indexed by
// entity identity, grouped into entity groups and named datasets, plus
// the restricted delta form used for updates.
package dataset

import "fmt"

// Primitive enumerates the attribute value types a Dataset can carry.
type Primitive int

const (
	Bool Primitive = iota
	Int32
	Float64
	String
)

func (p Primitive) String() string {
	switch p {
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Float64:
		return "float64"
	case String:
		return "string"
	default:
		return fmt.Sprintf("primitive(%d)", int(p))
	}
}

// Scalar is a single attribute cell value: one of bool, int32, float64,
// or string, as named by a Primitive. It is an alias for any so call
// sites can use Go literals directly.
type Scalar = any

// coerce converts a loosely-typed value decoded from JSON (which only
// ever produces bool, float64, string, or nil) into the concrete Go
// type for primitive. nil passes through unchanged; callers treat a
// coerced nil as Undefined.
func coerce(v any, primitive Primitive) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch primitive {
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("dataset: expected bool, got %T", v)
		}
		return b, nil
	case Int32:
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("dataset: expected int32, got %T", v)
		}
		return int32(f), nil
	case Float64:
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("dataset: expected float64, got %T", v)
		}
		return f, nil
	case String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("dataset: expected string, got %T", v)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("dataset: unknown primitive %v", primitive)
	}
}

// inferPrimitive guesses a Primitive from a loosely-typed JSON value,
// for the two-phase parse of attributes with no explicit schema entry.
func inferPrimitive(v any) (Primitive, error) {
	switch v.(type) {
	case bool:
		return Bool, nil
	case float64:
		return Float64, nil
	case string:
		return String, nil
	default:
		return 0, fmt.Errorf("dataset: cannot infer primitive from %T", v)
	}
}
