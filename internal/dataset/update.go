// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package dataset

import (
	"fmt"

	"github.com/goccy/go-json"
)

// AttributeUpdate is the delta form of an AttributeArray, restricted to
// the changed entities. Holes[i] == true means "leave current value
// unchanged at this slot"; for a non-hole entity, Values/Defined carry
// the new component values exactly as in AttributeArray, with
// Defined[i] == false meaning the cell is explicitly set to Undefined.
//
// Per the wire format's structural-position rule, a hole and an
// explicit Undefined are only distinguishable when the attribute has
// inner structure (UnitShape or CSR): a scalar attribute's update can
// only ever express holes, never an explicit transition to Undefined.
type AttributeUpdate struct {
	Spec    AttributeSpec
	Holes   []bool
	Values  []any
	Defined []bool
	RowPtr  []int32
}

// GroupUpdate is one entity group's restricted delta: only the
// entities named in IDs are present, id always included to align
// positions.
type GroupUpdate struct {
	IDs        []int64
	Attributes map[string]*AttributeUpdate
}

// Update is the delta between two world states for one dataset.
type Update struct {
	Name   string
	Groups map[string]*GroupUpdate
}

// ParseUpdate decodes an update from its wire form, which mirrors the
// dataset form but is restricted to changed entities.
func ParseUpdate(data []byte, schema Schema) (*Update, error) {
	var raw rawCanonical
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("dataset: unmarshal update: %w", err)
	}

	u := &Update{Name: raw.Name, Groups: make(map[string]*GroupUpdate, len(raw.Data))}
	for groupName, attrs := range raw.Data {
		gu, err := parseGroupUpdate(groupName, attrs, schema[groupName])
		if err != nil {
			return nil, err
		}
		u.Groups[groupName] = gu
	}
	return u, nil
}

func parseGroupUpdate(groupName string, attrs map[string]json.RawMessage, groupSchema map[string]AttributeSpec) (*GroupUpdate, error) {
	idsRaw, ok := attrs["id"]
	if !ok {
		return nil, fmt.Errorf("dataset: update group %q missing required \"id\" array", groupName)
	}
	var ids []int64
	if err := json.Unmarshal(idsRaw, &ids); err != nil {
		return nil, fmt.Errorf("dataset: update group %q id array: %w", groupName, err)
	}

	gu := &GroupUpdate{IDs: ids, Attributes: make(map[string]*AttributeUpdate)}
	for attrName, attrRaw := range attrs {
		if attrName == "id" {
			continue
		}
		spec, explicit := groupSchema[attrName]
		au, err := parseAttributeUpdate(attrRaw, spec, explicit)
		if err != nil {
			return nil, fmt.Errorf("dataset: update group %q attribute %q: %w", groupName, attrName, err)
		}
		gu.Attributes[attrName] = au
	}
	return gu, nil
}

func parseAttributeUpdate(raw json.RawMessage, spec AttributeSpec, explicit bool) (*AttributeUpdate, error) {
	var entities []json.RawMessage
	if err := json.Unmarshal(raw, &entities); err != nil {
		return nil, fmt.Errorf("unmarshal update attribute array: %w", err)
	}

	if !explicit {
		spec = AttributeSpec{Primitive: Float64}
		for _, rv := range entities {
			var v any
			if err := json.Unmarshal(rv, &v); err != nil {
				return nil, err
			}
			if v == nil {
				continue
			}
			if arr, ok := v.([]any); ok {
				if len(arr) > 0 {
					if p, err := inferPrimitive(arr[0]); err == nil {
						spec.Primitive = p
						spec.UnitShape = []int{len(arr)}
					}
				}
				continue
			}
			if p, err := inferPrimitive(v); err == nil {
				spec.Primitive = p
				break
			}
		}
	}

	au := &AttributeUpdate{Spec: spec}

	// CSR rows are variable-width, so they're tracked with a RowPtr
	// index into the flat Values/Defined buffers rather than a fixed
	// per-entity stride.
	if spec.IsCSR {
		au.RowPtr = []int32{0}
		for _, rv := range entities {
			var probe any
			if err := json.Unmarshal(rv, &probe); err != nil {
				return nil, err
			}
			if probe == nil {
				au.Holes = append(au.Holes, true)
				au.RowPtr = append(au.RowPtr, au.RowPtr[len(au.RowPtr)-1])
				continue
			}
			au.Holes = append(au.Holes, false)
			row, ok := probe.([]any)
			if !ok {
				return nil, fmt.Errorf("dataset: expected array for CSR attribute row, got %T", probe)
			}
			for _, c := range row {
				coerced, err := coerce(c, spec.Primitive)
				if err != nil {
					return nil, err
				}
				au.Values = append(au.Values, coerced)
				au.Defined = append(au.Defined, coerced != nil)
			}
			au.RowPtr = append(au.RowPtr, int32(len(au.Values)))
		}
		return au, nil
	}

	width := spec.ComponentsPerEntity()

	for _, rv := range entities {
		var probe any
		if err := json.Unmarshal(rv, &probe); err != nil {
			return nil, err
		}

		// Top-level null at the entity-slot position is always a hole:
		// this entity carries no change for this attribute.
		if probe == nil {
			au.Holes = append(au.Holes, true)
			for i := 0; i < width; i++ {
				au.Values = append(au.Values, nil)
				au.Defined = append(au.Defined, false)
			}
			continue
		}

		au.Holes = append(au.Holes, false)
		if spec.IsScalar() {
			coerced, err := coerce(probe, spec.Primitive)
			if err != nil {
				return nil, err
			}
			au.Values = append(au.Values, coerced)
			au.Defined = append(au.Defined, true)
			continue
		}

		components, ok := probe.([]any)
		if !ok {
			return nil, fmt.Errorf("dataset: expected array for shaped attribute, got %T", probe)
		}
		if len(components) != width {
			return nil, fmt.Errorf("dataset: expected %d components, got %d", width, len(components))
		}
		for _, c := range components {
			// null at this inner position is an explicit Undefined.
			coerced, err := coerce(c, spec.Primitive)
			if err != nil {
				return nil, err
			}
			au.Values = append(au.Values, coerced)
			au.Defined = append(au.Defined, coerced != nil)
		}
	}
	return au, nil
}

// Entity returns the component values and defined bitmap for the i-th
// listed entity, and whether that entity is a hole (no change).
func (au *AttributeUpdate) Entity(i int) (values []any, defined []bool, hole bool, err error) {
	if i < 0 || i >= len(au.Holes) {
		return nil, nil, false, fmt.Errorf("dataset: entity index %d out of range", i)
	}
	if au.Holes[i] {
		return nil, nil, true, nil
	}
	if au.Spec.IsCSR {
		if i+1 >= len(au.RowPtr) {
			return nil, nil, false, fmt.Errorf("dataset: entity index %d out of range", i)
		}
		start, end := au.RowPtr[i], au.RowPtr[i+1]
		return au.Values[start:end], au.Defined[start:end], false, nil
	}
	width := au.Spec.ComponentsPerEntity()
	start := i * width
	return au.Values[start : start+width], au.Defined[start : start+width], false, nil
}

// Encode produces the canonical name/data wire form of an update, the
// restricted-to-changed-entities counterpart of Dataset.Encode.
func (u *Update) Encode() ([]byte, error) {
	data := make(map[string]map[string]any, len(u.Groups))
	for groupName, gu := range u.Groups {
		block := make(map[string]any, len(gu.Attributes)+1)
		block["id"] = gu.IDs
		for attrName, au := range gu.Attributes {
			block[attrName] = encodeAttributeUpdate(au)
		}
		data[groupName] = block
	}
	out := map[string]any{"name": u.Name, "data": data}
	encoded, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("dataset: encode update: %w", err)
	}
	return encoded, nil
}

func encodeAttributeUpdate(au *AttributeUpdate) any {
	out := make([]any, len(au.Holes))
	if au.Spec.IsCSR {
		for i := range au.Holes {
			if au.Holes[i] {
				out[i] = nil
				continue
			}
			start, end := au.RowPtr[i], au.RowPtr[i+1]
			row := make([]any, end-start)
			for j := start; j < end; j++ {
				if !au.Defined[j] {
					row[j-start] = nil
				} else {
					row[j-start] = au.Values[j]
				}
			}
			out[i] = row
		}
		return out
	}

	width := au.Spec.ComponentsPerEntity()
	for i := range au.Holes {
		if au.Holes[i] {
			out[i] = nil
			continue
		}
		start := i * width
		if width <= 1 {
			if !au.Defined[start] {
				out[i] = nil
			} else {
				out[i] = au.Values[start]
			}
			continue
		}
		row := make([]any, width)
		for j := 0; j < width; j++ {
			if !au.Defined[start+j] {
				row[j] = nil
			} else {
				row[j] = au.Values[start+j]
			}
		}
		out[i] = row
	}
	return out
}

// Project returns a copy of u restricted to the groups/attributes named
// in mask (dataset -> group -> attrs, the same shape as wire.Get's
// Mask). mask == nil returns u unchanged; an absent dataset entry in
// mask yields an empty Update (matches nothing).
func (u *Update) Project(mask map[string]map[string][]string) *Update {
	if mask == nil {
		return u
	}
	groupMask, ok := mask[u.Name]
	if !ok {
		return &Update{Name: u.Name, Groups: map[string]*GroupUpdate{}}
	}

	out := &Update{Name: u.Name, Groups: make(map[string]*GroupUpdate, len(u.Groups))}
	for groupName, gu := range u.Groups {
		attrs, ok := groupMask[groupName]
		if !ok {
			continue
		}
		filtered := &GroupUpdate{IDs: gu.IDs, Attributes: make(map[string]*AttributeUpdate)}
		if attrs == nil {
			// nil slice = wildcard: keep every attribute.
			for name, au := range gu.Attributes {
				filtered.Attributes[name] = au
			}
		} else {
			for _, name := range attrs {
				if au, ok := gu.Attributes[name]; ok {
					filtered.Attributes[name] = au
				}
			}
		}
		out.Groups[groupName] = filtered
	}
	return out
}
