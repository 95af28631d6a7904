// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package dataset

import (
	"fmt"

	"github.com/goccy/go-json"
)

// General holds a dataset's scenario-wide metadata: distinguished
// "special" sentinel values addressed by dotted path, and named
// ordered enums mapping integers to category names.
type General struct {
	Special map[string]any
	Enum    map[string][]string
}

// Dataset is a named container of entity groups; at most one per name
// in a scenario.
type Dataset struct {
	Name    string
	Groups  map[string]*EntityGroup
	General General
}

// Schema pins down the AttributeSpec for known (dataset-group-attribute)
// triples ahead of a parse. Attributes absent from the schema are
// inferred from the first non-null cell encountered on the wire, per
// the core's two-phase parse for unregistered attributes.
type Schema map[string]map[string]AttributeSpec

// Validate checks every invariant 1/2/3 consequence reachable from the
// dataset's static structure: unique/non-negative ids and consistent
// attribute array shapes in every group.
func (d *Dataset) Validate() error {
	for name, group := range d.Groups {
		if err := group.Validate(); err != nil {
			return fmt.Errorf("dataset %q group %q: %w", d.Name, name, err)
		}
	}
	return nil
}

type rawCanonical struct {
	Name    string                                 `json:"name"`
	Data    map[string]map[string]json.RawMessage `json:"data"`
	General struct {
		Special map[string]json.RawMessage `json:"special"`
		Enum    map[string][]string        `json:"enum"`
	} `json:"general"`
}

// Parse decodes a dataset from its canonical wire form or the
// alternative single-key top-level form, applying schema where known
// and inferring the rest.
func Parse(data []byte, schema Schema) (*Dataset, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("dataset: unmarshal top level: %w", err)
	}

	var raw rawCanonical
	if _, hasData := top["data"]; hasData {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("dataset: unmarshal canonical form: %w", err)
		}
	} else {
		if len(top) != 1 {
			return nil, fmt.Errorf("dataset: alternative form requires exactly one top-level key, got %d", len(top))
		}
		for name, groups := range top {
			raw.Name = name
			if err := json.Unmarshal(groups, &raw.Data); err != nil {
				return nil, fmt.Errorf("dataset: unmarshal alternative form groups: %w", err)
			}
		}
	}

	ds := &Dataset{
		Name:   raw.Name,
		Groups: make(map[string]*EntityGroup, len(raw.Data)),
		General: General{
			Special: make(map[string]any, len(raw.General.Special)),
			Enum:    raw.General.Enum,
		},
	}
	for path, rawVal := range raw.General.Special {
		var v any
		if err := json.Unmarshal(rawVal, &v); err != nil {
			return nil, fmt.Errorf("dataset: general.special[%q]: %w", path, err)
		}
		ds.General.Special[path] = v
	}

	for groupName, attrs := range raw.Data {
		group, err := parseGroup(groupName, attrs, schema[groupName])
		if err != nil {
			return nil, err
		}
		ds.Groups[groupName] = group
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func parseGroup(groupName string, attrs map[string]json.RawMessage, groupSchema map[string]AttributeSpec) (*EntityGroup, error) {
	idsRaw, ok := attrs["id"]
	if !ok {
		return nil, fmt.Errorf("dataset: group %q missing required \"id\" array", groupName)
	}
	var ids []int64
	if err := json.Unmarshal(idsRaw, &ids); err != nil {
		return nil, fmt.Errorf("dataset: group %q id array: %w", groupName, err)
	}

	group := NewEntityGroup(ids)
	for attrName, attrRaw := range attrs {
		if attrName == "id" {
			continue
		}
		spec, explicit := groupSchema[attrName]
		arr, err := parseAttributeArray(attrRaw, spec, explicit, len(ids))
		if err != nil {
			return nil, fmt.Errorf("dataset: group %q attribute %q: %w", groupName, attrName, err)
		}
		group.Attributes[attrName] = arr
	}
	return group, nil
}

// csrForm is the wire shape of a CSR attribute: a flat values array
// plus its row pointer.
type csrForm struct {
	Data   []json.RawMessage `json:"data"`
	RowPtr []int32           `json:"row_ptr"`
}

func parseAttributeArray(raw json.RawMessage, spec AttributeSpec, explicit bool, numEntities int) (*AttributeArray, error) {
	// A CSR attribute is wire-encoded as an object with "data"/"row_ptr"
	// keys rather than a plain per-entity array.
	var probe map[string]json.RawMessage
	isCSRWire := json.Unmarshal(raw, &probe) == nil && probe != nil
	if isCSRWire {
		var csr csrForm
		if err := json.Unmarshal(raw, &csr); err != nil {
			return nil, err
		}
		if !explicit {
			primitive := Float64
			if len(csr.Data) > 0 {
				var sample any
				if err := json.Unmarshal(csr.Data[0], &sample); err == nil && sample != nil {
					if p, err := inferPrimitive(sample); err == nil {
						primitive = p
					}
				}
			}
			spec = AttributeSpec{Primitive: primitive, IsCSR: true}
		}
		values := make([]any, len(csr.Data))
		defined := make([]bool, len(csr.Data))
		for i, rv := range csr.Data {
			var v any
			if err := json.Unmarshal(rv, &v); err != nil {
				return nil, err
			}
			coerced, err := coerce(v, spec.Primitive)
			if err != nil {
				return nil, err
			}
			values[i] = coerced
			defined[i] = coerced != nil
		}
		arr := &AttributeArray{Spec: spec, Values: values, Defined: defined, RowPtr: csr.RowPtr}
		return arr, arr.Validate(numEntities)
	}

	var entities []json.RawMessage
	if err := json.Unmarshal(raw, &entities); err != nil {
		return nil, fmt.Errorf("unmarshal attribute array: %w", err)
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
			if p, err := inferPrimitive(v); err == nil {
				spec.Primitive = p
				break
			}
		}
	}

	width := spec.ComponentsPerEntity()
	values := make([]any, 0, len(entities)*width)
	defined := make([]bool, 0, len(entities)*width)
	for _, rv := range entities {
		var v any
		if err := json.Unmarshal(rv, &v); err != nil {
			return nil, err
		}
		coerced, err := coerce(v, spec.Primitive)
		if err != nil {
			return nil, err
		}
		values = append(values, coerced)
		defined = append(defined, coerced != nil)
	}
	arr := &AttributeArray{Spec: spec, Values: values, Defined: defined}
	return arr, arr.Validate(numEntities)
}

// Encode produces the canonical name/data wire form.
func (d *Dataset) Encode() ([]byte, error) {
	data := make(map[string]map[string]any, len(d.Groups))
	for groupName, group := range d.Groups {
		block := make(map[string]any, len(group.Attributes)+1)
		block["id"] = group.IDs
		for attrName, arr := range group.Attributes {
			block[attrName] = encodeAttributeArray(arr, len(group.IDs))
		}
		data[groupName] = block
	}

	out := map[string]any{
		"name": d.Name,
		"data": data,
		"general": map[string]any{
			"special": d.General.Special,
			"enum":    d.General.Enum,
		},
	}
	encoded, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("dataset: encode: %w", err)
	}
	return encoded, nil
}

func encodeAttributeArray(arr *AttributeArray, numEntities int) any {
	if arr.Spec.IsCSR {
		values := make([]any, len(arr.Values))
		for i, v := range arr.Values {
			if !arr.Defined[i] {
				values[i] = nil
				continue
			}
			values[i] = v
		}
		return map[string]any{"data": values, "row_ptr": arr.RowPtr}
	}

	width := arr.Spec.ComponentsPerEntity()
	out := make([]any, numEntities)
	for i := 0; i < numEntities; i++ {
		start := i * width
		if width <= 1 {
			if !arr.Defined[start] {
				out[i] = nil
			} else {
				out[i] = arr.Values[start]
			}
			continue
		}
		row := make([]any, width)
		for j := 0; j < width; j++ {
			if !arr.Defined[start+j] {
				row[j] = nil
			} else {
				row[j] = arr.Values[start+j]
			}
		}
		out[i] = row
	}
	return out
}
