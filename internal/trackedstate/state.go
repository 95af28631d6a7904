// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package trackedstate

import (
	"errors"
	"fmt"

	"github.com/movici/simulation-core/internal/dataset"
)

// ErrShapeMismatch is returned when a write does not match an
// attribute's declared shape or dtype. Fatal for the owning model.
var ErrShapeMismatch = errors.New("trackedstate: shape mismatch")

// ErrOutOfRange is returned when a write addresses an entity index
// beyond an attribute's registered entity count. Fatal for the owning
// model.
var ErrOutOfRange = errors.New("trackedstate: index out of range")

type attrEntry struct {
	spec        dataset.AttributeSpec
	flags       Flags
	array       *dataset.AttributeArray
	cells       []cellState
	numEntities int
}

// cellCount is how many cellState slots this attribute needs: one per
// row for a CSR attribute (a row is the unit of change, per invariant
// 4 - any differing element marks the whole row dirty), one per
// scalar component otherwise.
func (e *attrEntry) cellCount() int {
	if e.spec.IsCSR {
		return e.numEntities
	}
	return e.numEntities * e.spec.ComponentsPerEntity()
}

// cellRange returns the cells slice indices covering entity idx: a
// single row-granularity slot for CSR, or [idx*width, idx*width+width)
// for a fixed-width attribute.
func (e *attrEntry) cellRange(idx int) (start, end int) {
	if e.spec.IsCSR {
		return idx, idx + 1
	}
	width := e.spec.ComponentsPerEntity()
	return idx * width, idx*width + width
}

func (e *attrEntry) growCells() {
	for len(e.cells) < e.cellCount() {
		e.cells = append(e.cells, clean)
	}
}

type groupEntry struct {
	ids   []int64
	index map[int64]int
	attrs map[string]*attrEntry
}

func newGroupEntry(ids []int64) *groupEntry {
	idx := make(map[int64]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	return &groupEntry{ids: ids, index: idx, attrs: make(map[string]*attrEntry)}
}

// State owns one model's tracked attribute storage: dense per-cell
// values plus the per-cell change-flag state machine needed to
// produce minimal updates.
type State struct {
	groups map[string]*groupEntry
	built  bool
}

// New creates a State whose entity groups are seeded from schema (the
// per-simulation schema object shared across processes). schema may be
// nil; groups can then only be added via Builder.RegisterEntityGroup.
func New(schema *dataset.Dataset) *State {
	s := &State{groups: make(map[string]*groupEntry)}
	if schema != nil {
		for name, group := range schema.Groups {
			ids := make([]int64, len(group.IDs))
			copy(ids, group.IDs)
			s.groups[name] = newGroupEntry(ids)
		}
	}
	return s
}

// Builder returns a registration view over s, for use during a
// model's Setup callback.
func (s *State) Builder() *Builder {
	return &Builder{state: s}
}

func (s *State) registerEntityGroup(group string, ids []int64) error {
	if s.built {
		return fmt.Errorf("trackedstate: cannot register entity group %q after Build", group)
	}
	if _, exists := s.groups[group]; exists {
		return fmt.Errorf("trackedstate: entity group %q already registered", group)
	}
	s.groups[group] = newGroupEntry(ids)
	return nil
}

func (s *State) registerAttribute(group, name string, spec dataset.AttributeSpec, flags Flags) (Handle, error) {
	if s.built {
		return Handle{}, fmt.Errorf("trackedstate: cannot register attribute %q after Build", name)
	}
	ge, ok := s.groups[group]
	if !ok {
		return Handle{}, fmt.Errorf("trackedstate: unknown entity group %q", group)
	}
	if _, exists := ge.attrs[name]; exists {
		return Handle{}, fmt.Errorf("trackedstate: attribute %q already registered in group %q", name, group)
	}

	array := dataset.NewAttributeArray(spec, len(ge.ids))
	ae := &attrEntry{
		spec:        spec,
		flags:       flags,
		array:       array,
		numEntities: len(ge.ids),
	}
	ae.growCells()
	ge.attrs[name] = ae
	return Handle{Group: group, Name: name}, nil
}

func (s *State) lookup(h Handle) (*groupEntry, *attrEntry, error) {
	ge, ok := s.groups[h.Group]
	if !ok {
		return nil, nil, fmt.Errorf("trackedstate: unknown entity group %q", h.Group)
	}
	ae, ok := ge.attrs[h.Name]
	if !ok {
		return nil, nil, fmt.Errorf("trackedstate: unknown attribute %q in group %q", h.Name, h.Group)
	}
	return ge, ae, nil
}

// Get returns entity idx's current component values and defined bitmap
// for the attribute addressed by h.
func (s *State) Get(h Handle, idx int) (values []any, defined []bool, err error) {
	_, ae, err := s.lookup(h)
	if err != nil {
		return nil, nil, err
	}
	return ae.array.Entity(idx)
}

// Set overwrites entity idx's values for the attribute addressed by h,
// as an owner write: marks the touched cells pub_dirty (or both_dirty
// if already sub_dirty this timestamp), unless the write is a no-op
// (new values equal the current ones).
func (s *State) Set(h Handle, idx int, values []any, defined []bool) error {
	_, ae, err := s.lookup(h)
	if err != nil {
		return err
	}
	if len(values) != len(defined) {
		return ErrShapeMismatch
	}
	if !ae.spec.IsCSR {
		width := ae.spec.ComponentsPerEntity()
		if len(values) != width {
			return ErrShapeMismatch
		}
	}
	if idx < 0 || idx >= ae.array.NumEntities() {
		return ErrOutOfRange
	}

	cur, curDefined, err := ae.array.Entity(idx)
	if err != nil {
		return ErrOutOfRange
	}
	changed := !rowEqual(cur, curDefined, values, defined)

	if err := ae.array.SetEntity(idx, values, defined); err != nil {
		return ErrShapeMismatch
	}

	ae.growCells()
	if !changed {
		return nil // unchanged write is not a change
	}
	start, end := ae.cellRange(idx)
	for i := start; i < end; i++ {
		ae.cells[i] = ae.cells[i].ownerWrite()
	}
	return nil
}

// rowEqual reports whether two rows carry identical values and
// defined bitmaps, including a differing length (a CSR row growing or
// shrinking is itself a change, per invariant 4).
func rowEqual(aValues []any, aDefined []bool, bValues []any, bDefined []bool) bool {
	if len(aValues) != len(bValues) {
		return false
	}
	for i := range aValues {
		if aDefined[i] != bDefined[i] || aValues[i] != bValues[i] {
			return false
		}
	}
	return true
}

// ApplyUpdate merges a delta into tracked state: per entity, a hole
// leaves the cell unchanged; an explicit value (or Undefined)
// overwrites it and marks a SUB change.
func (s *State) ApplyUpdate(u *dataset.Update) error {
	for groupName, gu := range u.Groups {
		ge, ok := s.groups[groupName]
		if !ok {
			return fmt.Errorf("trackedstate: unknown entity group %q in update", groupName)
		}
		for attrName, au := range gu.Attributes {
			ae, ok := ge.attrs[attrName]
			if !ok {
				return fmt.Errorf("trackedstate: unknown attribute %q in update for group %q", attrName, groupName)
			}
			if err := applyAttributeUpdate(ge, ae, gu.IDs, au); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyAttributeUpdate(ge *groupEntry, ae *attrEntry, updateIDs []int64, au *dataset.AttributeUpdate) error {
	for i, id := range updateIDs {
		idx, ok := ge.index[id]
		if !ok {
			return fmt.Errorf("trackedstate: update references unknown entity id %d", id)
		}
		values, defined, hole, err := au.Entity(i)
		if err != nil {
			return err
		}
		if hole {
			continue
		}
		if err := ae.array.SetEntity(idx, values, defined); err != nil {
			return ErrShapeMismatch
		}
		ae.growCells()
		start, end := ae.cellRange(idx)
		for c := start; c < end; c++ {
			ae.cells[c] = ae.cells[c].externalWrite()
		}
	}
	return nil
}

// GenerateUpdate returns a delta covering only cells dirty within
// scope, narrowed to attributes flagged PUB when scope is ScopePub.
func (s *State) GenerateUpdate(scope Scope) *dataset.Update {
	result := &dataset.Update{Groups: make(map[string]*dataset.GroupUpdate)}

	for groupName, ge := range s.groups {
		dirtyIDs := dirtyEntityIDs(ge, scope)
		if len(dirtyIDs) == 0 {
			continue
		}
		gu := &dataset.GroupUpdate{IDs: dirtyIDs, Attributes: make(map[string]*dataset.AttributeUpdate)}
		for attrName, ae := range ge.attrs {
			if scope == ScopePub && !ae.flags.Has(PUB) {
				continue
			}
			au := buildAttributeUpdate(ge, ae, dirtyIDs, scope)
			if au != nil {
				gu.Attributes[attrName] = au
			}
		}
		if len(gu.Attributes) > 0 {
			result.Groups[groupName] = gu
		}
	}
	return result
}

func dirtyEntityIDs(ge *groupEntry, scope Scope) []int64 {
	dirty := make(map[int64]struct{})
	for _, ae := range ge.attrs {
		ae.growCells()
		for idx, id := range ge.ids {
			start, end := ae.cellRange(idx)
			for c := start; c < end; c++ {
				if c >= len(ae.cells) {
					continue
				}
				if ae.cells[c].dirtyFor(scope) {
					dirty[id] = struct{}{}
					break
				}
			}
		}
	}
	ids := make([]int64, 0, len(dirty))
	for _, id := range ge.ids {
		if _, ok := dirty[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func buildAttributeUpdate(ge *groupEntry, ae *attrEntry, dirtyIDs []int64, scope Scope) *dataset.AttributeUpdate {
	au := &dataset.AttributeUpdate{Spec: ae.spec}
	anyValue := false
	if ae.spec.IsCSR {
		au.RowPtr = []int32{0}
	}

	for _, id := range dirtyIDs {
		idx := ge.index[id]
		start, end := ae.cellRange(idx)
		entityDirty := false
		for c := start; c < end; c++ {
			if c < len(ae.cells) && ae.cells[c].dirtyFor(scope) {
				entityDirty = true
				break
			}
		}

		rowValues, rowDefined, err := ae.array.Entity(idx)
		if err != nil {
			rowValues, rowDefined = nil, nil
		}

		if !entityDirty {
			au.Holes = append(au.Holes, true)
			if ae.spec.IsCSR {
				au.RowPtr = append(au.RowPtr, au.RowPtr[len(au.RowPtr)-1])
			} else {
				for range rowValues {
					au.Values = append(au.Values, nil)
					au.Defined = append(au.Defined, false)
				}
			}
			continue
		}
		anyValue = true
		au.Holes = append(au.Holes, false)
		au.Values = append(au.Values, rowValues...)
		au.Defined = append(au.Defined, rowDefined...)
		if ae.spec.IsCSR {
			au.RowPtr = append(au.RowPtr, int32(len(au.Values)))
		}
	}
	if !anyValue {
		return nil
	}
	return au
}

// ResetTrackedChanges clears change flags in scope across every
// registered attribute.
func (s *State) ResetTrackedChanges(scope Scope) {
	for _, ge := range s.groups {
		for _, ae := range ge.attrs {
			for i, c := range ae.cells {
				ae.cells[i] = c.resetAfterGenerate(scope)
			}
		}
	}
}

// Schema returns the registered attribute specs for every entity
// group, in the shape dataset.ParseUpdate expects, so an incoming
// update is decoded against this model's own declared types rather
// than the two-phase inference path reserved for unregistered
// attributes.
func (s *State) Schema() dataset.Schema {
	schema := make(dataset.Schema, len(s.groups))
	for groupName, ge := range s.groups {
		attrs := make(map[string]dataset.AttributeSpec, len(ge.attrs))
		for attrName, ae := range ge.attrs {
			attrs[attrName] = ae.spec
		}
		schema[groupName] = attrs
	}
	return schema
}

// Mask derives this State's pub/sub data mask trees for registration,
// keyed under the given dataset name: the exact attribute names
// flagged PUB (resp. SUB) per entity group, per invariant 4 ("a
// model's pub mask must cover every attribute the model writes").
func (s *State) Mask(datasetName string) (pub, sub map[string]map[string][]string) {
	pubGroups := make(map[string][]string)
	subGroups := make(map[string][]string)
	for groupName, ge := range s.groups {
		for attrName, ae := range ge.attrs {
			if ae.flags.Has(PUB) {
				pubGroups[groupName] = append(pubGroups[groupName], attrName)
			}
			if ae.flags.Has(SUB) {
				subGroups[groupName] = append(subGroups[groupName], attrName)
			}
		}
	}
	pub = map[string]map[string][]string{}
	sub = map[string]map[string][]string{}
	if len(pubGroups) > 0 {
		pub[datasetName] = pubGroups
	}
	if len(subGroups) > 0 {
		sub[datasetName] = subGroups
	}
	return pub, sub
}

// AllInitFulfilled reports whether every INIT-flagged attribute has a
// fully defined array, i.e. every INIT dependency has arrived.
func (s *State) AllInitFulfilled() bool {
	for _, ge := range s.groups {
		for _, ae := range ge.attrs {
			if !ae.flags.Has(INIT) {
				continue
			}
			for _, d := range ae.array.Defined {
				if !d {
					return false
				}
			}
		}
	}
	return true
}
