// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package dataset

// AttributeSpec describes one attribute's shape and typing, addressable
// together with its dataset and entity group by the triple
// (dataset, entity_group, name).
type AttributeSpec struct {
	Primitive Primitive
	UnitShape []int
	IsCSR     bool
	EnumName  string
	Special   *Scalar
}

// ComponentsPerEntity returns the number of scalar components each
// non-CSR entity occupies: 1 for a bare scalar (empty UnitShape), or
// the product of UnitShape's dimensions otherwise.
func (s AttributeSpec) ComponentsPerEntity() int {
	n := 1
	for _, d := range s.UnitShape {
		n *= d
	}
	return n
}

// Scalar reports whether this attribute has no shape beyond one value
// per entity. Per the wire format's structural-position rule, a hole
// and an explicit Undefined are indistinguishable for scalar
// attributes, so updates can only express holes for them.
func (s AttributeSpec) IsScalar() bool {
	return !s.IsCSR && len(s.UnitShape) == 0
}
