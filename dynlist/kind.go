// Copyright (C) 2026  Nexedi SA and Contributors.
//
// This program is free software: you can Use, Study, Modify and Redistribute
// it under the terms of the GNU General Public License version 3, or (at your
// option) any later version, as published by the Free Software Foundation.
//
// You can also Link and Combine this program with other software covered by
// the terms of any of the Free Software licenses or any of the Open Source
// Initiative approved licenses and Convey the resulting work. Corresponding
// source of such a combination shall include the source code for all other
// software used.
//
// This program is distributed WITHOUT ANY WARRANTY; without even the implied
// warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//
// See COPYING file for full licensing terms.
// See https://www.nexedi.com/licensing for rationale and options.

package dynlist
// element kinds

import (
	"math"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"lab.nexedi.com/kirr/dynlist/dynode"
)

// Kind defines how values of type V are kept in list nodes.
//
// The set of kinds is closed:
//
//	Sized[T]	fixed-size T; V = T
//	Array[T]	variable-length array of T; V = []T
//	String		V = string
//	AnyOf[C]	any registered plain type with capabilities C; V = any
//
// Kinds are zero-sized; a list keeps one as its node shape.
type Kind[V any] interface {
	dynode.Shape

	// check panics if V cannot be stored by this kind.
	check()

	// desc returns descriptor of a node able to hold v.
	desc(v V) (uint64, error)

	// set writes v into value memory b of a node with descriptor d.
	set(b []byte, d uint64, v V)

	// view returns value stored in b of a node with descriptor d.
	// The result may alias b.
	view(b []byte, d uint64) V

	// own returns v that does not alias node memory.
	own(v V) V
}

// descLen converts array descriptor to length.
func descLen(d uint64) (int, error) {
	if d > math.MaxInt {
		return 0, errors.Wrapf(dynode.ErrLayout, "length %d", d)
	}
	return int(d), nil
}


// Sized is the kind of plain fixed-size values of type T.
//
// Nodes carry no descriptor.
type Sized[T any] struct{}

func (Sized[T]) Described() bool { return false }
func (Sized[T]) ValueLayout(uint64) (dynode.Layout, error) {
	return dynode.LayoutOf[T](), nil
}

func (Sized[T]) check()                      { dynode.MustPlain[T]() }
func (Sized[T]) desc(T) (uint64, error)      { return 0, nil }
func (Sized[T]) set(b []byte, _ uint64, v T) { *dynode.ValuePtr[T](b) = v }
func (Sized[T]) view(b []byte, _ uint64) T   { return *dynode.ValuePtr[T](b) }
func (Sized[T]) own(v T) T                   { return v }


// Array is the kind of variable-length arrays of plain T.
//
// The descriptor is array length. Views alias node memory: modifications
// through them are modifications of the node value.
type Array[T any] struct{}

func (Array[T]) Described() bool { return true }
func (Array[T]) ValueLayout(d uint64) (dynode.Layout, error) {
	n, err := descLen(d)
	if err != nil {
		return dynode.Layout{}, err
	}
	return dynode.ArrayLayout[T](n)
}

func (Array[T]) check()                     { dynode.MustPlain[T]() }
func (Array[T]) desc(v []T) (uint64, error) { return uint64(len(v)), nil }
func (Array[T]) own(v []T) []T              { return slices.Clone(v) }

// set copies min(len(v), d) elements.
func (Array[T]) set(b []byte, d uint64, v []T) {
	copy(dynode.ValueSlice[T](b, int(d)), v)
}

func (Array[T]) view(b []byte, d uint64) []T {
	return dynode.ValueSlice[T](b, int(d))
}


// String is the kind of strings.
//
// The descriptor is string length in bytes. Strings are not checked to be
// valid UTF-8 (see FromUTF8). Strings read from the list are copies of node
// memory; for in-place access convert to a byte list with IntoBytes.
type String struct{}

func (String) Described() bool { return true }
func (String) ValueLayout(d uint64) (dynode.Layout, error) {
	n, err := descLen(d)
	if err != nil {
		return dynode.Layout{}, err
	}
	return dynode.NewLayout(n, 1)
}

func (String) check()                           {}
func (String) desc(v string) (uint64, error)    { return uint64(len(v)), nil }
func (String) set(b []byte, _ uint64, v string) { copy(b, v) }
func (String) own(v string) string              { return v }

// view copies: node memory goes back to a buffer pool when the node is
// deleted, and a string must not change afterwards.
func (String) view(b []byte, _ uint64) string {
	return strings.Clone(dynode.ValueString(b))
}
