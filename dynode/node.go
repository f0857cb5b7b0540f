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

package dynode
// node layout and navigation

import (
	"fmt"
	"unsafe"

	"lab.nexedi.com/kirr/dynlist/internal/packed"
)

// Ref refers to a node in an Arena.
type Ref uint32

// NoRef is the absent reference.
const NoRef = ^Ref(0)

func (r Ref) String() string {
	if r == NoRef {
		return "ø"
	}
	return fmt.Sprintf("#%d", uint32(r))
}

// Header is the link part of a node.
//
// It is placed first in node block and is always initialized - Allocate
// writes it before the node is handed out.
type Header struct {
	next packed.BE32
	prev packed.BE32
}

func (h *Header) Next() Ref { return Ref(packed.Ntoh32(h.next)) }
func (h *Header) Prev() Ref { return Ref(packed.Ntoh32(h.prev)) }

func (h *Header) SetNext(r Ref) { h.next = packed.Hton32(uint32(r)) }
func (h *Header) SetPrev(r Ref) { h.prev = packed.Hton32(uint32(r)) }

// Link sets both links of h.
func (h *Header) Link(next, prev Ref) {
	h.SetNext(next)
	h.SetPrev(prev)
}

var (
	headerLayout = LayoutOf[Header]()
	descLayout   = LayoutOf[packed.BE64]()

	// header extended by descriptor; it does not depend on the value
	descHeaderLayout, descOff = mustExtend(headerLayout, descLayout)
)

func mustExtend(l, next Layout) (Layout, int) {
	l, off, err := l.Extend(next)
	if err != nil {
		panic(err)
	}
	return l, off
}

// Shape describes values stored in nodes of one kind.
type Shape interface {
	// Described reports whether nodes carry a descriptor.
	//
	// Shapes with statically known value layout do not need one.
	Described() bool

	// ValueLayout returns layout of a value with descriptor desc.
	//
	// For shapes that are not described desc is always 0.
	ValueLayout(desc uint64) (Layout, error)
}

// Format is the layout of a node together with where its parts are.
type Format struct {
	Node    Layout // whole node including trailing padding
	Value   Layout
	DescOff int    // offset of descriptor; meaningful only for described shapes
	ValOff  int    // offset of value
}

// FormatOf computes format of a node of shape with descriptor desc.
//
// The node is header, extended by descriptor if shape is described, extended
// by the value. It depends only on shape and desc, and this is what allows
// to find value inside an existing node from its descriptor alone.
func FormatOf(shape Shape, desc uint64) (f Format, err error) {
	l := headerLayout
	if shape.Described() {
		l, f.DescOff = descHeaderLayout, descOff
	}

	f.Value, err = shape.ValueLayout(desc)
	if err != nil {
		return Format{}, err
	}
	l, f.ValOff, err = l.Extend(f.Value)
	if err != nil {
		return Format{}, err
	}
	f.Node = l.PadToAlign()
	return f, nil
}

// Node is handle to one node allocation.
//
// Node does not know its shape. Operations that need to locate the
// descriptor or the value take the shape as argument; it must be the shape
// the node was allocated with.
type Node struct {
	blk Block
}

// IsZero reports whether n does not refer to any node.
func (n Node) IsZero() bool { return n.blk.Data == nil }

// Block returns memory block of the node.
func (n Node) Block() Block { return n.blk }

// Header returns header of the node.
func (n Node) Header() *Header {
	return (*Header)(unsafe.Pointer(&n.blk.Data[0]))
}

func (n Node) desc() *packed.BE64 {
	return (*packed.BE64)(unsafe.Pointer(&n.blk.Data[descOff]))
}

// Descriptor returns descriptor of the node, or 0 if shape is not described.
func (n Node) Descriptor(shape Shape) uint64 {
	if !shape.Described() {
		return 0
	}
	return packed.Ntoh64(*n.desc())
}

// Format returns format of the node recomputed from its descriptor.
func (n Node) Format(shape Shape) Format {
	f, err := FormatOf(shape, n.Descriptor(shape))
	if err != nil {
		panic(fmt.Sprintf("dynode: node with invalid descriptor: %s", err))
	}
	return f
}

// Layout returns layout the node was allocated with.
func (n Node) Layout(shape Shape) Layout {
	return n.Format(shape).Node
}

// Value returns memory of the node value.
//
// The returned slice aliases node memory and must not be used after the node
// is deallocated.
func (n Node) Value(shape Shape) []byte {
	f := n.Format(shape)
	end := f.ValOff + f.Value.Size
	return n.blk.Data[f.ValOff:end:end]
}

// Allocate allocates one node of shape with descriptor desc from a.
//
// The header is linked to next and prev and the descriptor is written. Value
// memory is left uninitialized.
//
// On failure *AllocError is returned.
func Allocate(a Allocator, shape Shape, desc uint64, next, prev Ref) (Node, error) {
	f, err := FormatOf(shape, desc)
	if err != nil {
		return Node{}, &AllocError{Err: err}
	}

	blk, err := a.Allocate(f.Node)
	if err != nil {
		return Node{}, &AllocError{Layout: f.Node, Err: err}
	}
	if len(blk.Data) != f.Node.Size {
		panic(fmt.Sprintf("dynode: allocator returned %d bytes for %s", len(blk.Data), f.Node))
	}

	n := Node{blk}
	n.Header().Link(next, prev)
	if shape.Described() {
		*n.desc() = packed.Hton64(desc)
	}
	return n, nil
}

// Deallocate returns memory of node n back to a.
//
// Nothing is done with the value: it is neither read nor destroyed.
func Deallocate(a Allocator, shape Shape, n Node) {
	a.Deallocate(n.blk, n.Layout(shape))
}
