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
// structures and staged nodes

// Structure is what a node can be inserted into.
//
// The node machinery does not know about lists or queues: it allocates nodes
// with headers already pointing to their intended neighbours, and calls back
// into the structure to do the splicing.
type Structure interface {
	// Insert links fully initialized node n into the structure.
	//
	// n's header already refers to the nodes that must become its
	// neighbours; NoRef means n becomes the corresponding endpoint. Insert
	// updates the neighbours and the structure endpoints.
	Insert(n Node)

	// Allocator returns the allocator nodes of the structure come from.
	Allocator() Allocator

	// Deallocate frees memory of node n that is not part of the structure.
	// The value is not read.
	Deallocate(n Node)
}

// Staged is a node that is allocated but is not part of any structure.
//
// It exclusively owns its memory until it is either committed with Insert, or
// given back with Discard or Take. A staged node that was only allocated has
// uninitialized value which must be written before Insert.
//
// Using Staged after it was committed or given back panics.
type Staged struct {
	s     Structure
	shape Shape
	node  Node
}

// Stage allocates node of shape with descriptor desc from s's allocator.
//
// The node header is linked to next and prev. On failure *AllocError is
// returned.
func Stage(s Structure, shape Shape, desc uint64, next, prev Ref) (*Staged, error) {
	n, err := Allocate(s.Allocator(), shape, desc, next, prev)
	if err != nil {
		return nil, err
	}
	return &Staged{s: s, shape: shape, node: n}, nil
}

// Adopt returns staged handle for node n that was detached from s.
//
// n keeps its header, so committing it back links it to the same neighbours
// it had before it was detached, if they are still adjacent.
func Adopt(s Structure, shape Shape, n Node) *Staged {
	return &Staged{s: s, shape: shape, node: n}
}

func (st *Staged) live() Node {
	if st.node.IsZero() {
		panic("dynode: staged node used after insert or discard")
	}
	return st.node
}

func (st *Staged) Node() Node         { return st.live() }
func (st *Staged) Shape() Shape       { return st.shape }
func (st *Staged) Header() *Header    { return st.live().Header() }
func (st *Staged) Descriptor() uint64 { return st.live().Descriptor(st.shape) }

// Value returns memory of the node value.
func (st *Staged) Value() []byte {
	return st.live().Value(st.shape)
}

// Insert commits the node into the structure it was staged for.
func (st *Staged) Insert() {
	n := st.live()
	st.s.Insert(n)
	st.node = Node{}
}

// Discard deallocates the node without reading its value.
func (st *Staged) Discard() {
	n := st.live()
	st.node = Node{}
	st.s.Deallocate(n)
}

// Take calls f with value memory and then deallocates the node.
//
// The node is deallocated even if f panics. value must not be retained after
// f returns.
func (st *Staged) Take(f func(value []byte)) {
	n := st.live()
	st.node = Node{}
	defer st.s.Deallocate(n)
	f(n.Value(st.shape))
}
