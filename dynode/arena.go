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
// node table

import (
	"fmt"
)

// Arena is a table of nodes addressed by Ref.
//
// It is owned by a structure and is what links in node headers refer to.
// Slots of removed nodes are reused. Arena only keeps track of nodes - it
// never allocates or deallocates node memory.
//
// Zero Arena is empty and ready to use.
type Arena struct {
	slotv []Node
	freev []Ref
	n     int
}

// Add puts n into the table and returns its ref.
func (a *Arena) Add(n Node) Ref {
	if n.IsZero() {
		panic("dynode: arena: add of zero node")
	}

	var r Ref
	if l := len(a.freev); l > 0 {
		r = a.freev[l-1]
		a.freev = a.freev[:l-1]
		a.slotv[r] = n
	} else {
		if uint64(len(a.slotv)) >= uint64(NoRef) {
			panic("dynode: arena: too many nodes")
		}
		r = Ref(len(a.slotv))
		a.slotv = append(a.slotv, n)
	}
	a.n++
	return r
}

// Has reports whether r refers to a node in the table.
func (a *Arena) Has(r Ref) bool {
	return uint64(r) < uint64(len(a.slotv)) && !a.slotv[r].IsZero()
}

// Node returns node referred to by r.
//
// It panics if there is no such node.
func (a *Arena) Node(r Ref) Node {
	if !a.Has(r) {
		panic(fmt.Sprintf("dynode: arena: invalid ref %s", r))
	}
	return a.slotv[r]
}

// Header returns header of node referred to by r.
func (a *Arena) Header(r Ref) *Header {
	return a.Node(r).Header()
}

// Remove removes node referred to by r from the table and returns it.
//
// The node header is left as is.
func (a *Arena) Remove(r Ref) Node {
	n := a.Node(r)
	a.slotv[r] = Node{}
	a.freev = append(a.freev, r)
	a.n--
	return n
}

// Len returns number of nodes in the table.
func (a *Arena) Len() int {
	return a.n
}
