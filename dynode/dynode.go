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

// Package dynode provides nodes for linked data structures whose values have
// runtime-determined size and shape.
//
// Every node is exactly one allocation laid out as
//
//	[Header][descriptor?][value]
//
// Header carries the intrusive next/prev links. Descriptor is present only for
// shapes whose value size is not known statically (array length, string
// length, type tag) and is what the value layout is recomputed from. Offsets
// of the descriptor and the value inside the block are never stored - they
// are derived again from the shape and the descriptor every time a node is
// accessed, by the same layout composition rule that was used to allocate it.
//
// Links are not pointers but Refs - indices into an Arena owned by the
// containing structure. Node memory comes from an Allocator; Heap is the
// default one and takes blocks from size-class buffer pools.
//
// Node memory is not scanned by the garbage collector, so values stored in
// nodes must be plain data without pointers (see Plain).
//
// Containers plug into the node machinery via the Structure interface: nodes
// are first allocated in staged state (see Stage), filled, and then committed
// with Staged.Insert which calls back into the structure to splice the node.
package dynode
