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
// singly-linked queue

import (
	"fmt"
	"iter"

	"lab.nexedi.com/kirr/dynlist/dynode"
)

// Queue is a singly-linked FIFO of values of type V stored as kind K.
//
// It shares node machinery with List, but uses only the next link: values
// are added at the back and removed from the front.
type Queue[V any, K Kind[V]] struct {
	kind  K
	arena dynode.Arena
	front dynode.Ref // noRef ⇔ queue is empty
	back  dynode.Ref
	alloc dynode.Allocator
	drop  func(V)
}

// NewQueue creates new empty queue.
func NewQueue[V any, K Kind[V]](opt *Options[V]) *Queue[V, K] {
	var k K
	k.check()

	q := &Queue[V, K]{kind: k, front: noRef, back: noRef, alloc: dynode.DefaultHeap}
	if opt != nil {
		if opt.Allocator != nil {
			q.alloc = opt.Allocator
		}
		q.drop = opt.Drop
	}
	return q
}

// queueStructure is Queue as seen by the node machinery.
type queueStructure[V any, K Kind[V]] Queue[V, K]

func (s *queueStructure[V, K]) Allocator() dynode.Allocator { return s.alloc }
func (s *queueStructure[V, K]) Deallocate(n dynode.Node) {
	dynode.Deallocate(s.alloc, s.kind, n)
}

// Insert links n at the back.
func (s *queueStructure[V, K]) Insert(n dynode.Node) {
	h := n.Header()
	if h.Next() != noRef || h.Prev() != noRef {
		panic(fmt.Sprintf("dynlist: queue: insert of linked node (next=%s prev=%s)", h.Next(), h.Prev()))
	}

	r := s.arena.Add(n)
	if s.back != noRef {
		s.arena.Header(s.back).SetNext(r)
	} else {
		s.front = r
	}
	s.back = r
}

func (q *Queue[V, K]) structure() *queueStructure[V, K] {
	return (*queueStructure[V, K])(q)
}

func (q *Queue[V, K]) Len() int      { return q.arena.Len() }
func (q *Queue[V, K]) IsEmpty() bool { return q.front == noRef }

// AllocateBack allocates node to be added at the back.
//
// See List.AllocateFront for desc.
func (q *Queue[V, K]) AllocateBack(desc uint64) (*Staged[V, K], error) {
	st, err := dynode.Stage(q.structure(), q.kind, desc, noRef, noRef)
	if err != nil {
		return nil, err
	}
	return &Staged[V, K]{st, q.kind}, nil
}

// PushBack adds v at the back.
//
// On allocation failure *dynode.ValueError with v is returned.
func (q *Queue[V, K]) PushBack(v V) error {
	d, err := q.kind.desc(v)
	if err != nil {
		return err
	}
	st, err := q.AllocateBack(d)
	if err != nil {
		return dynode.WithValue(err, v)
	}
	st.Set(v)
	st.Insert()
	return nil
}

func (q *Queue[V, K]) XPushBack(v V) {
	if err := q.PushBack(v); err != nil {
		xhandle[V](err)
	}
}

// Front returns front value.
func (q *Queue[V, K]) Front() (v V, ok bool) {
	if q.front == noRef {
		return v, false
	}
	n := q.arena.Node(q.front)
	return q.kind.view(n.Value(q.kind), n.Descriptor(q.kind)), true
}

// unlinkFront removes front node from the queue and returns it.
func (q *Queue[V, K]) unlinkFront() dynode.Node {
	r := q.front
	q.front = q.arena.Header(r).Next()
	if q.front == noRef {
		q.back = noRef
	}
	n := q.arena.Remove(r)
	n.Header().SetNext(noRef)
	return n
}

// PopFront removes front value and returns it.
func (q *Queue[V, K]) PopFront() (v V, ok bool) {
	if q.front == noRef {
		return v, false
	}
	st := &Staged[V, K]{dynode.Adopt(q.structure(), q.kind, q.unlinkFront()), q.kind}
	return st.Take(), true
}

// DeleteFront deletes front value and reports whether there was one.
//
// The node is freed even if Drop panics.
func (q *Queue[V, K]) DeleteFront() bool {
	if q.front == noRef {
		return false
	}
	n := q.unlinkFront()
	defer dynode.Deallocate(q.alloc, q.kind, n)
	if q.drop != nil {
		q.drop(q.kind.view(n.Value(q.kind), n.Descriptor(q.kind)))
	}
	return true
}

// All returns sequence of queue values from front to back.
func (q *Queue[V, K]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for r := q.front; r != noRef; {
			n := q.arena.Node(r)
			next := n.Header().Next()
			if !yield(q.kind.view(n.Value(q.kind), n.Descriptor(q.kind))) {
				return
			}
			r = next
		}
	}
}

// Close deletes all values front to back.
//
// Panics of Drop are handled the same way as by List.Close.
func (q *Queue[V, K]) Close() {
	deleteAll("queue: close", q.DeleteFront)
}
