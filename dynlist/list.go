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

// Package dynlist provides doubly-linked lists of values with runtime
// determined size and shape.
//
// Every list node is one allocation holding the node links immediately
// followed by the value, be it a fixed-size value, a variable-length array, a
// string, or a value of any registered type (see Kind). There is no separate
// allocation for the value and no pointer from node to it.
//
// Lists support push/pop/peek at both ends, iteration in both directions,
// cursors with a ghost position between back and front, and staged
// allocation: a node can be allocated first, filled in place, and only then
// linked with Staged.Insert.
//
// Every operation that allocates may fail with *dynode.AllocError, or with
// *dynode.ValueError carrying the value that was being stored. Values the
// list kind cannot hold at all (see ErrType and ErrCaps) are rejected before
// anything is allocated, with a plain error. On failure the list is left
// exactly as it was. X-prefixed variants stop the program on allocation
// failure instead.
//
// Lists are not safe for concurrent mutation. Read-only access from several
// goroutines is fine.
package dynlist

import (
	"fmt"
	"iter"
	"strings"

	"lab.nexedi.com/kirr/go123/xerr"

	"lab.nexedi.com/kirr/dynlist/dynode"
	"lab.nexedi.com/kirr/dynlist/internal/log"
)

const noRef = dynode.NoRef

// Options configures a list.
type Options[V any] struct {
	// Allocator nodes are allocated with. Default is dynode.DefaultHeap.
	Allocator dynode.Allocator

	// Drop, if != nil, is called on every value when it is deleted from
	// the list without being handed to the caller: by DeleteFront,
	// DeleteBack, CursorMut.DeleteCurrent and Close.
	//
	// The node memory is freed even if Drop panics.
	Drop func(V)
}

// List is a doubly-linked list of values of type V stored as kind K.
//
// Use New or one of NewSized, NewArray, NewString and NewAny to create a list.
type List[V any, K Kind[V]] struct {
	kind  K
	arena dynode.Arena
	front dynode.Ref // noRef ⇔ list is empty
	back  dynode.Ref
	alloc dynode.Allocator
	drop  func(V)
}

// New creates new empty list.
//
// It panics if V cannot be stored as K, e.g. if it contains pointers.
func New[V any, K Kind[V]](opt *Options[V]) *List[V, K] {
	var k K
	k.check()

	l := &List[V, K]{
		kind:  k,
		front: noRef,
		back:  noRef,
		alloc: dynode.DefaultHeap,
	}
	if opt != nil {
		if opt.Allocator != nil {
			l.alloc = opt.Allocator
		}
		l.drop = opt.Drop
	}
	return l
}

func NewSized[T any]() *List[T, Sized[T]]        { return New[T, Sized[T]](nil) }
func NewArray[T any]() *List[[]T, Array[T]]      { return New[[]T, Array[T]](nil) }
func NewString() *List[string, String]           { return New[string, String](nil) }
func NewAny[C Capability]() *List[any, AnyOf[C]] { return New[any, AnyOf[C]](nil) }

// Len returns number of values in the list.
func (l *List[V, K]) Len() int { return l.arena.Len() }

func (l *List[V, K]) IsEmpty() bool { return l.front == noRef }

// Allocator returns allocator of the list nodes.
func (l *List[V, K]) Allocator() dynode.Allocator { return l.alloc }


// listStructure is List as seen by the node machinery.
type listStructure[V any, K Kind[V]] List[V, K]

func (l *List[V, K]) structure() *listStructure[V, K] {
	return (*listStructure[V, K])(l)
}

func (s *listStructure[V, K]) Insert(n dynode.Node)        { (*List[V, K])(s).insert(n) }
func (s *listStructure[V, K]) Allocator() dynode.Allocator { return s.alloc }
func (s *listStructure[V, K]) Deallocate(n dynode.Node) {
	dynode.Deallocate(s.alloc, s.kind, n)
}

// insert links n in between the nodes its header refers to.
func (l *List[V, K]) insert(n dynode.Node) {
	h := n.Header()
	next, prev := h.Next(), h.Prev()
	l.checkAdjacent(next, prev)

	r := l.arena.Add(n)
	if next != noRef {
		l.arena.Header(next).SetPrev(r)
	} else {
		l.back = r
	}
	if prev != noRef {
		l.arena.Header(prev).SetNext(r)
	} else {
		l.front = r
	}
}

// checkAdjacent panics if a node cannot be linked in between prev and next.
//
// This catches nodes staged or popped before the list was changed in the
// place they were meant to go to.
func (l *List[V, K]) checkAdjacent(next, prev dynode.Ref) {
	var ok bool
	switch {
	case l.front == noRef:
		ok = next == noRef && prev == noRef
	case next == noRef && prev == noRef:
		ok = false
	case next == noRef:
		ok = prev == l.back
	case prev == noRef:
		ok = next == l.front
	default:
		ok = l.arena.Has(prev) && l.arena.Has(next) && l.arena.Header(prev).Next() == next
	}
	if !ok {
		panic(fmt.Sprintf("dynlist: insert in between %s and %s: not adjacent", prev, next))
	}
}

// unlink removes node r from the list and returns it.
//
// The node header keeps referring to the former neighbours.
func (l *List[V, K]) unlink(r dynode.Ref) dynode.Node {
	h := l.arena.Header(r)
	next, prev := h.Next(), h.Prev()
	if prev != noRef {
		l.arena.Header(prev).SetNext(next)
	} else {
		l.front = next
	}
	if next != noRef {
		l.arena.Header(next).SetPrev(prev)
	} else {
		l.back = prev
	}
	return l.arena.Remove(r)
}

func (l *List[V, K]) next(r dynode.Ref) dynode.Ref { return l.arena.Header(r).Next() }
func (l *List[V, K]) prev(r dynode.Ref) dynode.Ref { return l.arena.Header(r).Prev() }

// value returns view of the value of node r.
func (l *List[V, K]) value(r dynode.Ref) V {
	return l.nodeValue(l.arena.Node(r))
}

func (l *List[V, K]) nodeValue(n dynode.Node) V {
	return l.kind.view(n.Value(l.kind), n.Descriptor(l.kind))
}


// Staged is a list node that is allocated but not yet linked.
//
// Its value must be written with Set or through Bytes before Insert. Staged
// nodes that are not inserted must be given back with Discard or Take.
type Staged[V any, K Kind[V]] struct {
	*dynode.Staged
	kind K
}

// Set writes v into the node.
//
// For arrays and strings at most descriptor elements are copied.
func (st *Staged[V, K]) Set(v V) {
	st.kind.set(st.Value(), st.Descriptor(), v)
}

// Get returns the node value.
func (st *Staged[V, K]) Get() V {
	return st.kind.view(st.Value(), st.Descriptor())
}

// Bytes returns raw memory of the node value.
func (st *Staged[V, K]) Bytes() []byte {
	return st.Value()
}

// Take returns copy of the node value and deallocates the node.
func (st *Staged[V, K]) Take() (v V) {
	d := st.Descriptor()
	st.Staged.Take(func(b []byte) {
		v = st.kind.own(st.kind.view(b, d))
	})
	return v
}

func (l *List[V, K]) stage(desc uint64, next, prev dynode.Ref) (*Staged[V, K], error) {
	st, err := dynode.Stage(l.structure(), l.kind, desc, next, prev)
	if err != nil {
		return nil, err
	}
	return &Staged[V, K]{st, l.kind}, nil
}

func (l *List[V, K]) adopt(n dynode.Node) *Staged[V, K] {
	return &Staged[V, K]{dynode.Adopt(l.structure(), l.kind, n), l.kind}
}

// AllocateFront allocates node to become the new front.
//
// desc is ignored for Sized lists, is element count for Array and String
// lists, and is type Tag for AnyOf lists. The list is not changed until the
// node is inserted; on failure *dynode.AllocError is returned.
func (l *List[V, K]) AllocateFront(desc uint64) (*Staged[V, K], error) {
	return l.stage(desc, l.front, noRef)
}

// AllocateBack allocates node to become the new back.
func (l *List[V, K]) AllocateBack(desc uint64) (*Staged[V, K], error) {
	return l.stage(desc, noRef, l.back)
}

// push stores v into new node linked in between prev and next.
func (l *List[V, K]) push(v V, next, prev dynode.Ref) error {
	d, err := l.kind.desc(v)
	if err != nil {
		return err
	}
	st, err := l.stage(d, next, prev)
	if err != nil {
		return dynode.WithValue(err, v)
	}
	l.kind.set(st.Value(), d, v)
	st.Insert()
	return nil
}

// PushFront adds v to the front of the list.
//
// On allocation failure *dynode.ValueError with v is returned. If v cannot be
// stored by the list kind, the error has ErrType or ErrCaps as its cause and
// is not *dynode.ValueError: nothing was taken from the caller.
func (l *List[V, K]) PushFront(v V) error {
	return l.push(v, l.front, noRef)
}

// PushBack adds v to the back of the list.
func (l *List[V, K]) PushBack(v V) error {
	return l.push(v, noRef, l.back)
}

func (l *List[V, K]) XPushFront(v V) {
	if err := l.PushFront(v); err != nil {
		xhandle[V](err)
	}
}

func (l *List[V, K]) XPushBack(v V) {
	if err := l.PushBack(v); err != nil {
		xhandle[V](err)
	}
}

// Front returns front value.
//
// Array values alias node memory and are valid only while the node is in the
// list. String values are copies.
func (l *List[V, K]) Front() (v V, ok bool) {
	if l.front == noRef {
		return v, false
	}
	return l.value(l.front), true
}

// Back returns back value.
func (l *List[V, K]) Back() (v V, ok bool) {
	if l.back == noRef {
		return v, false
	}
	return l.value(l.back), true
}

// valuePtr returns pointer to value of node r of sized list l.
func valuePtr[T any](l *List[T, Sized[T]], r dynode.Ref) *T {
	return dynode.ValuePtr[T](l.arena.Node(r).Value(l.kind))
}

// FrontPtr returns pointer to front value of sized list l, or nil if l is empty.
func FrontPtr[T any](l *List[T, Sized[T]]) *T {
	if l.front == noRef {
		return nil
	}
	return valuePtr(l, l.front)
}

// BackPtr returns pointer to back value of sized list l, or nil if l is empty.
func BackPtr[T any](l *List[T, Sized[T]]) *T {
	if l.back == noRef {
		return nil
	}
	return valuePtr(l, l.back)
}

// PopFrontNode unlinks front node and returns it staged, or nil if the list is empty.
//
// The staged node keeps its links: inserting it back restores it at the
// front provided the list was not changed there.
func (l *List[V, K]) PopFrontNode() *Staged[V, K] {
	if l.front == noRef {
		return nil
	}
	return l.adopt(l.unlink(l.front))
}

// PopBackNode unlinks back node and returns it staged, or nil if the list is empty.
func (l *List[V, K]) PopBackNode() *Staged[V, K] {
	if l.back == noRef {
		return nil
	}
	return l.adopt(l.unlink(l.back))
}

// PopFront removes front value and returns it.
func (l *List[V, K]) PopFront() (v V, ok bool) {
	st := l.PopFrontNode()
	if st == nil {
		return v, false
	}
	return st.Take(), true
}

// PopBack removes back value and returns it.
func (l *List[V, K]) PopBack() (v V, ok bool) {
	st := l.PopBackNode()
	if st == nil {
		return v, false
	}
	return st.Take(), true
}

// delete drops value of unlinked node n and deallocates the node.
func (l *List[V, K]) delete(n dynode.Node) {
	defer dynode.Deallocate(l.alloc, l.kind, n)
	if l.drop != nil {
		l.drop(l.nodeValue(n))
	}
}

// DeleteFront deletes front value and reports whether there was one.
func (l *List[V, K]) DeleteFront() bool {
	if l.front == noRef {
		return false
	}
	l.delete(l.unlink(l.front))
	return true
}

// DeleteBack deletes back value and reports whether there was one.
func (l *List[V, K]) DeleteBack() bool {
	if l.back == noRef {
		return false
	}
	l.delete(l.unlink(l.back))
	return true
}

// Close deletes all values front to back.
//
// If Drop panics, deletion goes on with the remaining values and the panic
// is re-raised afterwards. A second panic while doing so stops the program.
func (l *List[V, K]) Close() {
	deleteAll("close", l.DeleteFront)
}

// deleteAll calls deleteFront until there is nothing left to delete.
func deleteAll(what string, deleteFront func() bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		log.Warningf("dynlist: %s: drop panicked: %v; deleting the rest", what, r)
		func() {
			defer func() {
				if r2 := recover(); r2 != nil {
					fatalf("%s: panic while deleting after panic: %v  (first: %v)", what, r2, r)
				}
			}()
			for deleteFront() {
			}
		}()
		panic(r)
	}()

	for deleteFront() {
	}
}

// Extend appends values from seq to the back of the list.
//
// It stops on first error.
func (l *List[V, K]) Extend(seq iter.Seq[V]) error {
	for v := range seq {
		if err := l.PushBack(v); err != nil {
			return err
		}
	}
	return nil
}

// FromSeq creates list with values from seq.
func FromSeq[V any, K Kind[V]](seq iter.Seq[V], opt *Options[V]) (*List[V, K], error) {
	l := New[V, K](opt)
	err := l.Extend(seq)
	if err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

// CloneIn returns copy of the list with nodes allocated from a.
//
// Values are copied bytewise. On allocation failure the partial copy is
// deleted and the error is returned.
func (l *List[V, K]) CloneIn(a dynode.Allocator) (*List[V, K], error) {
	c := New[V, K](&Options[V]{Allocator: a, Drop: l.drop})
	for r := l.front; r != noRef; r = l.next(r) {
		n := l.arena.Node(r)
		st, err := c.stage(n.Descriptor(l.kind), noRef, c.back)
		if err != nil {
			c.Close()
			return nil, err
		}
		copy(st.Value(), n.Value(l.kind))
		st.Insert()
	}
	return c, nil
}

// Clone returns copy of the list allocated with the same allocator.
func (l *List[V, K]) Clone() (*List[V, K], error) {
	return l.CloneIn(l.alloc)
}

// Check verifies structural consistency of the list.
//
// Links must be symmetric, the forward walk from front must end at back and
// the backward walk from back at front, both in as many steps as there are
// nodes.
func (l *List[V, K]) Check() error {
	errv := xerr.Errorv{}
	n := l.arena.Len()

	if l.front == noRef || l.back == noRef {
		if l.front != l.back {
			errv.Appendf("ends: front=%s back=%s", l.front, l.back)
		}
		if n != 0 {
			errv.Appendf("empty list with %d nodes", n)
		}
		return errv.Err()
	}

	walk := func(dir string, start, end dynode.Ref, step, back func(dynode.Ref) dynode.Ref) int {
		nstep := 0
		last := noRef
		for r := start; r != noRef; r = step(r) {
			if !l.arena.Has(r) {
				errv.Appendf("%s: dangling ref %s", dir, r)
				return nstep
			}
			if b := back(r); b != last {
				errv.Appendf("%s: node %s links back to %s  ; want %s", dir, r, b, last)
			}
			nstep++
			if nstep > n {
				errv.Appendf("%s: walk does not end", dir)
				return nstep
			}
			last = r
		}
		if last != end {
			errv.Appendf("%s: walk ends at %s  ; want %s", dir, last, end)
		}
		return nstep
	}

	nfwd := walk("forward", l.front, l.back, l.next, l.prev)
	nbwd := walk("backward", l.back, l.front, l.prev, l.next)
	if nfwd != nbwd {
		errv.Appendf("forward walk: %d steps; backward walk: %d steps", nfwd, nbwd)
	}
	if nfwd != n {
		errv.Appendf("%d nodes linked, %d nodes in arena", nfwd, n)
	}
	return errv.Err()
}

func (l *List[V, K]) String() string {
	var b strings.Builder
	b.WriteString("[")
	for r := l.front; r != noRef; r = l.next(r) {
		if r != l.front {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%v", l.value(r))
	}
	b.WriteString("]")
	return b.String()
}
