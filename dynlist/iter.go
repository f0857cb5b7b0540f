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
// iteration

import (
	"iter"

	"lab.nexedi.com/kirr/dynlist/dynode"
)

// All returns sequence of list values from front to back.
//
// The value being yielded may be deleted from the list during iteration;
// other changes to the list while iterating are not allowed.
func (l *List[V, K]) All() iter.Seq[V] {
	return func(yield func(V) bool) {
		for r := l.front; r != noRef; {
			next := l.next(r)
			if !yield(l.value(r)) {
				return
			}
			r = next
		}
	}
}

// Backward returns sequence of list values from back to front.
func (l *List[V, K]) Backward() iter.Seq[V] {
	return func(yield func(V) bool) {
		for r := l.back; r != noRef; {
			prev := l.prev(r)
			if !yield(l.value(r)) {
				return
			}
			r = prev
		}
	}
}

// AllPtr returns sequence of pointers to values of sized list l from front
// to back.
//
// Values can be modified in place through the pointers. A pointer is valid
// only while its node is in the list.
func AllPtr[T any](l *List[T, Sized[T]]) iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for r := l.front; r != noRef; {
			next := l.next(r)
			if !yield(valuePtr(l, r)) {
				return
			}
			r = next
		}
	}
}

// BackwardPtr is AllPtr going from back to front.
func BackwardPtr[T any](l *List[T, Sized[T]]) iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for r := l.back; r != noRef; {
			prev := l.prev(r)
			if !yield(valuePtr(l, r)) {
				return
			}
			r = prev
		}
	}
}

// Drain returns sequence that removes values from the front and yields them.
//
// If iteration stops early the remaining values stay in the list.
func (l *List[V, K]) Drain() iter.Seq[V] {
	return func(yield func(V) bool) {
		for {
			v, ok := l.PopFront()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Iter is double-ended iterator over list values.
//
// Next and NextBack can be mixed; every value is returned once - iteration
// ends when the two ends meet.
type Iter[V any, K Kind[V]] struct {
	l           *List[V, K]
	front, back dynode.Ref
	done        bool
}

// Iter returns iterator over the list.
func (l *List[V, K]) Iter() *Iter[V, K] {
	return &Iter[V, K]{l: l, front: l.front, back: l.back, done: l.front == noRef}
}

// Next returns next value from the front side.
func (it *Iter[V, K]) Next() (v V, ok bool) {
	if it.done {
		return v, false
	}
	r := it.front
	if r == it.back {
		it.done = true
	} else {
		it.front = it.l.next(r)
	}
	return it.l.value(r), true
}

// NextBack returns next value from the back side.
func (it *Iter[V, K]) NextBack() (v V, ok bool) {
	if it.done {
		return v, false
	}
	r := it.back
	if r == it.front {
		it.done = true
	} else {
		it.back = it.l.prev(r)
	}
	return it.l.value(r), true
}
