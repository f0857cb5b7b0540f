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
// cursors

import (
	"lab.nexedi.com/kirr/dynlist/dynode"
)

// Cursor is a position in a list.
//
// It is either on a node, or on the ghost - the position in between back and
// front which makes the list circular for navigation. Moving a cursor only
// follows links: it never allocates or frees.
//
// While a cursor is in use the list must not be changed other than through
// CursorMut.
type Cursor[V any, K Kind[V]] struct {
	l   *List[V, K]
	cur dynode.Ref // noRef = ghost
}

// CursorFront returns cursor on the front node, or on the ghost if the list is empty.
func (l *List[V, K]) CursorFront() *Cursor[V, K] { return &Cursor[V, K]{l, l.front} }

// CursorBack returns cursor on the back node, or on the ghost if the list is empty.
func (l *List[V, K]) CursorBack() *Cursor[V, K] { return &Cursor[V, K]{l, l.back} }

// CursorGhost returns cursor on the ghost.
func (l *List[V, K]) CursorGhost() *Cursor[V, K] { return &Cursor[V, K]{l, noRef} }

// IsGhost reports whether c is on the ghost.
func (c *Cursor[V, K]) IsGhost() bool { return c.cur == noRef }

// MoveNext moves c to the next node.
//
// From the ghost it moves to the front; from the back to the ghost.
func (c *Cursor[V, K]) MoveNext() {
	if c.cur == noRef {
		c.cur = c.l.front
	} else {
		c.cur = c.l.next(c.cur)
	}
}

// MovePrevious moves c to the previous node.
//
// From the ghost it moves to the back; from the front to the ghost.
func (c *Cursor[V, K]) MovePrevious() {
	if c.cur == noRef {
		c.cur = c.l.back
	} else {
		c.cur = c.l.prev(c.cur)
	}
}

// Current returns value of the current node; ok is false at the ghost.
func (c *Cursor[V, K]) Current() (v V, ok bool) {
	if c.cur == noRef {
		return v, false
	}
	return c.l.value(c.cur), true
}

// PeekNext returns value at the position MoveNext would move to.
func (c *Cursor[V, K]) PeekNext() (v V, ok bool) {
	r := c.l.front
	if c.cur != noRef {
		r = c.l.next(c.cur)
	}
	if r == noRef {
		return v, false
	}
	return c.l.value(r), true
}

// PeekPrevious returns value at the position MovePrevious would move to.
func (c *Cursor[V, K]) PeekPrevious() (v V, ok bool) {
	r := c.l.back
	if c.cur != noRef {
		r = c.l.prev(c.cur)
	}
	if r == noRef {
		return v, false
	}
	return c.l.value(r), true
}


// CursorMut is Cursor that can also change the list.
//
// Only one CursorMut may be in use for a list at a time, and the list itself
// must not be used meanwhile.
type CursorMut[V any, K Kind[V]] struct {
	Cursor[V, K]
}

func (l *List[V, K]) CursorFrontMut() *CursorMut[V, K] {
	return &CursorMut[V, K]{Cursor[V, K]{l, l.front}}
}

func (l *List[V, K]) CursorBackMut() *CursorMut[V, K] {
	return &CursorMut[V, K]{Cursor[V, K]{l, l.back}}
}

func (l *List[V, K]) CursorGhostMut() *CursorMut[V, K] {
	return &CursorMut[V, K]{Cursor[V, K]{l, noRef}}
}

// AsCursor returns read-only cursor at the same position.
func (c *CursorMut[V, K]) AsCursor() *Cursor[V, K] {
	return &Cursor[V, K]{c.l, c.cur}
}

// CurrentPtr returns pointer to the current value of sized list, or nil at the ghost.
func CurrentPtr[T any](c *CursorMut[T, Sized[T]]) *T {
	if c.cur == noRef {
		return nil
	}
	return valuePtr(c.l, c.cur)
}

// before returns neighbours of a node to be linked before current position.
// At the ghost it is the back.
func (c *CursorMut[V, K]) before() (next, prev dynode.Ref) {
	if c.cur == noRef {
		return noRef, c.l.back
	}
	return c.cur, c.l.prev(c.cur)
}

// after returns neighbours of a node to be linked after current position.
// At the ghost it is the front.
func (c *CursorMut[V, K]) after() (next, prev dynode.Ref) {
	if c.cur == noRef {
		return c.l.front, noRef
	}
	return c.l.next(c.cur), c.cur
}

// AllocateBefore allocates node to be inserted before current position.
//
// See List.AllocateFront for desc.
func (c *CursorMut[V, K]) AllocateBefore(desc uint64) (*Staged[V, K], error) {
	next, prev := c.before()
	return c.l.stage(desc, next, prev)
}

// AllocateAfter allocates node to be inserted after current position.
func (c *CursorMut[V, K]) AllocateAfter(desc uint64) (*Staged[V, K], error) {
	next, prev := c.after()
	return c.l.stage(desc, next, prev)
}

// InsertBefore inserts v before current position.
//
// At the ghost v becomes the new back. The cursor stays where it is.
// On allocation failure *dynode.ValueError with v is returned.
func (c *CursorMut[V, K]) InsertBefore(v V) error {
	next, prev := c.before()
	return c.l.push(v, next, prev)
}

// InsertAfter inserts v after current position.
//
// At the ghost v becomes the new front. The cursor stays where it is.
func (c *CursorMut[V, K]) InsertAfter(v V) error {
	next, prev := c.after()
	return c.l.push(v, next, prev)
}

func (c *CursorMut[V, K]) XInsertBefore(v V) {
	if err := c.InsertBefore(v); err != nil {
		xhandle[V](err)
	}
}

func (c *CursorMut[V, K]) XInsertAfter(v V) {
	if err := c.InsertAfter(v); err != nil {
		xhandle[V](err)
	}
}

// RemoveCurrentNode unlinks current node and returns it staged.
//
// The cursor moves to the previous node, or to the ghost if there is none.
// At the ghost nothing is done and nil is returned.
func (c *CursorMut[V, K]) RemoveCurrentNode() *Staged[V, K] {
	r := c.cur
	if r == noRef {
		return nil
	}
	c.cur = c.l.prev(r)
	return c.l.adopt(c.l.unlink(r))
}

// RemoveCurrent removes current value and returns it.
//
// The cursor moves as with RemoveCurrentNode.
func (c *CursorMut[V, K]) RemoveCurrent() (v V, ok bool) {
	st := c.RemoveCurrentNode()
	if st == nil {
		return v, false
	}
	return st.Take(), true
}

// DeleteCurrent deletes current value and reports whether there was one.
func (c *CursorMut[V, K]) DeleteCurrent() bool {
	r := c.cur
	if r == noRef {
		return false
	}
	c.cur = c.l.prev(r)
	c.l.delete(c.l.unlink(r))
	return true
}
