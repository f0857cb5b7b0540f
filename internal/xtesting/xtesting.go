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

// Package xtesting provides infrastructure for dynlist testing.
package xtesting

import (
	"fmt"
	"sync"
	"testing"
	"unsafe"

	"lab.nexedi.com/kirr/go123/xerr"

	"lab.nexedi.com/kirr/dynlist/dynode"
	"lab.nexedi.com/kirr/dynlist/internal/log"
	"lab.nexedi.com/kirr/dynlist/internal/xcontainer/list"
)

// FatalIf returns function that fails t if err != nil.
//
// For example
//
//	X := xtesting.FatalIf(t)
//	err := l.PushBack(1); X(err)
func FatalIf(t testing.TB) func(error) {
	return func(err error) {
		if err != nil {
			t.Helper()
			t.Fatal(err)
		}
	}
}

// Panics runs f and returns what it panicked with, or nil.
func Panics(f func()) (r interface{}) {
	defer func() {
		r = recover()
	}()
	f()
	return nil
}

// Allocator is dynode.Allocator for tests.
//
// It keeps track of live blocks, verifies that every block is given back
// exactly once and with the layout it was allocated with, and can be told to
// start denying requests.
//
// Zero Allocator is ready to use and never fails.
type Allocator struct {
	mu      sync.Mutex
	heap    dynode.Heap
	inited  bool
	live    blockHead          // live blocks in allocation order
	blockv  map[*byte]*block
	nalloc  int                // total successful allocations
	budget  int                // allocations left before failing; -1 = unlimited
	errv    xerr.Errorv        // misuses detected on Deallocate
}

// block is one live allocation.
type block struct {
	inLive blockHead
	blk    dynode.Block
	layout dynode.Layout
	seq    int
}

func (a *Allocator) init() {
	if !a.inited {
		a.live.Init()
		a.blockv = map[*byte]*block{}
		a.budget = -1
		a.inited = true
	}
}

// FailAfter makes a to deny every request after n more successful ones.
//
// n < 0 removes the limit.
func (a *Allocator) FailAfter(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.init()
	a.budget = n
}

func (a *Allocator) Allocate(l dynode.Layout) (dynode.Block, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.init()

	if a.budget == 0 {
		log.Infof("xtesting: deny allocation of %s", l)
		return dynode.Block{}, dynode.ErrDenied
	}
	blk, err := a.heap.Allocate(l)
	if err != nil {
		return blk, err
	}
	if a.budget > 0 {
		a.budget--
	}

	b := &block{blk: blk, layout: l, seq: a.nalloc}
	a.nalloc++
	b.inLive.Init()
	b.inLive.MoveBefore(&a.live.Head)
	a.blockv[key(blk)] = b
	return blk, nil
}

func (a *Allocator) Deallocate(blk dynode.Block, l dynode.Layout) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.init()

	b, ok := a.blockv[key(blk)]
	if !ok {
		a.errv.Appendf("deallocate of unknown block %p %s", key(blk), l)
		return
	}
	if b.layout != l {
		a.errv.Appendf("deallocate #%d: layout %s  ; allocated with %s", b.seq, l, b.layout)
	}
	delete(a.blockv, key(blk))
	b.inLive.Delete()
	a.heap.Deallocate(blk, b.layout)
}

func key(blk dynode.Block) *byte {
	return unsafe.SliceData(blk.Data)
}

// Live returns number of currently allocated blocks.
func (a *Allocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.init()
	return a.live.Len()
}

// NAlloc returns how many successful allocations were made.
func (a *Allocator) NAlloc() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nalloc
}

// Err returns misuses detected so far, and leaks if there are live blocks.
func (a *Allocator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.init()

	errv := append(xerr.Errorv{}, a.errv...)
	if n := a.live.Len(); n != len(a.blockv) {
		errv.Appendf("%d blocks on live list, %d in block table", n, len(a.blockv))
	}
	if !a.live.Empty() {
		for h := a.live.Next(); h != &a.live; h = h.Next() {
			b := h.block()
			errv.Appendf("leak: block #%d %s", b.seq, b.layout)
		}
	}
	return errv.Err()
}

// Verify fails t if a detected misuses or has live blocks.
func (a *Allocator) Verify(t testing.TB) {
	t.Helper()
	if err := a.Err(); err != nil {
		t.Fatalf("allocator:\n%s", err)
	}
}

func (a *Allocator) String() string {
	return fmt.Sprintf("allocator{live: %d, nalloc: %d}", a.Live(), a.NAlloc())
}


// list head that knows it is in block.inLive
type blockHead struct {
	list.Head
}

func (h *blockHead) Next() *blockHead { return (*blockHead)(unsafe.Pointer(h.Head.Next())) }

// block: .inLive -> .
func (h *blockHead) block() *block {
	var b *block
	ub := unsafe.Pointer(uintptr(unsafe.Pointer(h)) - unsafe.Offsetof(b.inLive))
	return (*block)(ub)
}
