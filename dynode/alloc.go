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
// allocators

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"

	"lab.nexedi.com/kirr/go123/mem"
)

// Block is a memory block handed out by an Allocator.
type Block struct {
	// Data covers exactly the requested layout: len(Data) = Layout.Size and
	// &Data[0] is aligned to Layout.Align.
	Data []byte

	// Buf is the pool buffer Data was cut from, if any.
	Buf *mem.Buf
}

// Allocator is the capability nodes are allocated with.
//
// Allocate must either return a block for the layout or fail without side
// effects. Deallocate is called exactly once for every allocated block with
// the same layout it was allocated with.
//
// Block memory is not required to be initialized.
type Allocator interface {
	Allocate(l Layout) (Block, error)
	Deallocate(b Block, l Layout)
}

// Heap is the default allocator.
//
// Blocks are taken from go123/mem size-class buffer pools and are returned
// there on Deallocate, which lowers pressure on Go garbage-collector for
// lists with high churn. Alignment is provided by over-allocating and cutting
// an aligned window out of the pool buffer.
//
// Heap is safe for concurrent use.
type Heap struct {
	// Limit, if > 0, is the maximum number of bytes in use. Requests that
	// would exceed it are declined with ErrDenied.
	Limit int

	inuse atomic.Int64
}

// DefaultHeap is the allocator used by containers created without one.
var DefaultHeap = &Heap{}

// MaxHeapBlock is the largest block size Heap hands out.
//
// It stays below what the Go runtime can allocate as one slice (2^47 bytes
// on 64-bit platforms, 2^30 on 32-bit ones). Larger requests are denied.
const MaxHeapBlock = 1 << (30 + 17*(^uint(0)>>63))

func (h *Heap) Allocate(l Layout) (Block, error) {
	align := l.align()
	if l.Size > MaxHeapBlock-(align-1) {
		return Block{}, errors.Wrapf(ErrDenied, "%s: larger than heap block limit", l)
	}

	size := int64(l.Size)
	if n := h.inuse.Add(size); h.Limit > 0 && n > int64(h.Limit) {
		h.inuse.Add(-size)
		return Block{}, ErrDenied
	}

	buf, err := bufAlloc(l.Size + align - 1)
	if err != nil {
		h.inuse.Add(-size)
		return Block{}, err
	}
	off := 0
	if len(buf.Data) != 0 {
		p := uintptr(unsafe.Pointer(unsafe.SliceData(buf.Data)))
		off = int(-p & uintptr(align-1))
	}
	end := off + l.Size
	return Block{Data: buf.Data[off:end:end], Buf: buf}, nil
}

// bufAlloc is mem.BufAlloc that reports runtime refusal to make the buffer
// as ErrDenied instead of panicking.
func bufAlloc(size int) (buf *mem.Buf, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		rerr, ok := r.(runtime.Error)
		if !ok {
			panic(r)
		}
		buf, err = nil, errors.Wrapf(ErrDenied, "%d bytes: %s", size, rerr)
	}()
	return mem.BufAlloc(size), nil
}

func (h *Heap) Deallocate(b Block, l Layout) {
	h.inuse.Add(-int64(l.Size))
	if b.Buf != nil {
		b.Buf.Release()
	}
}

// InUse returns how many bytes are currently allocated from h.
func (h *Heap) InUse() int {
	return int(h.inuse.Load())
}
