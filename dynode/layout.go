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
// memory layouts

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/pkg/errors"
	"lab.nexedi.com/kirr/go123/xmath"
)

// Layout describes size and alignment of a memory block.
//
// Valid layouts have Align being a power of 2 and Size, rounded up to Align,
// representable as int. Zero Layout is treated as {Size: 0, Align: 1}.
type Layout struct {
	Size  int
	Align int
}

const maxSize = math.MaxInt

// NewLayout returns layout of size bytes aligned to align.
//
// ErrLayout is returned if align is not a power of 2, or if size rounded up
// to align overflows.
func NewLayout(size, align int) (Layout, error) {
	if align <= 0 || xmath.CeilPow2(uint64(align)) != uint64(align) {
		return Layout{}, errors.Wrapf(ErrLayout, "alignment %d is not a power of 2", align)
	}
	if size < 0 || size > maxSize-(align-1) {
		return Layout{}, errors.Wrapf(ErrLayout, "size %d with alignment %d", size, align)
	}
	return Layout{Size: size, Align: align}, nil
}

// LayoutOf returns layout of type T.
func LayoutOf[T any]() Layout {
	var v T
	return Layout{Size: int(unsafe.Sizeof(v)), Align: int(unsafe.Alignof(v))}
}

// ArrayLayout returns layout of an array of n elements of type T.
func ArrayLayout[T any](n int) (Layout, error) {
	elem := LayoutOf[T]()
	if n < 0 || (elem.Size != 0 && n > maxSize/elem.Size) {
		return Layout{}, errors.Wrapf(ErrLayout, "array of %d elements %s", n, elem)
	}
	return NewLayout(elem.Size*n, elem.Align)
}

func (l Layout) align() int {
	if l.Align == 0 {
		return 1
	}
	return l.Align
}

// alignUp rounds n up to align which must be a power of 2.
func alignUp(n, align int) (int, bool) {
	if n > maxSize-(align-1) {
		return 0, false
	}
	return (n + align - 1) &^ (align - 1), true
}

// Extend returns layout of l followed by next, and offset of next inside it.
//
// Padding is inserted in between so that next starts at its alignment. The
// resulting alignment is the maximum of both. Trailing padding is not added -
// use PadToAlign for that.
func (l Layout) Extend(next Layout) (_ Layout, offset int, _ error) {
	align := max(l.align(), next.align())
	offset, ok := alignUp(l.Size, next.align())
	if !ok || offset > maxSize-next.Size {
		return Layout{}, 0, errors.Wrapf(ErrLayout, "%s extended by %s", l, next)
	}
	nl, err := NewLayout(offset+next.Size, align)
	if err != nil {
		return Layout{}, 0, err
	}
	return nl, offset, nil
}

// PadToAlign returns l with size rounded up to its alignment.
func (l Layout) PadToAlign() Layout {
	a := l.align()
	// cannot overflow for valid layouts
	size, _ := alignUp(l.Size, a)
	return Layout{Size: size, Align: a}
}

func (l Layout) String() string {
	return fmt.Sprintf("{size %d, align %d}", l.Size, l.align())
}
