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

package dynode_test

import (
	"errors"
	"math"
	"testing"

	"lab.nexedi.com/kirr/dynlist/dynode"
)

func TestNewLayout(t *testing.T) {
	testv := []struct {
		size, align int
		ok          bool
	}{
		{0, 1, true},
		{8, 8, true},
		{3, 4, true},
		{1, 0, false},
		{1, 3, false},
		{1, -2, false},
		{-1, 1, false},
		{math.MaxInt, 1, true},
		{math.MaxInt, 2, false},
		{math.MaxInt - 7, 8, true},
		{math.MaxInt - 6, 8, false},
	}

	for _, tt := range testv {
		l, err := dynode.NewLayout(tt.size, tt.align)
		if tt.ok {
			if err != nil {
				t.Errorf("NewLayout(%d, %d): %s", tt.size, tt.align, err)
			} else if l.Size != tt.size || l.Align != tt.align {
				t.Errorf("NewLayout(%d, %d) = %s", tt.size, tt.align, l)
			}
			continue
		}
		if !errors.Is(err, dynode.ErrLayout) {
			t.Errorf("NewLayout(%d, %d): err = %v  ; want ErrLayout", tt.size, tt.align, err)
		}
	}
}

func TestLayoutExtend(t *testing.T) {
	type pair struct {
		a uint8
		b uint64
	}

	if l := dynode.LayoutOf[pair](); l != (dynode.Layout{16, 8}) {
		t.Fatalf("LayoutOf[pair] = %s", l)
	}

	testv := []struct {
		l, next dynode.Layout
		want    dynode.Layout
		off     int
	}{
		{dynode.Layout{8, 1}, dynode.Layout{8, 1}, dynode.Layout{16, 1}, 8},
		{dynode.Layout{8, 1}, dynode.Layout{4, 4}, dynode.Layout{12, 4}, 8},
		{dynode.Layout{9, 1}, dynode.Layout{4, 4}, dynode.Layout{16, 4}, 12},
		{dynode.Layout{16, 1}, dynode.Layout{1, 16}, dynode.Layout{17, 16}, 16},
		{dynode.Layout{3, 1}, dynode.Layout{}, dynode.Layout{3, 1}, 3},
	}

	for _, tt := range testv {
		l, off, err := tt.l.Extend(tt.next)
		if err != nil {
			t.Errorf("%s.Extend(%s): %s", tt.l, tt.next, err)
			continue
		}
		if l != tt.want || off != tt.off {
			t.Errorf("%s.Extend(%s) = %s, %d  ; want %s, %d", tt.l, tt.next, l, off, tt.want, tt.off)
		}
	}

	if l := (dynode.Layout{17, 16}).PadToAlign(); l != (dynode.Layout{32, 16}) {
		t.Errorf("PadToAlign = %s  ; want {size 32, align 16}", l)
	}

	big := dynode.Layout{math.MaxInt - 3, 1}
	if _, _, err := big.Extend(dynode.Layout{8, 8}); !errors.Is(err, dynode.ErrLayout) {
		t.Errorf("overflowing Extend: err = %v  ; want ErrLayout", err)
	}
}

func TestArrayLayout(t *testing.T) {
	l, err := dynode.ArrayLayout[uint32](5)
	if err != nil || l != (dynode.Layout{20, 4}) {
		t.Fatalf("ArrayLayout[uint32](5) = %s, %v", l, err)
	}

	l, err = dynode.ArrayLayout[struct{}](math.MaxInt)
	if err != nil || l.Size != 0 {
		t.Fatalf("ArrayLayout[struct{}](max) = %s, %v", l, err)
	}

	for _, n := range []int{-1, math.MaxInt / 8 + 1} {
		_, err = dynode.ArrayLayout[uint64](n)
		if !errors.Is(err, dynode.ErrLayout) {
			t.Errorf("ArrayLayout[uint64](%d): err = %v  ; want ErrLayout", n, err)
		}
	}
}
