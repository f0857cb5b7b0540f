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

package packed

import (
	"testing"
	"unsafe"
)

func TestPacked(t *testing.T) {
	if sz := unsafe.Sizeof(BE32{}); sz != 4 {
		t.Fatalf("sizeof(BE32) = %d  ; want 4", sz)
	}
	if al := unsafe.Alignof(BE64{}); al != 1 {
		t.Fatalf("alignof(BE64) = %d  ; want 1", al)
	}

	for _, v := range []uint32{0, 1, 0x01020304, 0xffffffff} {
		if got := Ntoh32(Hton32(v)); got != v {
			t.Errorf("Ntoh32(Hton32(%#x)) = %#x", v, got)
		}
	}
	if b := Hton32(0x01020304); b != (BE32{1, 2, 3, 4}) {
		t.Errorf("Hton32: %v  ; want big-endian", b)
	}

	for _, v := range []uint64{0, 1, 0x0102030405060708, ^uint64(0)} {
		if got := Ntoh64(Hton64(v)); got != v {
			t.Errorf("Ntoh64(Hton64(%#x)) = %#x", v, got)
		}
	}
	if b := Hton64(0x0102030405060708); b != (BE64{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("Hton64: %v  ; want big-endian", b)
	}
}
