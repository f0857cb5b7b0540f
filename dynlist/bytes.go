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
// conversions in between string and byte lists

import (
	"unicode/utf8"

	"lab.nexedi.com/kirr/go123/xerr"

	"lab.nexedi.com/kirr/dynlist/dynode"
)

// String and Array[byte] nodes have the same format, so conversions only
// move nodes over to the new list. Drop hooks are not carried over.

// IntoBytes moves all nodes of l into a new list of byte arrays.
//
// l is left empty.
func IntoBytes(l *List[string, String]) *List[[]byte, Array[byte]] {
	b := New[[]byte, Array[byte]](&Options[[]byte]{Allocator: l.alloc})
	moveNodes(b, l)
	return b
}

// FromUTF8Unchecked moves all nodes of l into a new list of strings without
// checking that they are valid UTF-8.
//
// l is left empty.
func FromUTF8Unchecked(l *List[[]byte, Array[byte]]) *List[string, String] {
	s := New[string, String](&Options[string]{Allocator: l.alloc})
	moveNodes(s, l)
	return s
}

// FromUTF8 is like FromUTF8Unchecked but first verifies every node is valid
// UTF-8. If not, *UTF8Error is returned and l is left as is.
func FromUTF8(l *List[[]byte, Array[byte]]) (_ *List[string, String], err error) {
	defer xerr.Context(&err, "dynlist: from utf8")

	i := 0
	for v := range l.All() {
		if !utf8.Valid(v) {
			return nil, &UTF8Error{Index: i, Pos: invalidAt(v)}
		}
		i++
	}
	return FromUTF8Unchecked(l), nil
}

// invalidAt returns offset of the first byte of b that is not valid UTF-8.
func invalidAt(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(b)
}

func moveNodes[V1 any, K1 Kind[V1], V2 any, K2 Kind[V2]](dst *List[V1, K1], src *List[V2, K2]) {
	dst.arena, src.arena = src.arena, dynode.Arena{}
	dst.front, src.front = src.front, noRef
	dst.back, src.back = src.back, noRef
}
