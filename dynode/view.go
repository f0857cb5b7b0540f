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
// typed views of node values

import (
	"fmt"
	"reflect"
	"unsafe"
)

// base address for zero-sized values
var zerobase struct{}

// ValuePtr returns value memory b viewed as *T.
//
// b must come from a node allocated with layout of T. T must be plain.
func ValuePtr[T any](b []byte) *T {
	var v T
	size := int(unsafe.Sizeof(v))
	if size == 0 {
		return (*T)(unsafe.Pointer(&zerobase))
	}
	if len(b) < size {
		panic(fmt.Sprintf("dynode: value of %d bytes viewed as %T", len(b), v))
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b)))
}

// ValueSlice returns value memory b viewed as []T of length n.
func ValueSlice[T any](b []byte, n int) []T {
	var v T
	size := int(unsafe.Sizeof(v))
	switch {
	case n == 0:
		return []T{}
	case size == 0:
		return unsafe.Slice((*T)(unsafe.Pointer(&zerobase)), n)
	case n < 0 || len(b)/size < n:
		panic(fmt.Sprintf("dynode: value of %d bytes viewed as [%d]%T", len(b), n, v))
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// ValueString returns value memory b viewed as string.
//
// The string aliases b: it changes if b is modified.
func ValueString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Plain reports whether values of type t contain no pointers.
//
// Only plain values can be stored in node memory: the garbage collector does
// not see node contents, so pointers stored there would not keep their
// targets alive.
func Plain(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true

	case reflect.Array:
		return t.Len() == 0 || Plain(t.Elem())

	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !Plain(t.Field(i).Type) {
				return false
			}
		}
		return true
	}

	// pointers, slices, strings, maps, chans, funcs, interfaces
	return false
}

// MustPlain panics if T is not plain.
func MustPlain[T any]() {
	if t := reflect.TypeFor[T](); !Plain(t) {
		panic(fmt.Sprintf("dynode: %s contains pointers and cannot be stored in a node", t))
	}
}
