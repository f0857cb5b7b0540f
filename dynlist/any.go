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
// lists of any values

import (
	"reflect"
	"strings"
	"sync"
	"unsafe"

	"github.com/pkg/errors"

	"lab.nexedi.com/kirr/dynlist/dynode"
)

// Caps is a set of capabilities of a value type.
type Caps uint8

const (
	// CapSend means values may be handed over to another goroutine.
	CapSend Caps = 1 << iota

	// CapShare means values may be read from several goroutines at once.
	CapShare
)

func (c Caps) String() string {
	var sv []string
	if c&CapSend != 0 {
		sv = append(sv, "send")
	}
	if c&CapShare != 0 {
		sv = append(sv, "share")
	}
	if len(sv) == 0 {
		return "plain"
	}
	return strings.Join(sv, "|")
}

// Capability selects which capabilities values of an AnyOf list must have.
//
// It is one of Plain, Sendable and Shareable.
type Capability interface {
	caps() Caps
}

type Plain struct{}
type Sendable struct{}
type Shareable struct{}

func (Plain) caps() Caps     { return 0 }
func (Sendable) caps() Caps  { return CapSend }
func (Shareable) caps() Caps { return CapSend | CapShare }

// AnyOf is the kind of values of any registered plain type having
// capabilities C.
//
// The descriptor is the value type tag. Values are copied in and out of
// nodes; there are no views into node memory. A value can be taken back
// with its static type with PopFrontAs, PopBackAs or RemoveCurrentAs.
type AnyOf[C Capability] struct{}

type (
	Any     = AnyOf[Plain]
	SendAny = AnyOf[Sendable]
	SyncAny = AnyOf[Shareable]
)

func (AnyOf[C]) need() Caps {
	var c C
	return c.caps()
}

func (AnyOf[C]) Described() bool { return true }

// ValueLayout returns layout of values with tag d.
//
// Tags of types lacking capabilities C are rejected with ErrCaps, so that
// staged allocation cannot bring such values into the list.
func (k AnyOf[C]) ValueLayout(d uint64) (dynode.Layout, error) {
	e, ok := lookupTag(Tag(d))
	if !ok || uint64(Tag(d)) != d {
		return dynode.Layout{}, errors.Wrapf(dynode.ErrLayout, "unknown type tag %d", d)
	}
	if need := k.need(); e.caps&need != need {
		return dynode.Layout{}, errors.Wrapf(ErrCaps, "%s: have %s, need %s", e.typ, e.caps, need)
	}
	return e.layout, nil
}

func (AnyOf[C]) check() {}

func (k AnyOf[C]) desc(v any) (uint64, error) {
	t := reflect.TypeOf(v)
	if t == nil {
		return 0, errors.Wrap(ErrType, "nil value")
	}

	tag, e, ok := lookupType(t)
	if !ok {
		if !dynode.Plain(t) {
			return 0, errors.Wrapf(ErrType, "%s contains pointers", t)
		}
		// plain types need no declared capabilities
		if k.need() != 0 {
			return 0, errors.Wrapf(ErrCaps, "%s is not registered", t)
		}
		tag, e = register(t, 0)
	}
	if need := k.need(); e.caps&need != need {
		return 0, errors.Wrapf(ErrCaps, "%s: have %s, need %s", t, e.caps, need)
	}
	return uint64(tag), nil
}

func (AnyOf[C]) set(b []byte, d uint64, v any) {
	e, _ := lookupTag(Tag(d))
	rv := reflect.ValueOf(v)
	if rv.Type() != e.typ {
		panic(errors.Wrapf(ErrType, "set %s into node of %s", rv.Type(), e.typ))
	}
	if e.layout.Size == 0 {
		return
	}
	reflect.NewAt(e.typ, unsafe.Pointer(unsafe.SliceData(b))).Elem().Set(rv)
}

func (AnyOf[C]) view(b []byte, d uint64) any {
	e, _ := lookupTag(Tag(d))
	if e.layout.Size == 0 {
		return reflect.Zero(e.typ).Interface()
	}
	return reflect.NewAt(e.typ, unsafe.Pointer(unsafe.SliceData(b))).Elem().Interface()
}

func (AnyOf[C]) own(v any) any { return v }


// Tag identifies a registered type.
type Tag uint32

type typeEntry struct {
	typ    reflect.Type
	layout dynode.Layout
	caps   Caps
}

// registry of types that can be stored into AnyOf lists.
// Tag is index into .entryv; tag 0 is never used.
var registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]Tag
	entryv []typeEntry
}

// Register declares that values of type T have capabilities caps, and
// returns tag of T.
//
// T must be plain. Registering T again adds caps to what was declared before.
func Register[T any](caps Caps) Tag {
	dynode.MustPlain[T]()
	tag, _ := register(reflect.TypeFor[T](), caps)
	return tag
}

// TagOf returns tag of T if T was registered.
//
// The tag is what AllocateFront, AllocateBack and cursor allocation take as
// descriptor for AnyOf lists.
func TagOf[T any]() (Tag, bool) {
	tag, _, ok := lookupType(reflect.TypeFor[T]())
	return tag, ok
}

func register(t reflect.Type, caps Caps) (Tag, typeEntry) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if registry.byType == nil {
		registry.byType = map[reflect.Type]Tag{}
		registry.entryv = []typeEntry{{}}
	}

	tag, ok := registry.byType[t]
	if !ok {
		tag = Tag(len(registry.entryv))
		registry.entryv = append(registry.entryv, typeEntry{
			typ:    t,
			layout: dynode.Layout{Size: int(t.Size()), Align: t.Align()},
		})
		registry.byType[t] = tag
	}
	registry.entryv[tag].caps |= caps
	return tag, registry.entryv[tag]
}

func lookupType(t reflect.Type) (Tag, typeEntry, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	tag, ok := registry.byType[t]
	if !ok {
		return 0, typeEntry{}, false
	}
	return tag, registry.entryv[tag], true
}

func lookupTag(tag Tag) (typeEntry, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	if tag == 0 || int(tag) >= len(registry.entryv) {
		return typeEntry{}, false
	}
	return registry.entryv[tag], true
}


// holds reports whether node r of l holds value of type T.
func holds[T any, C Capability](l *List[any, AnyOf[C]], r dynode.Ref) bool {
	e, ok := lookupTag(Tag(l.arena.Node(r).Descriptor(l.kind)))
	return ok && e.typ == reflect.TypeFor[T]()
}

// PopFrontAs removes front value of l if it is of type T.
//
// If l is empty or its front value is of another type, l is left as is and
// ok is false.
func PopFrontAs[T any, C Capability](l *List[any, AnyOf[C]]) (v T, ok bool) {
	if l.front == dynode.NoRef || !holds[T](l, l.front) {
		return v, false
	}
	x, _ := l.PopFront()
	return x.(T), true
}

// PopBackAs is PopFrontAs for the back value.
func PopBackAs[T any, C Capability](l *List[any, AnyOf[C]]) (v T, ok bool) {
	if l.back == dynode.NoRef || !holds[T](l, l.back) {
		return v, false
	}
	x, _ := l.PopBack()
	return x.(T), true
}

// RemoveCurrentAs removes current value if it is of type T.
//
// Otherwise, or at the ghost position, nothing is changed and ok is false.
func RemoveCurrentAs[T any, C Capability](c *CursorMut[any, AnyOf[C]]) (v T, ok bool) {
	if c.cur == dynode.NoRef || !holds[T](c.l, c.cur) {
		return v, false
	}
	x, _ := c.RemoveCurrent()
	return x.(T), true
}
