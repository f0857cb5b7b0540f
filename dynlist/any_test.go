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

import (
	"errors"
	"reflect"
	"testing"

	"github.com/kylelemons/godebug/pretty"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"lab.nexedi.com/kirr/go123/exc"

	"lab.nexedi.com/kirr/dynlist/dynode"
	"lab.nexedi.com/kirr/dynlist/internal/xtesting"
)

type point struct {
	x, y int32
}

func TestAny(t *testing.T) {
	assert := require.New(t)
	l := NewAny[Plain]()
	defer l.Close()

	assert.NoError(l.PushBack(1))
	assert.NoError(l.PushBack(2.5))
	assert.NoError(l.PushBack(point{1, 2}))
	assert.NoError(l.PushFront(struct{}{}))

	err := l.PushBack("hello")
	assert.True(errors.Is(err, ErrType), "err = %v", err)
	var verr *dynode.ValueError[any]
	assert.False(errors.As(err, &verr), "type error reported as allocation failure: %v", err)
	var aerr0 *dynode.AllocError
	assert.False(errors.As(err, &aerr0))
	err = l.PushBack(nil)
	assert.True(errors.Is(err, ErrType), "err = %v", err)

	want := []any{struct{}{}, 1, 2.5, point{1, 2}}
	xcontent(t, l, want)

	// wrong type leaves the value in place
	_, ok := PopFrontAs[int](l)
	assert.False(ok)
	_, ok = PopBackAs[int](l)
	assert.False(ok)
	xcontent(t, l, want)

	_, ok = PopFrontAs[struct{}](l)
	assert.True(ok)
	p, ok := PopBackAs[point](l)
	assert.True(ok)
	assert.Equal(point{1, 2}, p)

	c := l.CursorFrontMut()
	_, ok = RemoveCurrentAs[float64](c)
	assert.False(ok)
	i, ok := RemoveCurrentAs[int](c)
	assert.True(ok)
	assert.Equal(1, i)
	assert.True(c.IsGhost())
	_, ok = RemoveCurrentAs[int](c)
	assert.False(ok)
	xcontent(t, l, []any{2.5})

	// staged allocation by type tag
	tag := Register[point](0)
	tag2, ok := TagOf[point]()
	assert.True(ok)
	assert.Equal(tag, tag2)

	st, err := l.AllocateBack(uint64(tag))
	assert.NoError(err)
	st.Set(point{3, 4})
	st.Insert()
	xcontent(t, l, []any{2.5, point{3, 4}})

	st, err = l.AllocateBack(uint64(tag))
	assert.NoError(err)
	r := xtesting.Panics(func() { st.Set(1) })
	assert.NotNil(r)
	st.Discard()

	_, err = l.AllocateFront(1 << 30)
	var aerr *dynode.AllocError
	assert.True(errors.As(err, &aerr))
	assert.True(aerr.IsLayout())
}

func TestAnyCaps(t *testing.T) {
	type sendOnly struct{ v int64 }
	type shared struct{ v [2]int64 }
	type unregistered struct{ v int8 }

	Register[sendOnly](CapSend)
	Register[shared](CapSend | CapShare)

	send := NewAny[Sendable]()
	defer send.Close()
	share := NewAny[Shareable]()
	defer share.Close()

	if err := send.PushBack(sendOnly{1}); err != nil {
		t.Fatal(err)
	}
	if err := send.PushBack(shared{}); err != nil {
		t.Fatal(err)
	}
	if err := share.PushBack(shared{}); err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		l interface{ PushBack(any) error }
		v any
	}{
		{share, sendOnly{}},
		{send, unregistered{}},
		{share, unregistered{}},
	} {
		err := tt.l.PushBack(tt.v)
		if !errors.Is(err, ErrCaps) {
			t.Errorf("push %T: err = %v  ; want ErrCaps", tt.v, err)
		}
	}

	// staged allocation checks capabilities as well
	type plainOnly struct{ v uint16 }
	tag := Register[plainOnly](0)
	sendTag := Register[sendOnly](0)

	for _, tt := range []struct {
		stage func() (*Staged[any, SyncAny], error)
		what  string
	}{
		{func() (*Staged[any, SyncAny], error) { return share.AllocateBack(uint64(tag)) }, "back"},
		{func() (*Staged[any, SyncAny], error) { return share.AllocateFront(uint64(sendTag)) }, "front"},
		{func() (*Staged[any, SyncAny], error) { return share.CursorGhostMut().AllocateAfter(uint64(tag)) }, "after"},
		{func() (*Staged[any, SyncAny], error) { return share.CursorFrontMut().AllocateBefore(uint64(tag)) }, "before"},
	} {
		st, err := tt.stage()
		if st != nil || !errors.Is(err, ErrCaps) {
			t.Errorf("allocate %s: err = %v  ; want ErrCaps", tt.what, err)
		}
		var aerr *dynode.AllocError
		if !errors.As(err, &aerr) || aerr.IsLayout() {
			t.Errorf("allocate %s: %v  ; want non-layout *AllocError", tt.what, err)
		}
	}
	if share.Len() != 1 {
		t.Fatalf("shareable list: len = %d  ; want 1", share.Len())
	}

	st, err := send.AllocateBack(uint64(sendTag))
	if err != nil {
		t.Fatal(err)
	}
	st.Set(sendOnly{2})
	st.Insert()
	_, err = send.AllocateBack(uint64(tag))
	if !errors.Is(err, ErrCaps) {
		t.Fatalf("allocate plain type in sendable list: err = %v  ; want ErrCaps", err)
	}

	for _, tt := range []struct {
		caps Caps
		want string
	}{
		{0, "plain"},
		{CapSend, "send"},
		{CapSend | CapShare, "send|share"},
	} {
		if s := tt.caps.String(); s != tt.want {
			t.Errorf("caps %d: %q  ; want %q", tt.caps, s, tt.want)
		}
	}
}

// shareable lists can be read from several goroutines at once.
func TestAnyShared(t *testing.T) {
	Register[point](CapSend | CapShare)

	l := NewAny[Shareable]()
	defer l.Close()
	want := []any{}
	for i := int32(0); i < 100; i++ {
		l.XPushBack(point{i, -i})
		want = append(want, point{i, -i})
	}

	wg := &errgroup.Group{}
	for i := 0; i < 8; i++ {
		backward := i%2 == 1
		wg.Go(exc.Funcx(func() {
			var have []any
			if backward {
				for v := range l.Backward() {
					have = append([]any{v}, have...)
				}
			} else {
				for v := range l.All() {
					have = append(have, v)
				}
			}
			if !reflect.DeepEqual(have, want) {
				exc.Raisef("reader: content:\n%s", pretty.Compare(want, have))
			}
		}))
	}
	if err := wg.Wait(); err != nil {
		t.Fatal(err)
	}
}

// lists of different goroutines can share an allocator.
func TestSharedHeap(t *testing.T) {
	h := &dynode.Heap{}
	wg := &errgroup.Group{}
	for i := 0; i < 8; i++ {
		wg.Go(exc.Funcx(func() {
			l := New[[]byte, Array[byte]](&Options[[]byte]{Allocator: h})
			for j := 0; j < 100; j++ {
				l.XPushBack(make([]byte, j))
			}
			exc.Raiseif(l.Check())
			for j := 0; j < 100; j++ {
				v, ok := l.PopFront()
				if !ok || len(v) != j {
					exc.Raisef("pop #%d: len %d, %v", j, len(v), ok)
				}
			}
		}))
	}
	if err := wg.Wait(); err != nil {
		t.Fatal(err)
	}
	if n := h.InUse(); n != 0 {
		t.Fatalf("heap in use after all lists are empty: %d", n)
	}
}
