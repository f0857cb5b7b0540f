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
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"lab.nexedi.com/kirr/dynlist/dynode"
	"lab.nexedi.com/kirr/dynlist/internal/xtesting"
)

func TestQueue(t *testing.T) {
	assert := require.New(t)
	a := &xtesting.Allocator{}
	var dropped []uint16
	q := NewQueue[uint16, Sized[uint16]](&Options[uint16]{
		Allocator: a,
		Drop: func(v uint16) {
			dropped = append(dropped, v)
			if v == 3 {
				panic("boom")
			}
		},
	})

	_, ok := q.Front()
	assert.False(ok)
	assert.True(q.IsEmpty())

	for i := uint16(1); i <= 5; i++ {
		q.XPushBack(i)
	}
	assert.Equal(5, q.Len())
	assert.Equal([]uint16{1, 2, 3, 4, 5}, slices.Collect(q.All()))

	v, ok := q.PopFront()
	assert.True(ok)
	assert.Equal(uint16(1), v)
	v, _ = q.Front()
	assert.Equal(uint16(2), v)

	// allocation failure hands the value back and changes nothing
	a.FailAfter(0)
	err := q.PushBack(6)
	var verr *dynode.ValueError[uint16]
	assert.True(errors.As(err, &verr))
	assert.Equal(uint16(6), verr.Value)
	assert.Equal(4, q.Len())
	a.FailAfter(-1)

	// staged
	st, err := q.AllocateBack(0)
	assert.NoError(err)
	st.Set(7)
	st.Insert()
	assert.Equal([]uint16{2, 3, 4, 5, 7}, slices.Collect(q.All()))

	// a panicking drop still frees the node
	assert.True(q.DeleteFront())
	r := xtesting.Panics(func() { q.DeleteFront() })
	assert.Equal("boom", r)
	assert.Equal([]uint16{4, 5, 7}, slices.Collect(q.All()))
	assert.Equal(3, a.Live())

	q.Close()
	assert.True(q.IsEmpty())
	assert.False(q.DeleteFront())
	if want := []uint16{2, 3, 4, 5, 7}; !reflect.DeepEqual(dropped, want) {
		t.Fatalf("dropped: %v  ; want %v", dropped, want)
	}
	a.Verify(t)

	// staged nodes of the queue do not link anywhere
	q.XPushBack(1)
	st, err = q.AllocateBack(0)
	assert.NoError(err)
	st.Header().SetPrev(0)
	assert.NotNil(xtesting.Panics(st.Insert))
	st.Discard()
	q.Close()
	a.Verify(t)
}
