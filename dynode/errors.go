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
// allocation errors

import (
	"fmt"

	"github.com/pkg/errors"

	"lab.nexedi.com/kirr/dynlist/internal/log"
)

var (
	// ErrLayout is the cause of failures to compute a node layout.
	//
	// Such requests are never satisfiable regardless of available memory.
	ErrLayout = errors.New("layout overflow")

	// ErrDenied is returned by allocators that decline a well-formed request.
	ErrDenied = errors.New("allocation denied")
)

// AllocError is returned by every node allocation point.
//
// It distinguishes layout computation failures (IsLayout) from allocator
// denials. For the latter Layout is the exact layout that was requested.
type AllocError struct {
	Layout Layout // requested layout; zero if the request was rejected before computing it
	Err    error
}

func (e *AllocError) Error() string {
	if e.IsLayout() || e.Layout == (Layout{}) {
		return "dynode: " + e.Err.Error()
	}
	return fmt.Sprintf("dynode: allocate %s: %s", e.Layout, e.Err)
}

// IsLayout reports whether e is a layout computation failure.
func (e *AllocError) IsLayout() bool {
	return errors.Is(e.Err, ErrLayout)
}

func (e *AllocError) Cause() error  { return e.Err }
func (e *AllocError) Unwrap() error { return e.Err }

// Handle stops the program reporting e.
//
// It is for callers that treat out-of-memory as unrecoverable.
func (e *AllocError) Handle() {
	switch {
	case e.IsLayout():
		fatalf("capacity overflow: %s", e.Err)
	case e.Layout == (Layout{}):
		fatalf("allocation failed: %s", e.Err)
	default:
		fatalf("memory allocation of %s failed: %s", e.Layout, e.Err)
	}
}

// fatalf is called to stop the program. Tests override it.
var fatalf = func(format string, argv ...interface{}) {
	log.Depth(2).Fatalf("dynode: "+format, argv...)
}

// ValueError is AllocError together with the value that failed to be stored.
//
// It is returned by push and insert operations so that the value is handed
// back to the caller instead of being lost.
type ValueError[V any] struct {
	Err   *AllocError
	Value V
}

// WithValue attaches v to allocation error err.
//
// err must be *AllocError.
func WithValue[V any](err error, v V) *ValueError[V] {
	return &ValueError[V]{Err: err.(*AllocError), Value: v}
}

func (e *ValueError[V]) Error() string { return e.Err.Error() }
func (e *ValueError[V]) Cause() error  { return e.Err }
func (e *ValueError[V]) Unwrap() error { return e.Err }

// Parts returns the value and the allocation error separately.
func (e *ValueError[V]) Parts() (V, *AllocError) {
	return e.Value, e.Err
}

// Handle stops the program reporting e.
func (e *ValueError[V]) Handle() {
	e.Err.Handle()
}
