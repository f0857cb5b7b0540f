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
// errors

import (
	"fmt"

	"github.com/pkg/errors"

	"lab.nexedi.com/kirr/dynlist/dynode"
	"lab.nexedi.com/kirr/dynlist/internal/log"
)

var (
	// ErrType is the cause of failures to store a value whose type cannot be
	// kept in node memory, or does not match the node it is stored into.
	ErrType = errors.New("type mismatch")

	// ErrCaps is the cause of failures to store into AnyOf list a value
	// whose type lacks capabilities the list requires.
	ErrCaps = errors.New("missing capabilities")
)

// UTF8Error is returned by FromUTF8 for a node that is not valid UTF-8.
type UTF8Error struct {
	Index int // node index counting from front
	Pos   int // offset of the first invalid byte in the node value
}

func (e *UTF8Error) Error() string {
	return fmt.Sprintf("node %d: invalid UTF-8 at byte %d", e.Index, e.Pos)
}

// xhandle stops the program on allocation error err.
//
// Other errors are programming errors and cause panic.
func xhandle[V any](err error) {
	var verr *dynode.ValueError[V]
	if errors.As(err, &verr) {
		verr.Handle()
		return
	}
	panic(err)
}

// fatalf is called to stop the program. Tests override it.
var fatalf = func(format string, argv ...interface{}) {
	log.Depth(2).Fatalf("dynlist: "+format, argv...)
}
