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

// Package log provides logging with severity levels on top of glog.
//
// It is the single logging entry point of dynlist packages: node teardown
// problems are reported as warnings, and unrecoverable conditions (allocation
// failures a caller chose not to handle, a panic while recovering from a
// panic) go through Fatal.
package log

import (
	"fmt"

	"github.com/golang/glog"
)

// Depth logs with caller information taken Depth frames above the logging call.
//
// Helpers that log on behalf of their caller use Depth(1) so that the
// reported file:line is the caller's one.
type Depth int

func (d Depth) Info(argv ...interface{}) {
	glog.InfoDepth(int(d+1), argv...)
}

func (d Depth) Infof(format string, argv ...interface{}) {
	// XXX avoid formatting if logging severity disabled
	glog.InfoDepth(int(d+1), fmt.Sprintf(format, argv...))
}

func (d Depth) Warning(argv ...interface{}) {
	glog.WarningDepth(int(d+1), argv...)
}

func (d Depth) Warningf(format string, argv ...interface{}) {
	glog.WarningDepth(int(d+1), fmt.Sprintf(format, argv...))
}

func (d Depth) Error(argv ...interface{}) {
	glog.ErrorDepth(int(d+1), argv...)
}

func (d Depth) Errorf(format string, argv ...interface{}) {
	glog.ErrorDepth(int(d+1), fmt.Sprintf(format, argv...))
}

func (d Depth) Fatal(argv ...interface{}) {
	glog.FatalDepth(int(d+1), argv...)
}

func (d Depth) Fatalf(format string, argv ...interface{}) {
	glog.FatalDepth(int(d+1), fmt.Sprintf(format, argv...))
}


func Info(argv ...interface{})    { Depth(1).Info(argv...) }
func Warning(argv ...interface{}) { Depth(1).Warning(argv...) }
func Error(argv ...interface{})   { Depth(1).Error(argv...) }
func Fatal(argv ...interface{})   { Depth(1).Fatal(argv...) }

func Infof(format string, argv ...interface{}) {
	Depth(1).Infof(format, argv...)
}

func Warningf(format string, argv ...interface{}) {
	Depth(1).Warningf(format, argv...)
}

func Errorf(format string, argv ...interface{}) {
	Depth(1).Errorf(format, argv...)
}

func Fatalf(format string, argv ...interface{}) {
	Depth(1).Fatalf(format, argv...)
}

func Flush()	{ glog.Flush() }
