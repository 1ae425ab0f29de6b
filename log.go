// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package equeue

import (
	"github.com/intuitivelabs/slog"
)

// Log is the package-wide logger. Change its level with slog.SetLevel.
var Log slog.Log

func DBGon() bool  { return Log.DBGon() }
func ERRon() bool  { return Log.ERRon() }
func WARNon() bool { return Log.WARNon() }

func DBG(f string, args ...interface{})   { Log.DBG(f, args...) }
func ERR(f string, args ...interface{})   { Log.ERR(f, args...) }
func WARN(f string, args ...interface{})  { Log.WARN(f, args...) }
func BUG(f string, args ...interface{})   { Log.BUG(f, args...) }
func PANIC(f string, args ...interface{}) { Log.PANIC(f, args...) }
