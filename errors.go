// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package equeue

import "errors"

var ErrQueueFull = errors.New("no free event slot")
var ErrEventTooBig = errors.New("event payload exceeds max event size")
var ErrInvalidHandle = errors.New("handle generation mismatch or reserved id")
var ErrInvalidParameters = errors.New("invalid parameters")
var ErrChainCycle = errors.New("chaining would create a cycle")
var ErrAlreadyChained = errors.New("queue already chained into a different target")
var ErrAlreadyRunning = errors.New("dispatch already running on this queue")
var ErrNotPosted = errors.New("called on a reservation that was never posted")
var ErrAlreadyPosted = errors.New("reservation already posted")
var ErrTickTooSmall = errors.New("tick duration smaller than minimum resolution")
var ErrTickTooLarge = errors.New("tick duration larger than maximum resolution")
