// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package equeue

import "time"

// noPeriod marks a one-shot event; any period >= 0 makes the event
// periodic, mirroring the C core's i32 period field (-1 for one-shot).
const noPeriod time.Duration = -1

// Slot is a fixed-width unit of the slab: a pending-list link, a deadline,
// the callable to invoke and the optional destructor run when the slot
// returns to the free list. The payload is a plain Go closure rather
// than a placement-constructed byte region — see the Alloc doc comment on
// Queue for why.
type Slot struct {
	next, prev *Slot // pending list links; nil/self when detached
	freeNext   int32 // free-list link (slot index), -1 terminates the list
	index      int32 // this slot's own index, for handle encoding

	state    slotState
	deadline Tick
	period   time.Duration

	invoke  func()
	destroy func()
}

// detached reports whether the slot is not linked into the pending list
// right now: self-linked after alloc or remove, or nil-linked once freed.
// Slots on the free list therefore also report true.
func (s *Slot) detached() bool {
	return s == s.next || (s.next == nil && s.prev == nil)
}
