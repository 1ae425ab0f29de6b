// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package equeue

import "time"

// Background registers update to be called by the queue whenever the next
// deadline changes (C7): after any post, cancel or due-pop that moves the
// head, the queue calls update(d) with the duration until the new head, or
// a negative value meaning "no events, disable the timer". Passing nil
// disables the mechanism and leaves the queue fully self-driven by its own
// tick source.
//
// update must be safe to call re-entrantly with respect to the queue: it
// typically arms a hardware timer whose ISR later calls Dispatch(0).
func (q *Queue) Background(update func(time.Duration)) {
	q.background.Store(update)
	q.lock()
	q.notifyHeadChangedLocked()
	q.unlock()
}
