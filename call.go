// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// This file is the external-collaborator convenience layer spec §1 places
// out of scope for the core: it binds a zero-argument Go closure to
// Alloc/Post so callers don't have to juggle Reservations directly,
// grounded on the original mbed EventQueue::call/call_in/call_every trio.
package equeue

import "time"

// Call posts f for immediate dispatch, equivalent to the original's call(f).
func (q *Queue) Call(f func()) (Handle, error) {
	return q.postFunc(f, 0, noPeriod, nil)
}

// CallIn posts f to run once after d, equivalent to call_in(ms, f).
func (q *Queue) CallIn(d time.Duration, f func()) (Handle, error) {
	return q.postFunc(f, d, noPeriod, nil)
}

// CallEvery posts f to run every d, first firing after d, equivalent to
// call_every(ms, f).
func (q *Queue) CallEvery(d time.Duration, f func()) (Handle, error) {
	return q.postFunc(f, d, d, nil)
}

func (q *Queue) postFunc(f func(), delay, period time.Duration, dtor func()) (Handle, error) {
	r, err := q.Alloc(0)
	if err != nil {
		return 0, err
	}
	r.SetDelay(delay)
	r.SetPeriod(period)
	r.SetDtor(dtor)
	return q.Post(r, f)
}
