// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package equeue

import "time"

// Event is a reusable, re-postable binding of a callable to a queue,
// modeled on the original mbed Event<F> handle (spec §9's "event object
// re-posting"): a small value type holding the queue, the bound callable
// and the scheduling parameters, that calls Alloc/Post again on every
// Post call.
type Event struct {
	q      *Queue
	fn     func()
	delay  time.Duration
	period time.Duration
}

// NewEvent returns an Event bound to f, initially one-shot with zero delay.
func (q *Queue) NewEvent(f func()) *Event {
	return &Event{q: q, fn: f, period: noPeriod}
}

// Delay sets the relative delay used by the next Post and returns e for
// chaining.
func (e *Event) Delay(d time.Duration) *Event {
	e.delay = d
	return e
}

// Period marks e periodic with period d and returns e for chaining.
func (e *Event) Period(d time.Duration) *Event {
	e.period = d
	return e
}

// Post allocates a fresh slot and posts e's callable with e's current
// delay/period, returning the handle for this invocation. Events can be
// posted repeatedly; each Post is independent and gets its own handle.
func (e *Event) Post() (Handle, error) {
	return e.q.postFunc(e.fn, e.delay, e.period, nil)
}
