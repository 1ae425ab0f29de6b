// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package equeue implements a fixed-capacity, slab-backed event queue: a
// single-thread dispatcher that runs deferred, delayed and periodic
// callables in due-time order, fed by an interrupt-safe, non-blocking
// posting path.
package equeue

import (
	"sync"
	"sync/atomic"
	"time"
)

// Queue is the core event queue (C1+C3+C4+C8 combined under one lock, C5
// dispatcher loop, C6/C7 relay and hook). It is safe to call Post, Cancel
// and TimeLeft concurrently, including from interrupt-equivalent contexts
// (goroutines that must never block); Dispatch must only run on one
// goroutine at a time.
type Queue struct {
	opLock sync.Mutex // C8: the single process-wide critical section
	pool   *pool
	pending pendingList

	ts TickSource

	wake     chan struct{} // coalesced, non-blocking: C2 signal primitive
	breakReq int32         // atomic: set by BreakDispatch
	running  int32         // atomic: CAS-guarded, at most one Dispatch at a time

	chainTarget  *Queue           // C6: the queue this one forward-chains into
	chainSources []*Queue         // C6: queues chained into this one
	background   atomic.Value     // C7: holds func(time.Duration), may be nil
	ownTicker    *driftTickSource // non-nil if we own the default tick source
}

// Create allocates a new Queue with DefaultCapacity slots of
// DefaultMaxEventSize bytes each, driven by the default goroutine tick
// source, unless overridden by opts.
func Create(opts ...Option) (*Queue, error) {
	o := queueOptions{
		Capacity:     DefaultCapacity,
		MaxEventSize: DefaultMaxEventSize,
		Resolution:   DefaultResolution,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Capacity <= 0 || o.Capacity > 0xffff {
		return nil, ErrInvalidParameters
	}
	if o.Resolution < time.Microsecond {
		return nil, ErrTickTooSmall
	}
	if o.Resolution > 24*time.Hour {
		return nil, ErrTickTooLarge
	}

	q := &Queue{
		pool: newPool(o.Capacity, o.MaxEventSize),
		wake: make(chan struct{}, 1),
	}
	q.pending.init()
	q.background.Store((func(time.Duration))(nil))

	if o.TickSource != nil {
		q.ts = o.TickSource
	} else {
		dts := newDriftTickSource(o.Resolution)
		dts.start()
		q.ownTicker = dts
		q.ts = dts
	}
	return q, nil
}

// Destroy cancels every pending event (running each one's destructor
// exactly once) and stops the queue's own tick source, if any. It does not
// wait for an in-flight Dispatch to return.
func (q *Queue) Destroy() {
	q.lock()
	for {
		s, ok := q.pending.popFront()
		if !ok {
			break
		}
		q.destroySlotLocked(s)
	}
	q.unlock()
	if q.ownTicker != nil {
		q.ownTicker.stop()
	}
}

func (q *Queue) lock()   { q.opLock.Lock() }
func (q *Queue) unlock() { q.opLock.Unlock() }

// Now returns the queue's current tick (C2's tick(queue)).
func (q *Queue) Now() Tick { return q.ts.Now() }

func (q *Queue) destroySlotLocked(s *Slot) {
	dtor := s.destroy
	q.pool.free(s)
	if dtor != nil {
		dtor()
	}
}

// signal wakes a blocked dispatcher. Sends are non-blocking and coalesce:
// if the channel already holds a pending wake there is nothing more to do.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// notifyHeadChangedLocked must be called with opLock held, immediately
// after any mutation that may have changed the pending list's head
// deadline (post, cancel, popDue), per C7's contract.
func (q *Queue) notifyHeadChangedLocked() {
	q.signal()
	update, _ := q.background.Load().(func(time.Duration))
	if update == nil {
		return
	}
	now := q.ts.Now()
	if d, ok := q.pending.headDeadline(); ok {
		delta := int32(d.Sub(now))
		if delta < 0 {
			delta = 0 // overdue head: due now, not "no events"
		}
		update(time.Duration(delta) * time.Millisecond)
	} else {
		update(-1)
	}
}

// Reservation is a slot reserved by Alloc but not yet posted: the Go
// analogue of the C core's raw slot pointer, letting a caller configure
// event_delay/event_period/event_dtor before calling Post. A Reservation
// that is never posted must still be released via Post or it leaks its
// slot until the queue is destroyed.
type Reservation struct {
	q    *Queue
	slot *Slot
	used bool
}

// Alloc reserves one event slot. bytes is checked against the queue's
// configured MaxEventSize for API fidelity with callers doing their own
// size accounting; the slot's actual payload is the closure supplied to
// Post, not a placement-constructed byte region, since Go closures cannot
// be safely placement-constructed into a raw buffer without violating the
// garbage collector's invariants. Returns nil, ErrQueueFull if the slab is
// exhausted, never blocking the caller.
func (q *Queue) Alloc(bytes int) (*Reservation, error) {
	if bytes < 0 {
		return nil, ErrInvalidParameters
	}
	q.lock()
	s := q.pool.alloc(bytes)
	q.unlock()
	if s == nil {
		if bytes > q.pool.maxEventSz {
			return nil, ErrEventTooBig
		}
		return nil, ErrQueueFull
	}
	s.period = noPeriod
	return &Reservation{q: q, slot: s}, nil
}

// SetDelay sets the relative delay until first fire (event_delay).
func (r *Reservation) SetDelay(d time.Duration) { r.slot.deadline = r.q.ts.Now().Add(msTick(d)) }

// SetPeriod marks the event periodic with period d (event_period). A
// negative d (or never calling SetPeriod) means one-shot.
func (r *Reservation) SetPeriod(d time.Duration) { r.slot.period = d }

// SetDtor installs the destructor run when the slot returns to the free
// list, whether by normal completion or cancellation (event_dtor).
func (r *Reservation) SetDtor(f func()) { r.slot.destroy = f }

func msTick(d time.Duration) Tick {
	if d <= 0 {
		return 0
	}
	return Tick(d / time.Millisecond)
}

// Post installs invoke as the reservation's callable and inserts it into
// the pending queue, returning the handle a later Cancel/TimeLeft must use.
// It is IRQ-safe: it never blocks and always terminates in O(pending
// depth).
func (q *Queue) Post(r *Reservation, invoke func()) (Handle, error) {
	if r == nil || r.slot == nil {
		return 0, ErrInvalidParameters
	}
	if r.used {
		return 0, ErrAlreadyPosted
	}
	if invoke == nil {
		ERR("Post called with a nil callable\n")
		return 0, ErrInvalidParameters
	}
	r.used = true
	s := r.slot
	s.invoke = invoke
	s.state.chgFlags(flgPending, flgExecuting|flgCancelled|flgDelete)

	q.lock()
	now := q.ts.Now()
	q.pending.insert(now, s)
	q.notifyHeadChangedLocked()
	q.unlock()

	_, gen := s.state.getAll()
	return makeHandle(int(s.index), gen), nil
}

// Cancel removes the event identified by h if it is still pending,
// running its destructor exactly once. It is best-effort: on a stale
// handle or a handle already recycled to a different event it returns
// false without side effects. On an event that is currently executing it
// returns false and leaves the running invocation alone, but marks the slot
// so that it is destroyed instead of rescheduled when the invocation ends.
func (q *Queue) Cancel(h Handle) bool {
	index, gen, ok := h.decode()
	if !ok {
		return false
	}
	s := q.pool.slotAt(index)
	if s == nil {
		return false
	}

	q.lock()
	defer q.unlock()

	curFlags, curGen := s.state.getAll()
	if curGen != gen {
		return false // stale id: recycled since, or never allocated with it
	}
	if curFlags&flgExecuting != 0 {
		// best-effort: suppress any pending rearm, but the in-flight
		// invocation (if any) is left alone, per the cancel-from-callback
		// contract in spec §9.
		s.state.setFlags(flgDelete)
		return false
	}
	if curFlags&flgPending == 0 {
		return false
	}
	q.pending.remove(s)
	s.state.setFlags(flgCancelled)
	q.destroySlotLocked(s)
	q.notifyHeadChangedLocked()
	return true
}

// TimeLeft returns the time remaining until h's event fires, or 0 if it is
// due, currently executing, or the handle is stale (formally undefined in
// that last case, per spec §9's open question).
func (q *Queue) TimeLeft(h Handle) time.Duration {
	index, gen, ok := h.decode()
	if !ok {
		return 0
	}
	s := q.pool.slotAt(index)
	if s == nil {
		return 0
	}

	q.lock()
	defer q.unlock()

	curFlags, curGen := s.state.getAll()
	if curGen != gen || curFlags&flgPending == 0 {
		return 0
	}
	now := q.ts.Now()
	delta := s.deadline.Sub(now)
	if int32(delta) <= 0 {
		return 0
	}
	return time.Duration(int32(delta)) * time.Millisecond
}
