// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package equeue

import (
	"sync/atomic"
	"time"
)

// Dispatch runs the single-threaded dispatcher loop (C5). timeout < 0 runs
// forever, returning only via BreakDispatch; timeout == 0 drains whatever
// is currently due and returns immediately (IRQ-safe); timeout > 0 drains
// for at most that long of wall time, computed once at entry.
//
// Only one goroutine may be inside Dispatch on a given Queue at a time;
// a second concurrent call returns ErrAlreadyRunning immediately.
func (q *Queue) Dispatch(timeout time.Duration) error {
	if !atomic.CompareAndSwapInt32(&q.running, 0, 1) {
		return ErrAlreadyRunning
	}
	defer atomic.StoreInt32(&q.running, 0)

	var deadline time.Time
	forever := timeout < 0
	if !forever {
		deadline = time.Now().Add(timeout)
	}

	for {
		if atomic.CompareAndSwapInt32(&q.breakReq, 1, 0) {
			return nil
		}

		q.drainExpiredChain()
		q.drainOnePass()

		if atomic.LoadInt32(&q.breakReq) != 0 {
			continue
		}
		if !forever && timeout == 0 {
			return nil
		}

		wait := q.nextWait()
		if !forever {
			remaining := deadline.Sub(time.Now())
			if remaining <= 0 {
				return nil
			}
			if wait < 0 || wait > remaining {
				wait = remaining
			}
		}
		if !q.waitForWork(wait) {
			// timed out without being signalled; nothing new happened,
			// but loop around so the finite-timeout budget is re-checked.
			if !forever && time.Now().After(deadline) {
				return nil
			}
		}
	}
}

// DispatchForever is a zero-argument equivalent of Dispatch(-1), useful
// wherever a bare function value is required (e.g. passed to go), mirroring
// the original mbed EventQueue::dispatch_forever() overload-ambiguity fix.
func (q *Queue) DispatchForever() { q.Dispatch(-1) }

// BreakDispatch sets a flag observed between events; the currently
// dispatching loop (if any) exits after finishing any in-flight drain
// pass. It never aborts an invocation already in progress.
func (q *Queue) BreakDispatch() {
	atomic.StoreInt32(&q.breakReq, 1)
	q.signal()
}

// dispatchExpired performs exactly one drain pass without waiting,
// draining only events already due. It is the primitive C6 chaining uses
// to pull a source queue's due events into the target's own drain pass,
// and is also what a zero-timeout Dispatch(0) call boils down to.
func (q *Queue) dispatchExpired() {
	q.drainOnePass()
}

func (q *Queue) drainExpiredChain() {
	q.lock()
	sources := append([]*Queue(nil), q.chainSources...)
	q.unlock()
	for _, src := range sources {
		src.dispatchExpired()
	}
}

// drainOnePass detaches every currently due slot, invokes each outside the
// critical section, then reschedules (periodic) or destroys (one-shot) it.
func (q *Queue) drainOnePass() {
	for {
		q.lock()
		now := q.ts.Now()
		s, ok := q.pending.popDue(now)
		if !ok {
			q.unlock()
			return
		}
		s.state.chgFlags(flgExecuting, flgPending)
		q.notifyHeadChangedLocked()
		q.unlock()

		invoke := s.invoke
		if invoke != nil {
			invoke()
		}

		q.lock()
		q.afterRunLocked(s)
		q.unlock()
	}
}

// afterRunLocked reschedules a periodic slot (advancing by whole multiples
// of its period until the new deadline is no longer in the past) or
// destroys a one-shot/cancelled one. Must be called with opLock held.
func (q *Queue) afterRunLocked(s *Slot) {
	flags := s.state.flags()
	s.state.resetFlags(flgExecuting)
	if flags&flgDelete != 0 || s.period < 0 {
		q.destroySlotLocked(s)
		q.notifyHeadChangedLocked()
		return
	}

	now := q.ts.Now()
	period := msTick(s.period)
	if period == 0 {
		period = 1 // never re-arm with a 0-tick period; see S4/invariant 4
	}
	next := s.deadline.Add(period)
	for next.LE(now) {
		next = next.Add(period)
	}
	s.deadline = next
	s.state.setFlags(flgPending)
	q.pending.insert(now, s)
	q.notifyHeadChangedLocked()
}

// nextWait returns how long Dispatch should wait before the next due
// event, factoring in any chained source queue's head; -1 means "wait
// until signalled", matching wait(ms<0).
func (q *Queue) nextWait() time.Duration {
	q.lock()
	now := q.ts.Now()
	d, ok := q.pending.headDeadline()
	sources := append([]*Queue(nil), q.chainSources...)
	q.unlock()

	for _, src := range sources {
		if sd, sok := src.headDeadlineNow(); sok {
			if !ok || sd.Sub(now).LT(d.Sub(now)) {
				d, ok = sd, true
			}
		}
	}
	if !ok {
		return -1
	}
	delta := int32(d.Sub(now))
	if delta < 0 {
		delta = 0
	}
	return time.Duration(delta) * time.Millisecond
}

func (q *Queue) headDeadlineNow() (Tick, bool) {
	q.lock()
	defer q.unlock()
	return q.pending.headDeadline()
}

// waitForWork blocks on the wake signal for at most d (d < 0 means
// indefinitely), returning true if it was woken, false on timeout.
func (q *Queue) waitForWork(d time.Duration) bool {
	if d == 0 {
		select {
		case <-q.wake:
			return true
		default:
			return false
		}
	}
	if d < 0 {
		<-q.wake
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-q.wake:
		return true
	case <-timer.C:
		return false
	}
}
