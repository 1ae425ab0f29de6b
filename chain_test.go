// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package equeue

import (
	"testing"
	"time"
)

// S6: q1 chained into q2; dispatching q2 also drains q1, but q1 keeps its
// own buffer and q2's own (empty) pending list is unaffected.
func TestChainRelaysDueEvents(t *testing.T) {
	q1, ts1 := newManualQueue(t, 4)
	defer q1.Destroy()
	q2, _ := newManualQueue(t, 4)
	defer q2.Destroy()

	if err := q1.Chain(q2); err != nil {
		t.Fatalf("Chain: %s\n", err)
	}

	ran := false
	if _, err := q1.CallIn(10*time.Millisecond, func() { ran = true }); err != nil {
		t.Fatalf("CallIn on q1: %s\n", err)
	}
	ts1.advance(10)

	if err := q2.Dispatch(0); err != nil {
		t.Fatalf("Dispatch(q2, 0): %s\n", err)
	}
	if !ran {
		t.Fatalf("q1's event should have run via q2's dispatch\n")
	}
	if q1.pool.allocated != 0 {
		t.Fatalf("expected q1's slot to be freed after the relay\n")
	}
}

func TestChainRejectsSelfCycle(t *testing.T) {
	q, _ := newManualQueue(t, 2)
	defer q.Destroy()
	if err := q.Chain(q); err != ErrChainCycle {
		t.Fatalf("expected ErrChainCycle chaining a queue into itself, got %v\n", err)
	}
}

func TestChainRejectsTransitiveCycle(t *testing.T) {
	a, _ := newManualQueue(t, 2)
	defer a.Destroy()
	b, _ := newManualQueue(t, 2)
	defer b.Destroy()
	c, _ := newManualQueue(t, 2)
	defer c.Destroy()

	if err := a.Chain(b); err != nil {
		t.Fatalf("a.Chain(b): %s\n", err)
	}
	if err := b.Chain(c); err != nil {
		t.Fatalf("b.Chain(c): %s\n", err)
	}
	if err := c.Chain(a); err != ErrChainCycle {
		t.Fatalf("expected ErrChainCycle closing a->b->c->a, got %v\n", err)
	}
}

func TestChainNilRemoves(t *testing.T) {
	a, _ := newManualQueue(t, 2)
	defer a.Destroy()
	b, _ := newManualQueue(t, 2)
	defer b.Destroy()

	if err := a.Chain(b); err != nil {
		t.Fatalf("a.Chain(b): %s\n", err)
	}
	if err := a.Chain(nil); err != nil {
		t.Fatalf("a.Chain(nil): %s\n", err)
	}
	if a.chainTarget != nil {
		t.Fatalf("expected chain target cleared\n")
	}
}
