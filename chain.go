// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package equeue

// Chain makes target's dispatcher pull due events from q on every wait, as
// if they were its own (C6): "after chaining a queue to a target, calling
// dispatch on the target queue will also dispatch events from this
// queue." Passing nil un-chains q from whatever target it was chained
// into. Each queue keeps its own slab and pending list; only dispatch
// scheduling is shared.
//
// Chaining a queue into itself, or into a queue that (transitively) chains
// back to q, is rejected with ErrChainCycle: the target's forward chain is
// walked before installing, per spec §9's "cyclic chain detection".
func (q *Queue) Chain(target *Queue) error {
	q.lock()
	oldTarget := q.chainTarget
	q.unlock()

	if target == nil {
		if oldTarget != nil {
			oldTarget.removeSource(q)
		}
		q.lock()
		q.chainTarget = nil
		q.unlock()
		return nil
	}
	if target == q {
		return ErrChainCycle
	}
	if wouldCycle(target, q) {
		return ErrChainCycle
	}

	if oldTarget != nil && oldTarget != target {
		oldTarget.removeSource(q)
	}
	q.lock()
	q.chainTarget = target
	q.unlock()
	target.addSource(q)
	return nil
}

func (t *Queue) addSource(src *Queue) {
	t.lock()
	defer t.unlock()
	for _, s := range t.chainSources {
		if s == src {
			return
		}
	}
	t.chainSources = append(t.chainSources, src)
}

func (t *Queue) removeSource(src *Queue) {
	t.lock()
	defer t.unlock()
	for i, s := range t.chainSources {
		if s == src {
			t.chainSources = append(t.chainSources[:i], t.chainSources[i+1:]...)
			return
		}
	}
}

// wouldCycle walks from from's chain pointer forward looking for to.
func wouldCycle(from, to *Queue) bool {
	seen := map[*Queue]bool{}
	cur := from
	for cur != nil {
		if cur == to {
			return true
		}
		if seen[cur] {
			return false // already-broken cycle elsewhere; don't loop forever
		}
		seen[cur] = true
		cur.opLock.Lock()
		next := cur.chainTarget
		cur.opLock.Unlock()
		cur = next
	}
	return false
}
