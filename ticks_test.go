// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package equeue

import (
	"math/rand"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	rand.Seed(time.Now().UnixNano())
	m.Run()
}

func tstOp(t *testing.T, a, b uint32,
	op func(Tick, Tick) bool, rawOp func(int64, int64) bool) {
	got := op(Tick(a), Tick(b))
	// compare against the 32-bit two's-complement difference, widened to
	// int64 and compared with 0 using plain integer operators.
	want := rawOp(int64(int32(a-b)), 0)
	if got != want {
		t.Errorf("op(%d, %d) = %v, want %v (diff %d)\n", a, b, got, want, int32(a-b))
	}
}

func TestTicksOps(t *testing.T) {
	cases := []struct{ a, b uint32 }{
		{0, 0},
		{1, 0},
		{0, 1},
		{0xffffffff, 0},
		{0, 0xffffffff},
		{0x7fffffff, 0},
		{0x80000000, 0},
		{0xffffffff, 0xfffffffe},
	}
	for _, c := range cases {
		tstOp(t, c.a, c.b, Tick.LT, func(x, y int64) bool { return x < y })
		tstOp(t, c.a, c.b, Tick.LE, func(x, y int64) bool { return x <= y })
		tstOp(t, c.a, c.b, Tick.GT, func(x, y int64) bool { return x > y })
		tstOp(t, c.a, c.b, Tick.GE, func(x, y int64) bool { return x >= y })
		if Tick(c.a).EQ(Tick(c.b)) != (c.a == c.b) {
			t.Errorf("EQ(%d, %d) wrong\n", c.a, c.b)
		}
	}

	for i := 0; i < 100000; i++ {
		a := rand.Uint32()
		delta := uint32(rand.Int31n(int32(MaxTickDiff - 1)))
		b := a - delta // b is "delta" ticks in the past relative to a
		if !Tick(a).GE(Tick(b)) {
			t.Fatalf("GE failed for a=%d b=%d delta=%d\n", a, b, delta)
		}
		if delta != 0 && !Tick(a).GT(Tick(b)) {
			t.Fatalf("GT failed for a=%d b=%d delta=%d\n", a, b, delta)
		}
		if Tick(a).Sub(Tick(b)) != Tick(delta) {
			t.Fatalf("Sub failed for a=%d b=%d delta=%d got %d\n",
				a, b, delta, Tick(a).Sub(Tick(b)))
		}
		if !Tick(b).Add(Tick(delta)).EQ(Tick(a)) {
			t.Fatalf("Add failed for a=%d b=%d delta=%d\n", a, b, delta)
		}
	}
}

func TestTicksWrap(t *testing.T) {
	// a tick value near the top of the range should still compare as
	// "before" a small value a short delay later, across the 2^32 wrap.
	near := Tick(0xfffffff0)
	after := near.Add(0x20) // wraps past 0
	if !near.LT(after) {
		t.Fatalf("expected %d < %d across wraparound\n", near, after)
	}
	if after.LE(near) {
		t.Fatalf("expected %d > %d across wraparound\n", after, near)
	}
}
