// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package equeue

import "strconv"

// MaxTickDiff is the smallest forward difference between two Tick values
// that no longer compares correctly: differences of MaxTickDiff or more
// wrap around and compare as if they were in the past.
const MaxTickDiff = 1 << 31

// Tick is a monotonic millisecond counter that wraps at 2^32, exactly like
// the C mbed-os equeue tick source. Two Tick values can only be meaningfully
// compared as long as their difference is strictly less than MaxTickDiff;
// comparisons use two's-complement wraparound arithmetic on the native
// uint32 width so there is no need for an explicit mask.
type Tick uint32

// EQ returns whether t == u, modulo wraparound.
func (t Tick) EQ(u Tick) bool { return t == u }

// NE returns whether t != u, modulo wraparound.
func (t Tick) NE(u Tick) bool { return t != u }

// LT returns whether t is strictly before u.
func (t Tick) LT(u Tick) bool { return int32(t-u) < 0 }

// LE returns whether t is before or equal to u.
func (t Tick) LE(u Tick) bool { return int32(t-u) <= 0 }

// GT returns whether t is strictly after u.
func (t Tick) GT(u Tick) bool { return int32(t-u) > 0 }

// GE returns whether t is after or equal to u.
func (t Tick) GE(u Tick) bool { return int32(t-u) >= 0 }

// Add returns t shifted forward by d ticks (d may wrap).
func (t Tick) Add(d Tick) Tick { return t + d }

// Sub returns the signed tick difference t - u as a Tick (itself subject
// to the same wraparound rules on further use).
func (t Tick) Sub(u Tick) Tick { return t - u }

func (t Tick) String() string { return strconv.FormatUint(uint64(t), 10) }
