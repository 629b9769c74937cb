/*
Copyright 2014 Will Fitzgerald. All rights reserved.
Use of this source code is governed by a BSD-style
license that can be found in the LICENSE file.
*/

// Package bitset implements a read-only, 64-bit-word bitset used by the
// bitmap package to hand callers a flat, externally-consumable view of a
// single trie-backed L2 node (see FromWords32) for debugging and for
// cross-checks in tests.
//
// This is a simplified and stripped down version of:
//
//	github.com/bits-and-blooms/bitset
//
// trimmed to the read-only surface this package's one caller
// (bitmap.NodeWords) actually needs: a word slice goes in via
// FromWords32, and Test/Count read it back. All bugs belong to me.
package bitset

import (
	"math/bits"
)

// the wordSize of a bit set
const wordSize = 64

// log2WordSize is lg(wordSize)
const log2WordSize = 6

// A BitSet is a slice of words, built via FromWords32 and read with
// Test/Count.
type BitSet []uint64

// bitsCapacity returns the number of possible bits in the current set.
func (b BitSet) bitsCapacity() uint {
	return uint(len(b) * 64)
}

// bitsIndex calculates the index of i in a `uint64`
func bitsIndex(i uint) uint {
	return i & (wordSize - 1) // (i % 64) but faster
}

// Test whether bit i is set.
func (b BitSet) Test(i uint) bool {
	if i >= b.bitsCapacity() {
		return false
	}
	return b[i>>log2WordSize]&(1<<bitsIndex(i)) != 0
}

// Count (number of set bits).
// Also known as "popcount" or "population count".
func (b BitSet) Count() int {
	return popcntSlice(b)
}

func popcntSlice(s []uint64) int {
	var cnt int
	for _, x := range s {
		cnt += bits.OnesCount64(x)
	}
	return cnt
}

// FromWords32 builds a BitSet from a sequence of 32-bit words, packing
// two consecutive words per 64-bit word in little-endian order (words[0]
// occupies bits 0-31, words[1] occupies bits 32-63, and so on). This is
// the layout a Core B L2 node uses internally, so callers can hand the
// node's raw word slice straight to this constructor.
func FromWords32(words []uint32) BitSet {
	b := make(BitSet, (len(words)+1)/2)
	for i, w := range words {
		if w == 0 {
			continue
		}
		b[i/2] |= uint64(w) << (32 * (i % 2))
	}
	return b
}
