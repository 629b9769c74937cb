// Package bitmap implements a trie-based bitmap: a sparse Boolean
// function over [0, maxPos] layered on the same level-0/level-1 node
// topology as package trie, with a level-2 payload of packed 32-bit
// words instead of leaf pointers.
//
// A level-1 slot holding a fully-saturated level-2 subtree (every word
// all-ones) is compressed: the level-2 node is freed and the slot is
// tagged "saturated" instead, so a long run of set bits costs O(1) nodes
// rather than O(n) words. Any reset within a saturated slot first
// materializes a fresh all-ones level-2 node, then clears the requested
// bits from it (uncompression).
//
// The container carries a flip flag, set or cleared by SetAll/ResetAll.
// When set, every read and write is interpreted through the flag: IsSet
// reports the physical bit XORed with the flag, and a logical Set/Reset
// is translated into whichever physical operation achieves that logical
// effect. This makes the flag fully operative rather than write-only.
package bitmap
