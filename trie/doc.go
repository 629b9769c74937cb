// Package trie implements a three-level multibit trie mapping a bounded
// uint32 index to an opaque leaf value.
//
// A trie is parameterized by three stride lengths (s0, s1, s2) fixed at
// construction; together they define S = s0+s1+s2 and the index domain
// [0, 2^S). An index decomposes into (i0, i1, i2), one component per
// level, and each level is a directly-indexed array of 2^si slots rather
// than a compressed or hashed representation, so that node addresses in
// documentation and tests ("L0[2].L1[255]") name exact slots.
//
// L1 and L2 nodes are allocated lazily on first insertion beneath them
// and freed eagerly the moment their last child is removed: an interior
// node never persists empty. Leaves are owned by the caller; the trie
// owns only its own node structure.
package trie
