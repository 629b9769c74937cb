// Package nodes holds the level-0 and level-1 node shapes shared by the
// trie (Core A) and bitmap (Core B) packages. Both layer the same
// three-level index decomposition and the same lazy-allocate/eager-free
// node lifecycle on top of it; they differ only in what a level-2 slot
// holds. L0 and L1 are generic over that slot type C so the two packages
// can each instantiate the same container with their own payload.
package nodes

import "github.com/hariguchi/mtrie3l/internal/memstats"

// L0 is the root/container node: it owns the stride configuration, the
// global counters, and the level-1 child array.
type L0[C comparable] struct {
	S0, S1, S2 uint8
	Slen       uint8 // S0+S1+S2
	Num        uint32
	Cnt        uint32 // non-null L1 children; maintained by package trie only, package bitmap leaves it at zero
	NL1        uint32
	NL2        uint32
	L1         []*L1[C]
	Mem        memstats.Counters
}

// L1 is an interior node: Cnt counts non-zero-value (non-"empty") slots
// in L2. What "empty" means is caller-defined: for Core A it's a nil leaf
// pointer; for Core B it's the zero-value slot (nil payload, unsaturated).
type L1[C comparable] struct {
	Cnt uint32
	L2  []C
}

// NewL0 allocates a zeroed level-0 node with 2^s0 level-1 slots. It
// returns an error if any stride is zero or would overflow a uint32
// shift, mirroring the C library's ESLEN check at the 32-bit counter
// boundary (we use 32-bit counters uniformly rather than per-level
// widths, so the practical ceiling is s0+s1+s2 <= 32 and each si <= 30
// to keep 1<<si representable and distinct from a full-range sentinel).
func NewL0[C comparable](s0, s1, s2 uint8) (*L0[C], error) {
	if s0 == 0 || s1 == 0 || s2 == 0 {
		return nil, ErrStrideLen
	}
	if int(s0)+int(s1)+int(s2) > 32 || s0 > 30 || s1 > 30 || s2 > 30 {
		return nil, ErrStrideLen
	}
	l0 := &L0[C]{
		S0:   s0,
		S1:   s1,
		S2:   s2,
		Slen: s0 + s1 + s2,
		L1:   make([]*L1[C], 1<<s0),
	}
	l0.Mem.Alloc(memstats.TagL0, l0NodeSize(s0))
	return l0, nil
}

// NewL1 allocates a zeroed level-1 node with 2^s1 level-2 slots and
// records its allocation in l0's counters.
func NewL1[C comparable](l0 *L0[C]) *L1[C] {
	l1 := &L1[C]{L2: make([]C, 1<<l0.S1)}
	l0.Mem.Alloc(memstats.TagL1, l1NodeSize(l0.S1))
	return l1
}

// FreeL1 releases a level-1 node's accounting entry. The caller is
// responsible for nulling the owning slot.
func FreeL1[C comparable](l0 *L0[C], l1 *L1[C]) {
	l0.Mem.Free(memstats.TagL1, l1NodeSize(l0.S1))
}

// Decompose splits index x into its (i0, i1, i2) components given the
// three strides, exactly as MTRIE3L_GET_INDICES does in the original C.
func Decompose(x uint32, s0, s1, s2 uint8) (i0, i1, i2 uint32) {
	i0 = (x >> (s1 + s2)) & mask(s0)
	i1 = (x >> s2) & mask(s1)
	i2 = x & mask(s2)
	return
}

func mask(s uint8) uint32 {
	if s >= 32 {
		return ^uint32(0)
	}
	return (uint32(1) << s) - 1
}

// l0NodeSize/l1NodeSize approximate the in-memory footprint of a node for
// accounting purposes: header plus the child-slot array. The header
// estimate is nominal (the Go runtime's real layout/padding isn't
// observable through language-level accounting), matching the role these
// figures play in the original library: relative accounting, not an ABI
// contract.
func l0NodeSize(s0 uint8) uintptr {
	const header = 40
	return header + (uintptr(1)<<s0)*8
}

func l1NodeSize(s1 uint8) uintptr {
	const header = 8
	return header + (uintptr(1)<<s1)*8
}

// L2NodeSize is exported so trie/bitmap can report a consistent figure
// for their own level-2 node shape (which varies per package).
func L2NodeSize(s2 uint8, elemSize uintptr) uintptr {
	const header = 8
	return header + (uintptr(1)<<s2)*elemSize
}
