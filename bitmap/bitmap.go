package bitmap

import "github.com/hariguchi/mtrie3l/internal/nodes"

// l2Node is the level-2 payload for Core B: a packed array of 32-bit
// words, a count of words with at least one bit set, and a count of
// words that are entirely set (all-ones).
type l2Node struct {
	cnt     uint32
	nSetAll uint32
	words   []uint32
}

// slot is an L1 child slot. The zero value (nil, false) means "empty".
// saturated=true means the slot represents a fully-saturated L2 subtree
// without an allocated node; ptr is then always nil.
type slot struct {
	ptr       *l2Node
	saturated bool
}

// BitMap is a trie-based bitmap over [0, MaxPos()]. The zero value is
// not usable; construct one with New.
type BitMap struct {
	l0     *nodes.L0[slot]
	maxPos uint32
	flip   bool

	// failNextL1Alloc/failNextL2Alloc let tests simulate ENOMEM on the
	// next L1/L2 allocation to exercise rollback paths.
	failNextL1Alloc func() bool
	failNextL2Alloc func() bool
}

// New allocates a bitmap covering [0, maxPos]. maxPos must be < 2^29.
func New(maxPos uint32) (*BitMap, error) {
	row, err := selectStrides(maxPos)
	if err != nil {
		return nil, ErrIndex
	}
	l0, err := nodes.NewL0[slot](row.s0, row.s1, row.s2)
	if err != nil {
		return nil, ErrStrideLen
	}
	total := uint64(1)<<(uint(row.s0)+uint(row.s1)+uint(row.s2)+5) - 1
	b := &BitMap{l0: l0, maxPos: uint32(total)}
	return b, nil
}

// Free releases the bitmap's nodes. Unlike trie.Free, a non-empty bitmap
// may be freed directly (there is no caller-owned leaf to drain first);
// it simply tears down every node.
func (b *BitMap) Free() error {
	if b == nil {
		return ErrGeneric
	}
	return b.destroyAll()
}

// MaxPos returns the largest addressable bit position.
func (b *BitMap) MaxPos() uint32 {
	if b == nil {
		return 0
	}
	return b.maxPos
}

// NumEntries returns the number of 32-bit words with at least one bit
// set, counting every word of a saturated subtree as set.
func (b *BitMap) NumEntries() uint32 {
	if b == nil {
		return 0
	}
	return b.l0.Num
}

// NumL1 returns the number of live level-1 nodes.
func (b *BitMap) NumL1() uint32 {
	if b == nil {
		return 0
	}
	return b.l0.NL1
}

// NumL2 returns the number of live, materialized (non-saturated) level-2
// nodes.
func (b *BitMap) NumL2() uint32 {
	if b == nil {
		return 0
	}
	return b.l0.NL2
}

// IsFlipped reports whether the flip flag is currently set.
func (b *BitMap) IsFlipped() bool {
	if b == nil {
		return false
	}
	return b.flip
}

func (b *BitMap) l2Elems() uint32 { return uint32(1) << b.l0.S2 }

func wordIndex(bitPos uint32) uint32 { return bitPos >> 5 }
func bitInWord(bitPos uint32) uint8  { return uint8(bitPos & 31) }

// setBits32 returns a mask with bits [pos, endPos] set, inclusive, within
// a 32-bit word.
func setBits32(pos, endPos uint8) uint32 {
	lo := ^uint32(0) << pos
	var hi uint32
	if endPos == 31 {
		hi = ^uint32(0)
	} else {
		hi = (uint32(1) << (endPos + 1)) - 1
	}
	return lo & hi
}
