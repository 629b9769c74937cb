package bitmap

import (
	"fmt"

	extbitset "github.com/bits-and-blooms/bitset"

	"github.com/hariguchi/mtrie3l/internal/bitset"
)

func assembleWordIndex(i0, i1, i2 uint32, s1, s2 uint8) uint32 {
	return (i0 << (s1 + s2)) | (i1 << s2) | i2
}

// Snapshot exports every logically-set bit as a github.com/bits-and-blooms/bitset.BitSet,
// in ascending order, honoring the flip flag. It is a read-only,
// allocation-heavy convenience for debugging and for cross-checking
// results in tests; it is not on any hot path.
func (b *BitMap) Snapshot() *extbitset.BitSet {
	if b == nil {
		return extbitset.New(0)
	}
	bs := extbitset.New(uint(b.maxPos) + 1)
	l0 := b.l0
	l2n := b.l2Elems()
	for i0 := uint32(0); i0 < uint32(len(l0.L1)); i0++ {
		l1 := l0.L1[i0]
		if l1 == nil {
			continue
		}
		for i1 := uint32(0); i1 < uint32(len(l1.L2)); i1++ {
			s := l1.L2[i1]
			wordBase := assembleWordIndex(i0, i1, 0, l0.S1, l0.S2)
			switch {
			case s.saturated:
				for i2 := uint32(0); i2 < l2n; i2++ {
					setWordBits(bs, wordBase+i2, ^uint32(0))
				}
			case s.ptr != nil:
				for i2, w := range s.ptr.words {
					if w == 0 {
						continue
					}
					setWordBits(bs, wordBase+uint32(i2), w)
				}
			}
		}
	}
	if b.flip {
		bs = bs.Complement()
	}
	return bs
}

func setWordBits(bs *extbitset.BitSet, wordIdx uint32, w uint32) {
	base := uint(wordIdx) * 32
	for bit := uint(0); bit < 32; bit++ {
		if w&(uint32(1)<<bit) != 0 {
			bs.Set(base + bit)
		}
	}
}

// NodeWords returns the internal bitset view of the materialized L2 node
// at (i0, i1), or ok=false if that slot is empty or saturated. Used by
// tests to cross-check word-level compression state without reaching
// into package-private fields.
func (b *BitMap) NodeWords(i0, i1 uint32) (bits bitset.BitSet, ok bool) {
	if b == nil || i0 >= uint32(len(b.l0.L1)) {
		return nil, false
	}
	l1 := b.l0.L1[i0]
	if l1 == nil || i1 >= uint32(len(l1.L2)) {
		return nil, false
	}
	s := l1.L2[i1]
	if s.ptr == nil {
		return nil, false
	}
	return bitset.FromWords32(s.ptr.words), true
}

// NodeStats returns the cnt (non-zero words) and nSetAll (all-ones words)
// counters of the materialized L2 node at (i0, i1), or ok=false if that
// slot is empty or saturated. Used by tests to cross-check compression
// bookkeeping without reaching into package-private fields.
func (b *BitMap) NodeStats(i0, i1 uint32) (cnt, nSetAll uint32, ok bool) {
	if b == nil || i0 >= uint32(len(b.l0.L1)) {
		return 0, 0, false
	}
	l1 := b.l0.L1[i0]
	if l1 == nil || i1 >= uint32(len(l1.L2)) {
		return 0, 0, false
	}
	s := l1.L2[i1]
	if s.ptr == nil {
		return 0, 0, false
	}
	return s.ptr.cnt, s.ptr.nSetAll, true
}

// String returns a one-line summary of the bitmap's global state, in the
// same spirit as the original library's statistics accessors.
func (b *BitMap) String() string {
	if b == nil {
		return "bitmap(nil)"
	}
	return fmt.Sprintf("bitmap(maxPos=%d, flip=%t, num=%d, nL1=%d, nL2=%d, strides=(%d,%d,%d))",
		b.maxPos, b.flip, b.l0.Num, b.l0.NL1, b.l0.NL2, b.l0.S0, b.l0.S1, b.l0.S2)
}
