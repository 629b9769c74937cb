package bitmap

import (
	"github.com/hariguchi/mtrie3l/internal/memstats"
	"github.com/hariguchi/mtrie3l/internal/nodes"
)

// IsSet reports whether bit pos is set, honoring the flip flag: the
// physical bit is read and then XORed with flip.
func (b *BitMap) IsSet(pos uint32) (bool, error) {
	if b == nil {
		return false, ErrGeneric
	}
	if pos > b.maxPos {
		return false, ErrBitPos
	}
	return b.physicalIsSet(pos) != b.flip, nil
}

func (b *BitMap) physicalIsSet(pos uint32) bool {
	l0 := b.l0
	i0, i1, i2 := nodes.Decompose(wordIndex(pos), l0.S0, l0.S1, l0.S2)
	l1 := l0.L1[i0]
	if l1 == nil {
		return false
	}
	s := l1.L2[i1]
	if s.saturated {
		return true
	}
	if s.ptr == nil {
		return false
	}
	return s.ptr.words[i2]&(uint32(1)<<bitInWord(pos)) != 0
}

// Set marks pos as logically set. With flip clear this sets the physical
// bit; with flip set, the logical "set" is achieved by physically
// clearing the bit (since reads are XORed with flip).
func (b *BitMap) Set(pos uint32) error {
	if b == nil {
		return ErrGeneric
	}
	if pos > b.maxPos {
		return ErrBitPos
	}
	if b.flip {
		return b.physicalReset(pos)
	}
	return b.physicalSet(pos)
}

// Reset marks pos as logically clear, symmetric to Set.
func (b *BitMap) Reset(pos uint32) error {
	if b == nil {
		return ErrGeneric
	}
	if pos > b.maxPos {
		return ErrBitPos
	}
	if b.flip {
		return b.physicalSet(pos)
	}
	return b.physicalReset(pos)
}

func (b *BitMap) physicalSet(bitPos uint32) error {
	l0 := b.l0
	idx := wordIndex(bitPos)
	i0, i1, i2 := nodes.Decompose(idx, l0.S0, l0.S1, l0.S2)
	p := bitInWord(bitPos)
	return b.setL2ent(i0, i1, i2, p, p)
}

func (b *BitMap) physicalReset(bitPos uint32) error {
	l0 := b.l0
	idx := wordIndex(bitPos)
	i0, i1, i2 := nodes.Decompose(idx, l0.S0, l0.S1, l0.S2)
	p := bitInWord(bitPos)
	return b.resetL2ent(i0, i1, i2, p, p)
}

// setL2ent sets bits [pos, endPos] (inclusive, both within word i2 of the
// L2 node addressed by (i0, i1)) to 1, allocating L1/L2 nodes as needed
// and promoting the slot to saturated when the node becomes all-ones.
func (b *BitMap) setL2ent(i0, i1, i2 uint32, pos, endPos uint8) error {
	l0 := b.l0
	bits := setBits32(pos, endPos)

	l1 := l0.L1[i0]
	allocatedL1 := false
	if l1 != nil {
		if l1.L2[i1].saturated {
			return nil // already set
		}
	} else {
		if b.failNextL1Alloc != nil && b.failNextL1Alloc() {
			return ErrNoMem
		}
		l1 = nodes.NewL1(l0)
		l0.L1[i0] = l1
		l0.NL1++
		allocatedL1 = true
	}

	slotVal := l1.L2[i1]
	if slotVal.ptr != nil {
		l2 := slotVal.ptr
		word := l2.words[i2]
		if word&bits == bits {
			return nil // already set
		}
		if word == 0 {
			l2.cnt++
			l0.Num++
		}
		word |= bits
		if word == ^uint32(0) {
			l2.nSetAll++
		}
		if l2.nSetAll == b.l2Elems() {
			// compression: every word in this L2 is all-ones.
			l0.Mem.Free(memstats.TagL2, nodes.L2NodeSize(l0.S2, 4))
			l1.L2[i1] = slot{saturated: true}
			l0.NL2--
		} else {
			l2.words[i2] = word
		}
		return nil
	}

	// slot is empty: allocate a fresh L2 node.
	if b.failNextL2Alloc != nil && b.failNextL2Alloc() {
		if allocatedL1 {
			l0.L1[i0] = nil
			l0.NL1--
			nodes.FreeL1(l0, l1)
		}
		return ErrNoMem
	}
	l2 := &l2Node{words: make([]uint32, b.l2Elems())}
	l0.Mem.Alloc(memstats.TagL2, nodes.L2NodeSize(l0.S2, 4))
	l1.L2[i1] = slot{ptr: l2}
	l1.Cnt++
	l0.NL2++
	l2.words[i2] = bits
	if bits == ^uint32(0) {
		l2.nSetAll++
	}
	l2.cnt++
	l0.Num++
	return nil
}

// resetL2ent clears bits [pos, endPos] from word i2 of the L2 node
// addressed by (i0, i1), uncompressing a saturated slot first if needed.
func (b *BitMap) resetL2ent(i0, i1, i2 uint32, pos, endPos uint8) error {
	l0 := b.l0
	bits := setBits32(pos, endPos)

	l1 := l0.L1[i0]
	if l1 == nil {
		return nil // already unset
	}
	slotVal := l1.L2[i1]
	var l2 *l2Node
	if slotVal.ptr != nil {
		l2 = slotVal.ptr
	} else if !slotVal.saturated {
		return nil // already unset
	} else {
		// uncompress: materialize a fresh all-ones L2 node.
		if b.failNextL2Alloc != nil && b.failNextL2Alloc() {
			return ErrNoMem
		}
		l2 = &l2Node{words: make([]uint32, b.l2Elems())}
		for w := range l2.words {
			l2.words[w] = ^uint32(0)
		}
		l2.cnt = b.l2Elems()
		l2.nSetAll = b.l2Elems()
		l0.Mem.Alloc(memstats.TagL2, nodes.L2NodeSize(l0.S2, 4))
		l1.L2[i1] = slot{ptr: l2}
		l0.NL2++
	}

	word := l2.words[i2]
	if bits&^word == bits {
		return nil // already unset
	}
	if word == ^uint32(0) {
		l2.nSetAll--
	}
	word &^= bits
	if word == 0 {
		l2.cnt--
		l0.Num--
	}
	l2.words[i2] = word

	if l2.cnt == 0 {
		l0.Mem.Free(memstats.TagL2, nodes.L2NodeSize(l0.S2, 4))
		l1.L2[i1] = slot{}
		l1.Cnt--
		l0.NL2--
		if l1.Cnt == 0 {
			nodes.FreeL1(l0, l1)
			l0.L1[i0] = nil
			l0.NL1--
		}
	}
	return nil
}
