package bitmap

import (
	"github.com/hariguchi/mtrie3l/internal/memstats"
	"github.com/hariguchi/mtrie3l/internal/nodes"
)

// SetBlock sets every bit in [start, end] (inclusive). It rejects end >
// MaxPos() or start > end. On ENOMEM mid-range, the bitmap is left
// partially modified; this is an explicit contract, not a bug (see the
// original library's documented behavior).
func (b *BitMap) SetBlock(start, end uint32) error {
	if b == nil {
		return ErrGeneric
	}
	return b.setResetBlock(start, end, !b.flip)
}

// ResetBlock clears every bit in [start, end] (inclusive), symmetric to
// SetBlock.
func (b *BitMap) ResetBlock(start, end uint32) error {
	if b == nil {
		return ErrGeneric
	}
	return b.setResetBlock(start, end, b.flip)
}

// setResetBlock performs the physical set (isSet=true) or reset
// (isSet=false) of every word-bit in [start, end]. Callers translate the
// logical operation into a physical one via the flip flag before calling
// this.
func (b *BitMap) setResetBlock(start, end uint32, isSet bool) error {
	if end > b.maxPos {
		return ErrBitPos
	}
	if start > end {
		return ErrIndex
	}
	l0 := b.l0
	op := b.resetL2ent
	if isSet {
		op = b.setL2ent
	}

	i0, i1, i2 := nodes.Decompose(wordIndex(start), l0.S0, l0.S1, l0.S2)
	j0, j1, j2 := nodes.Decompose(wordIndex(end), l0.S0, l0.S1, l0.S2)
	pos := bitInWord(start)
	endPos := bitInWord(end)
	l2Max := b.l2Elems() - 1

	// Single L2 node: no whole-node middle range is possible.
	if i0 == j0 && i1 == j1 {
		if i2 == j2 {
			return op(i0, i1, i2, pos, endPos)
		}
		if err := op(i0, i1, i2, pos, 31); err != nil {
			return err
		}
		for k := i2 + 1; k < j2; k++ {
			if err := op(i0, i1, k, 0, 31); err != nil {
				return err
			}
		}
		return op(i0, i1, j2, 0, endPos)
	}

	// First L2 node: finish word i2, then the rest of this node's words.
	if err := op(i0, i1, i2, pos, 31); err != nil {
		return err
	}
	for k := i2 + 1; k <= l2Max; k++ {
		if err := op(i0, i1, k, 0, 31); err != nil {
			return err
		}
	}

	// Whole-node middle range: (i0, i1+1) .. (j0, j1-1), entire L2 spans
	// compressed to/from saturated in one step per L1 slot.
	l1Max := uint32(1<<l0.S1) - 1
	ci0, ci1 := i0, i1
	if ci1 == l1Max {
		ci1 = 0
		ci0++
	} else {
		ci1++
	}
	for ; ci0 <= j0; ci0++ {
		if !isSet && l0.Num == 0 {
			return nil
		}
		l1 := l0.L1[ci0]
		if l1 == nil {
			if !isSet {
				ci1 = 0
				continue
			}
			l1 = nodes.NewL1(l0)
			l0.L1[ci0] = l1
			l0.NL1++
		}
		var hi uint32
		if ci0 == j0 {
			if j1 == 0 {
				break
			}
			hi = j1 - 1
		} else {
			hi = l1Max
		}
		for ; ci1 <= hi; ci1++ {
			s := l1.L2[ci1]
			switch {
			case s.ptr != nil:
				l2 := s.ptr
				if isSet {
					l0.Num += b.l2Elems() - l2.cnt
					l1.L2[ci1] = slot{saturated: true}
				} else {
					l0.Num -= l2.cnt
					l1.L2[ci1] = slot{}
					l1.Cnt--
				}
				l0.Mem.Free(memstats.TagL2, nodes.L2NodeSize(l0.S2, 4))
				l0.NL2--
			case s.saturated:
				if !isSet {
					l0.Num -= b.l2Elems()
					l1.L2[ci1] = slot{}
					l1.Cnt--
				}
			default:
				if isSet {
					l0.Num += b.l2Elems()
					l1.L2[ci1] = slot{saturated: true}
					l1.Cnt++
				}
			}
			if !isSet && l1.Cnt == 0 {
				nodes.FreeL1(l0, l1)
				l0.L1[ci0] = nil
				l0.NL1--
				break
			}
		}
		if ci0 == j0 {
			break
		}
		ci1 = 0
	}

	// Last L2 node, addressed explicitly at (j0, j1): words 0..j2-1, then
	// the partial final word. Using (j0, j1, j2) directly here (rather
	// than whatever the middle loop's counters settled on) sidesteps a
	// stale-index edge case in the reference algorithm when an L1 node
	// fully drains partway through the middle range.
	for k := uint32(0); k < j2; k++ {
		if err := op(j0, j1, k, 0, 31); err != nil {
			return err
		}
	}
	return op(j0, j1, j2, 0, endPos)
}

// SetAll sets every bit in [0, MaxPos()] by freeing all nodes and setting
// the flip flag (so every logically-absent physical bit reads as set).
func (b *BitMap) SetAll() error {
	if b == nil {
		return ErrGeneric
	}
	if err := b.destroyAll(); err != nil {
		return err
	}
	b.flip = true
	return nil
}

// ResetAll clears every bit in [0, MaxPos()] by freeing all nodes and
// clearing the flip flag.
func (b *BitMap) ResetAll() error {
	if b == nil {
		return ErrGeneric
	}
	if err := b.destroyAll(); err != nil {
		return err
	}
	b.flip = false
	return nil
}

// destroyAll frees every live L1/L2 node, nulling every L0 child slot and
// resetting the global counters to zero. Unlike the original library's
// destroy pass (which leaves stale non-null L0 entries behind when used
// outside a full free), this leaves the L0 node's children fully null,
// as required to keep using the bitmap afterward.
func (b *BitMap) destroyAll() error {
	l0 := b.l0
	remaining := l0.NL1 + l0.NL2
	for i0 := range l0.L1 {
		if remaining == 0 {
			break
		}
		l1 := l0.L1[i0]
		if l1 == nil {
			continue
		}
		remL1 := l1.Cnt
		for i1 := 0; remL1 > 0 && i1 < len(l1.L2); i1++ {
			s := l1.L2[i1]
			if s.ptr == nil && !s.saturated {
				continue
			}
			remL1--
			if s.ptr != nil {
				l0.Mem.Free(memstats.TagL2, nodes.L2NodeSize(l0.S2, 4))
			}
			l1.L2[i1] = slot{}
		}
		remaining--
		nodes.FreeL1(l0, l1)
		l0.L1[i0] = nil
	}
	l0.Num = 0
	l0.NL1 = 0
	l0.NL2 = 0
	return nil
}
