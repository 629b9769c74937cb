package trie

import (
	"github.com/hariguchi/mtrie3l/internal/memstats"
	"github.com/hariguchi/mtrie3l/internal/nodes"
)

// sentinelHigh is the value FindNext writes to *pIndex when the scan is
// exhausted: 2^S. When S==32 this wraps to 0 in a uint32, an edge case
// inherited from the fact that the index domain then already spans the
// full uint32 range.
func (t *Trie) sentinelHigh() uint32 {
	if t.l0.Slen >= 32 {
		return 0
	}
	return uint32(1) << t.l0.Slen
}

// FindNext returns the leaf at the smallest populated index >= *pIndex,
// writing that index back to *pIndex. If none exists it writes the
// ascending sentinel (2^S) to *pIndex and returns nil. A nil trie or
// pIndex is a no-op returning nil.
func (t *Trie) FindNext(pIndex *uint32) any {
	if t == nil || pIndex == nil {
		return nil
	}
	l0 := t.l0
	if l0.Num == 0 {
		*pIndex = t.sentinelHigh()
		return nil
	}
	start := *pIndex
	if l0.Slen < 32 && start > t.MaxIndex() {
		*pIndex = t.sentinelHigh()
		return nil
	}

	i0, i1, i2 := nodes.Decompose(start, l0.S0, l0.S1, l0.S2)
	remL0 := l0.Cnt
	for ; remL0 > 0 && i0 < uint32(len(l0.L1)); i0++ {
		l1 := l0.L1[i0]
		if l1 == nil {
			i1, i2 = 0, 0
			continue
		}
		remL0--

		remL1 := l1.Cnt
		for ; remL1 > 0 && i1 < uint32(len(l1.L2)); i1++ {
			l2 := l1.L2[i1]
			if l2 == nil {
				i2 = 0
				continue
			}
			remL1--

			remL2 := l2.cnt
			for ; remL2 > 0 && i2 < uint32(len(l2.leaf)); i2++ {
				leaf := l2.leaf[i2]
				if leaf == nil {
					continue
				}
				*pIndex = assembleIndex(i0, i1, i2, l0.S1, l0.S2)
				return leaf
			}
			i2 = 0
		}
		i1 = 0
	}
	*pIndex = t.sentinelHigh()
	return nil
}

// FindPrev is the descending symmetric counterpart of FindNext: it
// returns the leaf at the largest populated index <= *pIndex, writing 0
// to *pIndex on exhaustion.
func (t *Trie) FindPrev(pIndex *uint32) any {
	if t == nil || pIndex == nil {
		return nil
	}
	l0 := t.l0
	if l0.Num == 0 {
		*pIndex = 0
		return nil
	}
	start := *pIndex

	var i0, i1, i2 int64
	maxI0 := int64(len(l0.L1)) - 1
	maxI1 := int64(1<<l0.S1) - 1
	maxI2 := int64(1<<l0.S2) - 1
	if l0.Slen < 32 && start > t.MaxIndex() {
		i0, i1, i2 = maxI0, maxI1, maxI2
	} else {
		a, b, c := nodes.Decompose(start, l0.S0, l0.S1, l0.S2)
		i0, i1, i2 = int64(a), int64(b), int64(c)
	}

	remL0 := l0.Cnt
	for remL0 > 0 && i0 >= 0 {
		l1 := l0.L1[i0]
		if l1 != nil {
			remL0--
			remL1 := l1.Cnt
			for ii1 := i1; remL1 > 0 && ii1 >= 0; ii1-- {
				l2 := l1.L2[ii1]
				if l2 == nil {
					continue
				}
				remL1--
				remL2 := l2.cnt
				topI2 := i2
				if ii1 != i1 {
					topI2 = maxI2
				}
				for ii2 := topI2; remL2 > 0 && ii2 >= 0; ii2-- {
					leaf := l2.leaf[ii2]
					if leaf == nil {
						continue
					}
					*pIndex = assembleIndex(uint32(i0), uint32(ii1), uint32(ii2), l0.S1, l0.S2)
					return leaf
				}
			}
		}
		i0--
		i1, i2 = maxI1, maxI2
	}
	*pIndex = 0
	return nil
}

// Walk calls fn(index, data, leaf) for every populated index in
// ascending order. It never mutates the trie; fn must not free nodes or
// null slots itself.
func (t *Trie) Walk(data any, fn func(index uint32, data any, leaf any)) error {
	if t == nil || fn == nil {
		return ErrGeneric
	}
	l0 := t.l0
	remL0 := l0.Cnt
	for i0 := uint32(0); remL0 > 0 && i0 < uint32(len(l0.L1)); i0++ {
		l1 := l0.L1[i0]
		if l1 == nil {
			continue
		}
		remL0--
		remL1 := l1.Cnt
		for i1 := uint32(0); remL1 > 0 && i1 < uint32(len(l1.L2)); i1++ {
			l2 := l1.L2[i1]
			if l2 == nil {
				continue
			}
			remL1--
			remL2 := l2.cnt
			for i2 := uint32(0); remL2 > 0 && i2 < uint32(len(l2.leaf)); i2++ {
				leaf := l2.leaf[i2]
				if leaf == nil {
					continue
				}
				remL2--
				fn(assembleIndex(i0, i1, i2, l0.S1, l0.S2), data, leaf)
			}
		}
	}
	return nil
}

// DeleteAll walks the trie in ascending order, invoking delFn(index, nil,
// leaf) for every populated index so the caller can release the leaf's
// owned resources, then frees every L1/L2 node and resets the trie to
// empty.
func (t *Trie) DeleteAll(delFn func(index uint32, data any, leaf any)) error {
	if t == nil || delFn == nil {
		return ErrGeneric
	}
	l0 := t.l0
	remL0 := l0.Cnt
	for i0 := uint32(0); remL0 > 0 && i0 < uint32(len(l0.L1)); i0++ {
		l1 := l0.L1[i0]
		if l1 == nil {
			continue
		}
		remL0--
		remL1 := l1.Cnt
		for i1 := uint32(0); remL1 > 0 && i1 < uint32(len(l1.L2)); i1++ {
			l2 := l1.L2[i1]
			if l2 == nil {
				continue
			}
			remL1--
			remL2 := l2.cnt
			for i2 := uint32(0); remL2 > 0 && i2 < uint32(len(l2.leaf)); i2++ {
				leaf := l2.leaf[i2]
				if leaf == nil {
					continue
				}
				remL2--
				delFn(assembleIndex(i0, i1, i2, l0.S1, l0.S2), nil, leaf)
			}
			l0.Mem.Free(memstats.TagL2, nodes.L2NodeSize(l0.S2, 16))
			l0.NL2--
		}
		nodes.FreeL1(l0, l1)
		l0.L1[i0] = nil
		l0.NL1--
	}
	l0.Num = 0
	l0.Cnt = 0
	return nil
}
