package trie

import (
	"github.com/hariguchi/mtrie3l/internal/memstats"
	"github.com/hariguchi/mtrie3l/internal/nodes"
)

// Insert places leaf at index. It returns ErrIndex if index exceeds
// MaxIndex(), ErrOccupied if index is already populated, or ErrNoMem if
// an L1 or L2 node could not be allocated. On ErrNoMem from an L2
// allocation, any L1 node freshly allocated during this call is rolled
// back before returning, so the trie is left exactly as it was before
// the call.
func (t *Trie) Insert(index uint32, leaf any) error {
	if t == nil {
		return ErrGeneric
	}
	if leaf == nil {
		return ErrGeneric
	}
	l0 := t.l0
	if index > t.MaxIndex() {
		return ErrIndex
	}
	i0, i1, i2 := nodes.Decompose(index, l0.S0, l0.S1, l0.S2)

	l1 := l0.L1[i0]
	allocatedL1 := false
	if l1 == nil {
		l1 = nodes.NewL1(l0)
		l0.L1[i0] = l1
		allocatedL1 = true
	}

	l2 := l1.L2[i1]
	if l2 == nil {
		if t.failNextL2Alloc != nil && t.failNextL2Alloc() {
			t.rollbackL1(i0, l1, allocatedL1)
			return ErrNoMem
		}
		l2 = &l2Node{leaf: make([]any, 1<<l0.S2)}
		l1.L2[i1] = l2
		l1.Cnt++
		l0.NL2++
		l0.Mem.Alloc(memstats.TagL2, nodes.L2NodeSize(l0.S2, 16))
	}

	if allocatedL1 {
		l0.Cnt++
		l0.NL1++
	}

	if l2.leaf[i2] != nil {
		return ErrOccupied
	}

	l2.leaf[i2] = leaf
	l2.cnt++
	l0.Num++
	return nil
}

// rollbackL1 undoes a freshly allocated (still-empty) L1 node after an L2
// allocation failure beneath it.
func (t *Trie) rollbackL1(i0 uint32, l1 *nodes.L1[*l2Node], allocatedL1 bool) {
	if !allocatedL1 {
		return
	}
	t.l0.L1[i0] = nil
	nodes.FreeL1(t.l0, l1)
}

// Find returns the leaf at index, or nil if absent or out of range. It
// never allocates.
func (t *Trie) Find(index uint32) any {
	if t == nil {
		return nil
	}
	l0 := t.l0
	if index > t.MaxIndex() {
		return nil
	}
	i0, i1, i2 := nodes.Decompose(index, l0.S0, l0.S1, l0.S2)
	l1 := l0.L1[i0]
	if l1 == nil {
		return nil
	}
	l2 := l1.L2[i1]
	if l2 == nil {
		return nil
	}
	return l2.leaf[i2]
}

// Delete removes and returns the leaf at index, or nil if absent. Nodes
// that become empty as a result (L2 then, if it was the last child, L1)
// are freed immediately.
func (t *Trie) Delete(index uint32) any {
	if t == nil {
		return nil
	}
	l0 := t.l0
	if index > t.MaxIndex() {
		return nil
	}
	i0, i1, i2 := nodes.Decompose(index, l0.S0, l0.S1, l0.S2)
	l1 := l0.L1[i0]
	if l1 == nil {
		return nil
	}
	l2 := l1.L2[i1]
	if l2 == nil {
		return nil
	}
	leaf := l2.leaf[i2]
	if leaf == nil {
		return nil
	}
	l2.leaf[i2] = nil
	l2.cnt--
	l0.Num--

	if l2.cnt == 0 {
		l0.Mem.Free(memstats.TagL2, nodes.L2NodeSize(l0.S2, 16))
		l1.L2[i1] = nil
		l1.Cnt--
		l0.NL2--

		if l1.Cnt == 0 {
			nodes.FreeL1(l0, l1)
			l0.L1[i0] = nil
			l0.Cnt--
			l0.NL1--
		}
	}
	return leaf
}
