package trie

import "github.com/hariguchi/mtrie3l/internal/nodes"

// l2Node is the level-2 node shape for Core A: a count of non-nil leaves
// plus the leaf array itself.
type l2Node struct {
	cnt  uint32
	leaf []any
}

// Trie is a three-level multibit trie. The zero value is not usable;
// construct one with New.
type Trie struct {
	l0 *nodes.L0[*l2Node]

	// failNextL2Alloc, when set, is consulted before allocating an L2
	// node; if it returns true the allocation is treated as having
	// failed with ErrNoMem. This lets tests exercise the L1-rollback
	// path on L2 allocation failure without needing to exhaust real
	// memory.
	failNextL2Alloc func() bool
}

// New allocates a trie with the given stride lengths. Each stride must be
// at least 1 and s0+s1+s2 must not exceed 32.
func New(s0, s1, s2 uint8) (*Trie, error) {
	l0, err := nodes.NewL0[*l2Node](s0, s1, s2)
	if err != nil {
		return nil, ErrStrideLen
	}
	return &Trie{l0: l0}, nil
}

// Free releases the trie. It fails with ErrTable unless the trie is
// empty (NumEntries() == 0); the caller must empty it via DeleteAll
// first.
func (t *Trie) Free() error {
	if t == nil {
		return ErrGeneric
	}
	if t.l0.Num != 0 {
		return ErrTable
	}
	return nil
}

// MaxIndex returns the largest representable index, 2^S - 1.
func (t *Trie) MaxIndex() uint32 {
	if t == nil {
		return 0
	}
	if t.l0.Slen >= 32 {
		return ^uint32(0)
	}
	return (uint32(1) << t.l0.Slen) - 1
}

// NumEntries returns the total number of populated leaves.
func (t *Trie) NumEntries() uint32 {
	if t == nil {
		return 0
	}
	return t.l0.Num
}

// NumL1 returns the number of live level-1 nodes.
func (t *Trie) NumL1() uint32 {
	if t == nil {
		return 0
	}
	return t.l0.NL1
}

// NumL2 returns the number of live level-2 nodes.
func (t *Trie) NumL2() uint32 {
	if t == nil {
		return 0
	}
	return t.l0.NL2
}

// L0NodeSize, L1NodeSize and L2NodeSize report the nominal per-node byte
// footprint at each level, for accounting/diagnostics.
func (t *Trie) L0NodeSize() uint32 { return uint32(40 + (1<<t.l0.S0)*8) }
func (t *Trie) L1NodeSize() uint32 { return uint32(8 + (1<<t.l0.S1)*8) }
func (t *Trie) L2NodeSize() uint32 {
	return uint32(nodes.L2NodeSize(t.l0.S2, 16)) // any is a 16-byte interface value
}

// NBytesL0, NBytesL1, NBytesL2 report total live bytes accounted for at
// each level across the whole trie.
func (t *Trie) NBytesL0() uint32 { return uint32(t.l0.Mem.Bytes(0)) }
func (t *Trie) NBytesL1() uint32 { return uint32(t.l0.Mem.Bytes(1)) }
func (t *Trie) NBytesL2() uint32 { return uint32(t.l0.Mem.Bytes(2)) }

func assembleIndex(i0, i1, i2 uint32, s1, s2 uint8) uint32 {
	return (i0 << (s1 + s2)) | (i1 << s2) | i2
}
