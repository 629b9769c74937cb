// Package memstats tracks per-subsystem node allocation counts and byte
// totals. It stands in for the alloc_mem/free_mem accounting hooks that
// the original C library threaded through every node allocation: callers
// that care about memory pressure can read the totals back, and the
// trie accessor methods (NBytesL0, NBytesL1, NBytesL2) are backed
// directly by it.
package memstats

// Tag identifies the node tier an allocation belongs to.
type Tag int

const (
	TagL0 Tag = iota
	TagL1
	TagL2
	numTags
)

// Counters accumulates allocation counts and bytes for one trie or bitmap
// instance. The zero value is ready to use.
type Counters struct {
	count [numTags]uint32
	bytes [numTags]uint64
}

// Alloc records a new node of the given size under tag.
func (c *Counters) Alloc(tag Tag, size uintptr) {
	c.count[tag]++
	c.bytes[tag] += uint64(size)
}

// Free records the release of a node of the given size under tag.
func (c *Counters) Free(tag Tag, size uintptr) {
	if c.count[tag] > 0 {
		c.count[tag]--
	}
	if c.bytes[tag] >= uint64(size) {
		c.bytes[tag] -= uint64(size)
	} else {
		c.bytes[tag] = 0
	}
}

// Count returns the number of live nodes under tag.
func (c *Counters) Count(tag Tag) uint32 { return c.count[tag] }

// Bytes returns the number of live bytes under tag.
func (c *Counters) Bytes(tag Tag) uint64 { return c.bytes[tag] }
