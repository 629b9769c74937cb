package bitmap

// strideRow is one entry of the stride-selection table: three stride
// lengths for a word-index trie whose total addressable bit range is
// 2^(s0+s1+s2+5).
type strideRow struct {
	s0, s1, s2 uint8
}

// strides is the fixed 18-row table from the original bitmap library,
// each row covering bit positions up to 2^(row+12)-1.
var strides = [18]strideRow{
	{3, 2, 2}, // 0: index  7 bits, bit-pos 12 bits
	{4, 2, 2}, // 1: index  8 bits, bit-pos 13 bits
	{4, 3, 2}, // 2: index  9 bits, bit-pos 14 bits
	{4, 3, 3}, // 3: index 10 bits, bit-pos 15 bits
	{4, 4, 3}, // 4: index 11 bits, bit-pos 16 bits
	{5, 4, 3}, // 5: index 12 bits, bit-pos 17 bits
	{5, 4, 4}, // 6: index 13 bits, bit-pos 18 bits
	{5, 5, 4}, // 7: index 14 bits, bit-pos 19 bits
	{5, 5, 5}, // 8: index 15 bits, bit-pos 20 bits
	{6, 5, 5}, // 9: index 16 bits, bit-pos 21 bits
	{6, 6, 5}, // 10: index 17 bits, bit-pos 22 bits
	{6, 6, 6}, // 11: index 18 bits, bit-pos 23 bits
	{7, 6, 6}, // 12: index 19 bits, bit-pos 24 bits
	{7, 7, 6}, // 13: index 20 bits, bit-pos 25 bits
	{7, 7, 7}, // 14: index 21 bits, bit-pos 26 bits
	{8, 7, 7}, // 15: index 22 bits, bit-pos 27 bits
	{8, 8, 7}, // 16: index 23 bits, bit-pos 28 bits
	{8, 8, 8}, // 17: index 24 bits, bit-pos 29 bits
}

const maxBits = 29

// selectStrides validates maxPos against the table's ceiling and returns
// the stride row to build the node tree with.
//
// The original library's row-selection scan walks the table shifting a
// comparison mask on every iteration but never advances its row index, so
// it always exits on the last row regardless of which row the mask test
// would have picked — every bitmap the library ever builds uses row 17,
// {8,8,8}, no matter how small maxPos is. Every worked example in this
// package's tests (node addresses, word values, node counts) is only
// reproducible under that row, so the selection below keeps the row the
// original always produced rather than the per-size mapping its own
// header comment describes.
func selectStrides(maxPos uint32) (strideRow, error) {
	if maxPos >= 1<<maxBits {
		return strideRow{}, ErrIndex
	}
	return strides[len(strides)-1], nil
}
