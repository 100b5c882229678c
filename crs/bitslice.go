package crs

// Bit-slice expansion. A GF(256) element c expands to an 8x8 binary matrix
// M(c) whose row i is the byte c*2^i (iterated field doubling),
// transposed relative to the conventional bit-sliced layout so that XORing a
// row means XORing one whole sub-block rather than scattering individual
// bits. bitsliceXorInto applies that expansion directly against src/dst laid
// out as 8 contiguous sub-blocks of subbytes each.
func bitsliceXorInto(dst, src []byte, subbytes int, c byte) {
	if c == 1 {
		// M(1) is the identity: row i is 1*2^i, which has exactly bit i set
		// for i in 0..7. XOR the whole 8-sub-block span at once.
		xorInto(dst, src, subbytes*8)
		return
	}

	slice := c
	for bitY := 0; bitY < 8; bitY++ {
		dstSub := dst[bitY*subbytes : (bitY+1)*subbytes]
		for bitX := 0; bitX < 8; bitX++ {
			if slice&(1<<uint(bitX)) != 0 {
				srcSub := src[bitX*subbytes : (bitX+1)*subbytes]
				xorInto(dstSub, srcSub, subbytes)
			}
		}
		if bitY < 7 {
			slice = gfMul(slice, 2)
		}
	}
}

// bitsliceRows materializes the 8 doublings of c as a byte array — row i of
// M(c). Used by windowedBitsliceXorInto, where each row's bit pattern is
// looked up in a window table rather than XOR'd bit by bit.
func bitsliceRows(c byte) (rows [8]byte) {
	slice := c
	for i := 0; i < 8; i++ {
		rows[i] = slice
		if i < 7 {
			slice = gfMul(slice, 2)
		}
	}
	return rows
}
