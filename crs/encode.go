package crs

import "fmt"

// Encode computes m recovery blocks from k equal-length data blocks. Every
// data block must be the same length, and that length must be a
// multiple of 8 — each block is internally split into 8 sub-blocks for the
// bit-slice expansion in bitsliceXorInto/windowedBitsliceXorInto. k+m must
// not exceed 256: that is the largest systematic Cauchy code GF(256) can
// support without CX and CY colliding.
//
// Recovery row 0 is always the plain XOR of every data block — the implicit
// all-ones row that genElement never materializes as a matrix entry. Rows
// 1..m-1 use the Cauchy generator from cauchyMatrix.
func Encode(k, m int, data [][]byte) ([][]byte, error) {
	initGF256()

	blockLen, err := validateBlocks(k, m, data)
	if err != nil {
		return nil, err
	}

	recovery := make([][]byte, m)
	for i := range recovery {
		recovery[i] = make([]byte, blockLen)
	}

	if k == 1 {
		// With one data block there is nothing to combine: every recovery
		// block is a plain replica, and decode's k==1 path reverses this
		// with a plain copy rather than a GF division.
		for y := range recovery {
			copy(recovery[y], data[0])
		}
		return recovery, nil
	}

	copy(recovery[0], data[0])
	for x := 1; x < k; x++ {
		xorInto(recovery[0], data[x], blockLen)
	}
	if m == 1 {
		return recovery, nil
	}

	subbytes := blockLen / 8
	matrix, stride := cauchyMatrix(k, m)

	if m > windowedEncodeMinRecoveryRows {
		scratch := make([]byte, 2*window4Scratch*subbytes)
		for x := 0; x < k; x++ {
			w := buildWindow8(scratch, subbytes, data[x])
			for y := 1; y < m; y++ {
				c := matrix[(y-1)*stride+x]
				windowedBitsliceXorInto(recovery[y], subbytes, w, c)
			}
		}
		return recovery, nil
	}

	for x := 0; x < k; x++ {
		for y := 1; y < m; y++ {
			c := matrix[(y-1)*stride+x]
			bitsliceXorInto(recovery[y], data[x], subbytes, c)
		}
	}
	return recovery, nil
}

// validateBlocks checks the shared preconditions of Encode and Decode's
// input block set and returns the common block length.
func validateBlocks(k, m int, blocks [][]byte) (blockLen int, err error) {
	if k < 1 || m < 1 {
		return 0, fmt.Errorf("%w: k=%d m=%d must both be >= 1", ErrInvalidParameters, k, m)
	}
	if k+m > 256 {
		return 0, fmt.Errorf("%w: k=%d m=%d sums past 256", ErrInvalidParameters, k, m)
	}
	if len(blocks) != k {
		return 0, fmt.Errorf("%w: got %d blocks, want k=%d", ErrInvalidParameters, len(blocks), k)
	}
	blockLen = len(blocks[0])
	if blockLen == 0 || blockLen%8 != 0 {
		return 0, fmt.Errorf("%w: block length %d must be a positive multiple of 8", ErrInvalidParameters, blockLen)
	}
	for _, b := range blocks {
		if len(b) != blockLen {
			return 0, fmt.Errorf("%w: all blocks must share one length, got %d and %d", ErrInvalidParameters, blockLen, len(b))
		}
	}
	return blockLen, nil
}
