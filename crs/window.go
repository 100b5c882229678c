package crs

// Four-bit window engine. Building the bit-sliced XOR
// contribution of one source sub-block into one destination sub-block costs
// at most one xorInto call; building it from a 4-bit subset of four source
// sub-blocks naively costs up to four. Across many destination rows that
// draw different subsets of the *same* four sub-blocks, most of that work is
// shared: there are only 16 possible subsets. window4 precomputes all 16
// once, so any later subset costs at most one extra xorSet, and most cost
// zero (the weight-0 and weight-1 slots are nil or a direct alias into the
// source, never copied).
//
// window8 pairs two window4 groups — one over the low nibble of a byte
// pattern, one over the high nibble — so any of the 256 patterns a
// bit-matrix row can take reduces to at most two xorInto calls instead of up
// to eight.
type window4 struct {
	slots [16][]byte
}

// buildWindow4 fills slots 1, 2, 4, 8 by aliasing s0..s3 directly (weight-1,
// free) and slot 0 stays nil (weight-0, free). The remaining 11 weight>=2
// slots are built in a fixed ascending order: slot[p] = slot[p with its
// lowest set bit cleared] xor slot[that lowest bit alone]. Both operands on
// the right are always already built because clearing a set bit strictly
// decreases the pattern. scratch must hold at least 11*subbytes bytes.
func buildWindow4(scratch []byte, subbytes int, s0, s1, s2, s3 []byte) window4 {
	var w window4
	w.slots[1] = s0
	w.slots[2] = s1
	w.slots[4] = s2
	w.slots[8] = s3

	next := 0
	for p := 3; p < 16; p++ {
		if p&(p-1) == 0 {
			continue // weight <= 1, already aliased or nil
		}
		lsb := p & (-p)
		rest := p &^ lsb
		dst := scratch[next*subbytes : (next+1)*subbytes]
		next++
		xorSet(dst, w.slots[rest], w.slots[lsb], subbytes)
		w.slots[p] = dst
	}
	return w
}

// window4Scratch is the number of sub-blocks of scratch space buildWindow4
// needs: the 11 composite slots of weight >= 2.
const window4Scratch = 11

type window8 struct {
	low, high window4
}

// buildWindow8 builds the pair of window4 tables over eight contiguous
// source sub-blocks (src[i*subbytes:(i+1)*subbytes] for i in 0..7). scratch
// must hold at least 2*window4Scratch*subbytes bytes.
func buildWindow8(scratch []byte, subbytes int, src []byte) window8 {
	half := window4Scratch * subbytes
	low := buildWindow4(scratch[:half], subbytes,
		src[0*subbytes:1*subbytes], src[1*subbytes:2*subbytes],
		src[2*subbytes:3*subbytes], src[3*subbytes:4*subbytes])
	high := buildWindow4(scratch[half:2*half], subbytes,
		src[4*subbytes:5*subbytes], src[5*subbytes:6*subbytes],
		src[6*subbytes:7*subbytes], src[7*subbytes:8*subbytes])
	return window8{low: low, high: high}
}

// xorRowInto XORs the subset of the eight source sub-blocks selected by
// pattern's bits into dst, at the cost of at most two xorInto calls.
func (w window8) xorRowInto(dst []byte, subbytes int, pattern byte) {
	if lo := w.low.slots[pattern&0x0f]; lo != nil {
		xorInto(dst, lo, subbytes)
	}
	if hi := w.high.slots[pattern>>4]; hi != nil {
		xorInto(dst, hi, subbytes)
	}
}

// windowedBitsliceXorInto is the windowed equivalent of bitsliceXorInto: it
// applies the same 8x8 expansion of c, but draws its eight source sub-blocks
// from a window8 built once and shared across every call that uses the same
// source group — amortizing the cost across every recovery row (encode) or
// every surviving-block row (decode) that touches this group of columns.
func windowedBitsliceXorInto(dst []byte, subbytes int, w window8, c byte) {
	if c == 1 {
		for i := 0; i < 8; i++ {
			w.xorRowInto(dst[i*subbytes:(i+1)*subbytes], subbytes, 1<<uint(i))
		}
		return
	}
	rows := bitsliceRows(c)
	for i := 0; i < 8; i++ {
		w.xorRowInto(dst[i*subbytes:(i+1)*subbytes], subbytes, rows[i])
	}
}

// Windowing only pays for itself once enough rows share a source group to
// amortize the table-build cost; below these counts the plain bitslice path
// in bitslice.go does less total work.
const (
	windowedEncodeMinRecoveryRows = 4 // windowed encode once m > 4
	windowedDecodeMinErasures     = 3 // windowed decode once r > 3
)
