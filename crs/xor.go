package crs

import "encoding/binary"

// Buffer XOR primitives. n is always a multiple of 8 when called from this
// package's own algorithms; the byte-tail switch exists so the primitives
// are still correct for arbitrary n, mirroring the original MemXOR/MemSwap
// split between a bulk 8-byte-word loop and a tail switch.

// xorInto computes dst ^= a over the first n bytes of each.
func xorInto(dst, a []byte, n int) {
	i := 0
	for ; i+8 <= n; i += 8 {
		d := binary.LittleEndian.Uint64(dst[i:])
		s := binary.LittleEndian.Uint64(a[i:])
		binary.LittleEndian.PutUint64(dst[i:], d^s)
	}
	for ; i < n; i++ {
		dst[i] ^= a[i]
	}
}

// xorSet computes dst = a ^ b over the first n bytes of each.
func xorSet(dst, a, b []byte, n int) {
	i := 0
	for ; i+8 <= n; i += 8 {
		x := binary.LittleEndian.Uint64(a[i:])
		y := binary.LittleEndian.Uint64(b[i:])
		binary.LittleEndian.PutUint64(dst[i:], x^y)
	}
	for ; i < n; i++ {
		dst[i] = a[i] ^ b[i]
	}
}

// xorAdd computes dst ^= a ^ b over the first n bytes of each.
func xorAdd(dst, a, b []byte, n int) {
	i := 0
	for ; i+8 <= n; i += 8 {
		d := binary.LittleEndian.Uint64(dst[i:])
		x := binary.LittleEndian.Uint64(a[i:])
		y := binary.LittleEndian.Uint64(b[i:])
		binary.LittleEndian.PutUint64(dst[i:], d^x^y)
	}
	for ; i < n; i++ {
		dst[i] ^= a[i] ^ b[i]
	}
}

// swapBytes exchanges the first n bytes of a and b in place.
func swapBytes(a, b []byte, n int) {
	i := 0
	for ; i+8 <= n; i += 8 {
		x := binary.LittleEndian.Uint64(a[i:])
		y := binary.LittleEndian.Uint64(b[i:])
		binary.LittleEndian.PutUint64(a[i:], y)
		binary.LittleEndian.PutUint64(b[i:], x)
	}
	for ; i < n; i++ {
		a[i], b[i] = b[i], a[i]
	}
}
