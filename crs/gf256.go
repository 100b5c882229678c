package crs

import "sync"

// GF(256) arithmetic over the primitive polynomial 0x187 (x^8+x^7+x^2+x+1).
//
// Tables are process-global and write-once: initGF256 is idempotent and safe
// to call from multiple goroutines, but only because it is fronted by a
// sync.Once. Every exported entry point in this package calls initGF256
// before touching mulTable/divTable/expTable/logTable.

const gfPoly = 0x187

var (
	logTable [256]byte
	expTable [512]byte // extended to 2*255 so exp[log(a)+log(b)] never needs a modulo

	mulTable [65536]byte // mulTable[(y<<8)|x] = x*y
	divTable [65536]byte // divTable[(y<<8)|x] = x/y; row y=0 is all zero

	gfOnce sync.Once
)

func initGF256() {
	gfOnce.Do(buildGF256Tables)
}

func buildGF256Tables() {
	x := 1
	for i := 0; i < 255; i++ {
		expTable[i] = byte(x)
		logTable[byte(x)] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= gfPoly
		}
	}
	for i := 255; i < 512; i++ {
		expTable[i] = expTable[i-255]
	}

	// mulTable/divTable row 0 (y=0) stays zero-initialized.
	for y := 1; y < 256; y++ {
		logY := int(logTable[y])
		logYInv := 255 - logY
		base := y << 8
		for x := 1; x < 256; x++ {
			logX := int(logTable[x])
			mulTable[base|x] = expTable[logX+logY]
			divTable[base|x] = expTable[logX+logYInv]
		}
	}
}

// gfMul returns x*y in GF(256). For repeated multiplication by a fixed
// constant, callers should place the constant in y: the table layout keeps
// one 256-byte subtable per y value, so sequential x reads stay within it.
func gfMul(x, y byte) byte {
	return mulTable[(uint16(y)<<8)|uint16(x)]
}

// gfDiv returns x/y in GF(256). Dividing by zero is never exercised by this
// package's algorithms; per spec it returns zero rather than panicking.
func gfDiv(x, y byte) byte {
	return divTable[(uint16(y)<<8)|uint16(x)]
}

// gfInv returns the multiplicative inverse of a nonzero GF(256) element.
func gfInv(a byte) byte {
	return expTable[255-int(logTable[a])]
}

// Version is the API level this package implements. Init checks the
// caller's expectation against it, the way the original C library's
// cauchy_256_init(expected_version) guarded against ABI skew.
const Version = 1

// Init builds the GF(256) log/exp/multiply/divide tables and verifies the
// caller compiled against the version of this package it expects to run
// against. It is idempotent and safe to call any number of times, including
// concurrently: table construction is fronted by a sync.Once, so repeated
// or concurrent calls are race-free and leave the tables bit-identical.
//
// Encode and Decode call this lazily themselves, so an explicit call is only
// required to front concurrent use with a single deterministic version check,
// or to pay the table-build cost before the first real call.
func Init(expectedVersion int) error {
	if expectedVersion != Version {
		return ErrVersionMismatch
	}
	initGF256()
	return nil
}
