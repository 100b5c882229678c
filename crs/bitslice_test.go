package crs

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestBitsliceIdentityIsPlainXor(t *testing.T) {
	subbytes := 16
	src := make([]byte, subbytes*8)
	dst := make([]byte, subbytes*8)
	rand.New(rand.NewSource(1)).Read(src)
	rand.New(rand.NewSource(2)).Read(dst)
	want := append([]byte(nil), dst...)
	xorInto(want, src, len(want))

	bitsliceXorInto(dst, src, subbytes, 1)
	if !bytes.Equal(dst, want) {
		t.Fatalf("bitsliceXorInto with c=1 diverged from a plain xorInto")
	}
}

func TestWindowedMatchesUnwindowed(t *testing.T) {
	initGF256()
	subbytes := 24
	src := make([]byte, subbytes*8)
	rand.New(rand.NewSource(42)).Read(src)

	scratch := make([]byte, 2*window4Scratch*subbytes)
	w := buildWindow8(scratch, subbytes, src)

	for _, c := range []byte{1, 2, 3, 17, 0x81, 0xff} {
		got := make([]byte, subbytes*8)
		want := make([]byte, subbytes*8)
		windowedBitsliceXorInto(got, subbytes, w, c)
		bitsliceXorInto(want, src, subbytes, c)
		if !bytes.Equal(got, want) {
			t.Fatalf("c=%#x: windowed result diverged from unwindowed", c)
		}
	}
}

func TestBitsliceRowsMatchDoubling(t *testing.T) {
	initGF256()
	for _, c := range []byte{1, 5, 200} {
		rows := bitsliceRows(c)
		v := c
		for i := 0; i < 8; i++ {
			if rows[i] != v {
				t.Fatalf("c=%d row %d = %d, want %d", c, i, rows[i], v)
			}
			v = gfMul(v, 2)
		}
	}
}
