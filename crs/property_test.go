package crs

import (
	"bytes"
	"math/rand"
	"testing"
)

func randomBlocks(rng *rand.Rand, k, blockLen int) [][]byte {
	data := make([][]byte, k)
	for i := range data {
		data[i] = make([]byte, blockLen)
		rng.Read(data[i])
	}
	return data
}

// eraseAny drops exactly m of the k+m encoded blocks (chosen by rng) and
// returns the surviving k as Decode input.
func eraseAny(rng *rand.Rand, data, recovery [][]byte, k, m int) []Block {
	k_m := k + m
	perm := rng.Perm(k_m)
	survive := perm[:k]

	out := make([]Block, 0, k)
	for _, row := range survive {
		if row < k {
			out = append(out, Block{Data: data[row], Row: row})
		} else {
			y := row - k
			out = append(out, Block{Data: recovery[y], Row: row})
		}
	}
	return out
}

func assertRoundTrip(t *testing.T, rng *rand.Rand, k, m, blockLen int) {
	t.Helper()
	data := randomBlocks(rng, k, blockLen)
	recovery, err := Encode(k, m, data)
	if err != nil {
		t.Fatalf("Encode(k=%d,m=%d): %v", k, m, err)
	}
	if len(recovery) != m {
		t.Fatalf("Encode produced %d recovery blocks, want %d", len(recovery), m)
	}

	survivors := eraseAny(rng, data, recovery, k, m)
	got, err := Decode(k, m, survivors)
	if err != nil {
		t.Fatalf("Decode(k=%d,m=%d): %v", k, m, err)
	}
	for i := range data {
		if !bytes.Equal(got[i], data[i]) {
			t.Fatalf("k=%d m=%d: block %d mismatch after decode", k, m, i)
		}
	}
}

func TestRoundTripAcrossShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(1234))
	shapes := []struct{ k, m int }{
		{1, 1}, {1, 5}, {2, 1}, {3, 1},
		{4, 2}, {5, 3}, {8, 4}, {10, 6}, {12, 9}, {20, 3},
	}
	for _, s := range shapes {
		for trial := 0; trial < 3; trial++ {
			assertRoundTrip(t, rng, s.k, s.m, 64)
		}
	}
}

func TestRoundTripVariousBlockLengths(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for _, blockLen := range []int{8, 16, 24, 256, 4096} {
		assertRoundTrip(t, rng, 6, 4, blockLen)
	}
}

func TestDecodeWithNoErasuresReturnsOriginals(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	k, m, blockLen := 5, 3, 32
	data := randomBlocks(rng, k, blockLen)
	if _, err := Encode(k, m, data); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	blocks := make([]Block, k)
	for i := range data {
		blocks[i] = Block{Data: data[i], Row: i}
	}
	got, err := Decode(k, m, blocks)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := range data {
		if !bytes.Equal(got[i], data[i]) {
			t.Fatalf("block %d mismatch", i)
		}
	}
}

func TestEncodeRejectsMismatchedLengths(t *testing.T) {
	data := [][]byte{make([]byte, 16), make([]byte, 24)}
	if _, err := Encode(2, 2, data); err == nil {
		t.Fatal("expected an error for mismatched block lengths")
	}
}

func TestEncodeRejectsNonMultipleOfEight(t *testing.T) {
	data := [][]byte{make([]byte, 10)}
	if _, err := Encode(1, 1, data); err == nil {
		t.Fatal("expected an error for a block length not a multiple of 8")
	}
}

func TestDecodeRejectsDuplicateRows(t *testing.T) {
	blocks := []Block{
		{Data: make([]byte, 8), Row: 0},
		{Data: make([]byte, 8), Row: 0},
	}
	if _, err := Decode(2, 2, blocks); err == nil {
		t.Fatal("expected an error for duplicate row ids")
	}
}

// TestEncodeIsLinear checks encode(P) ^ encode(Q) == encode(P ^ Q) for every
// recovery block, byte-wise, since every step of encoding (XOR row, bit-slice
// expansion, windowed expansion) is linear over GF(2^8) treated as a vector
// space over GF(2).
func TestEncodeIsLinear(t *testing.T) {
	rng := rand.New(rand.NewSource(4242))
	shapes := []struct{ k, m int }{{1, 3}, {2, 1}, {4, 2}, {5, 6}, {8, 9}}
	for _, s := range shapes {
		blockLen := 32
		p := randomBlocks(rng, s.k, blockLen)
		q := randomBlocks(rng, s.k, blockLen)
		pq := make([][]byte, s.k)
		for i := range pq {
			pq[i] = make([]byte, blockLen)
			xorSet(pq[i], p[i], q[i], blockLen)
		}

		encP, err := Encode(s.k, s.m, p)
		if err != nil {
			t.Fatalf("k=%d m=%d: Encode(P): %v", s.k, s.m, err)
		}
		encQ, err := Encode(s.k, s.m, q)
		if err != nil {
			t.Fatalf("k=%d m=%d: Encode(Q): %v", s.k, s.m, err)
		}
		encPQ, err := Encode(s.k, s.m, pq)
		if err != nil {
			t.Fatalf("k=%d m=%d: Encode(P^Q): %v", s.k, s.m, err)
		}

		for y := 0; y < s.m; y++ {
			want := make([]byte, blockLen)
			xorSet(want, encP[y], encQ[y], blockLen)
			if !bytes.Equal(want, encPQ[y]) {
				t.Fatalf("k=%d m=%d: recovery row %d: encode(P)^encode(Q) != encode(P^Q)", s.k, s.m, y)
			}
		}
	}
}

// TestEncodeFirstRecoveryRowIsXOR checks recovery[0] == d_0^d_1^...^d_{k-1}
// directly, independent of whatever Decode does with that row.
func TestEncodeFirstRecoveryRowIsXOR(t *testing.T) {
	rng := rand.New(rand.NewSource(55))
	for _, k := range []int{1, 2, 3, 7, 16} {
		blockLen := 24
		data := randomBlocks(rng, k, blockLen)
		recovery, err := Encode(k, 2, data)
		if err != nil {
			t.Fatalf("k=%d: Encode: %v", k, err)
		}
		want := make([]byte, blockLen)
		for _, d := range data {
			xorInto(want, d, blockLen)
		}
		if !bytes.Equal(want, recovery[0]) {
			t.Fatalf("k=%d: recovery[0] = %x, want XOR of all data blocks = %x", k, recovery[0], want)
		}
	}
}

// TestDecodeIsOrderIndependent checks that permuting the surviving block
// descriptors does not change Decode's output.
func TestDecodeIsOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(321))
	const k, m, blockLen = 9, 5, 16
	data := randomBlocks(rng, k, blockLen)
	recovery, err := Encode(k, m, data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	survivors := eraseAny(rng, data, recovery, k, m)

	base, err := Decode(k, m, survivors)
	if err != nil {
		t.Fatalf("Decode (base order): %v", err)
	}

	for trial := 0; trial < 5; trial++ {
		shuffled := append([]Block(nil), survivors...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got, err := Decode(k, m, shuffled)
		if err != nil {
			t.Fatalf("trial %d: Decode (shuffled order): %v", trial, err)
		}
		for i := range base {
			if !bytes.Equal(base[i], got[i]) {
				t.Fatalf("trial %d: block %d differs between orderings", trial, i)
			}
		}
	}
}

func TestEncodeRejectsZeroK(t *testing.T) {
	if _, err := Encode(0, 2, nil); err == nil {
		t.Fatal("expected an error for k=0")
	}
}

func TestEncodeRejectsZeroM(t *testing.T) {
	data := [][]byte{make([]byte, 8)}
	if _, err := Encode(1, 0, data); err == nil {
		t.Fatal("expected an error for m=0")
	}
}

func TestEncodeRejectsKPlusMOverflow(t *testing.T) {
	data := make([][]byte, 200)
	for i := range data {
		data[i] = make([]byte, 8)
	}
	if _, err := Encode(200, 100, data); err == nil {
		t.Fatal("expected an error for k+m > 256")
	}
}

func TestDecodeRejectsZeroK(t *testing.T) {
	if _, err := Decode(0, 2, nil); err == nil {
		t.Fatal("expected an error for k=0")
	}
}

func TestDecodeRejectsZeroM(t *testing.T) {
	blocks := []Block{{Data: make([]byte, 8), Row: 0}}
	if _, err := Decode(1, 0, blocks); err == nil {
		t.Fatal("expected an error for m=0")
	}
}

func TestDecodeRejectsKPlusMOverflow(t *testing.T) {
	blocks := make([]Block, 200)
	for i := range blocks {
		blocks[i] = Block{Data: make([]byte, 8), Row: i}
	}
	if _, err := Decode(200, 100, blocks); err == nil {
		t.Fatal("expected an error for k+m > 256")
	}
}
