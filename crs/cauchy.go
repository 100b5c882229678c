package crs

import "sync"

// Cauchy generator matrix provider.
//
// Conceptually the generator is G[y][x] = 1/(CX[x] ^ CY[y]) for recovery row
// y in [1, m) and data column x in [0, k). CX[0] = 1 and CY[0] = 0 are the
// implicit elements behind row 0 — the all-ones XOR row, which this package
// never materializes as matrix entries (it is realized directly as bulk XOR
// in Encode/Decode). Only rows 1..m-1 are ever stored.
//
// CX and CY are fixed, disjoint, nonzero-overlapping-free sequences derived
// from a single canonical ordering of GF(256): cxySeq lists every byte value
// except 0 and 1, ascending. CX borrows from the front of that list, CY from
// the back, so for any valid (k, m) with k+m <= 256 the k-1 columns CX needs
// and the m-1 rows CY needs never collide — this is what the original
// library's tuned, Hamming-weight-minimized X[]/Y[] tables did with hand
// picked constants; this package picks a plain deterministic split instead,
// trading the original's "fewer set bits" tuning for a simpler generator
// while keeping the same invertibility guarantee.
var cxySeq = func() [254]byte {
	var seq [254]byte
	v := byte(2)
	for i := range seq {
		seq[i] = v
		v++
	}
	return seq
}()

// cx returns the implicit-prefixed CX sequence element at column x (0-based,
// x in [0, k)): CX[0] = 1, CX[x] = cxySeq[x-1] for x >= 1.
func cx(x int) byte {
	if x == 0 {
		return 1
	}
	return cxySeq[x-1]
}

// cy returns the implicit-prefixed CY sequence element at recovery row y
// (1-based, y in [1, m)): CY[0] = 0 is never requested here since row 0 is
// handled as bulk XOR; CY[y] = cxySeq[len-y] for y >= 1, read from the back
// of the shared pool so it never collides with any cx(x).
func cy(y int) byte {
	return cxySeq[len(cxySeq)-y]
}

// genElement computes G[y][x] = 1/(CX[x] ^ CY[y]) for y >= 1.
func genElement(x, y int) byte {
	return gfInv(cx(x) ^ cy(y))
}

const (
	precompThreshold = 6 // m in {2..6} use a cached table
	precompMaxM      = precompThreshold
)

// precompTable[m] holds the (m-1) x (256-m) row-major matrix for small m,
// built once on first use and reused for every (k, m) call with that m and
// k <= 256-m. This mirrors the original library returning a pointer into a
// static table for m in {2..6}: the stride here is the maximum possible k
// for that m (256-m), not the caller's actual k, exactly as in the source.
var (
	precompOnce  [precompMaxM + 1]sync.Once
	precompTable [precompMaxM + 1][]byte
)

func precomputedMatrix(m int) (matrix []byte, stride int) {
	stride = 256 - m
	precompOnce[m].Do(func() {
		initGF256()
		rows := m - 1
		tbl := make([]byte, rows*stride)
		for y := 1; y < m; y++ {
			row := tbl[(y-1)*stride : y*stride]
			for x := 0; x < stride; x++ {
				row[x] = genElement(x, y)
			}
		}
		precompTable[m] = tbl
	})
	return precompTable[m], stride
}

// cauchyMatrix returns the (m-1) x k Cauchy generator rows for the given
// (k, m), plus the row stride to use when indexing into it (row y's data
// starts at matrix[(y-1)*stride], and only the first k entries of that row
// are meaningful). Precondition: m > 1 (m == 1's degenerate all-XOR row is
// handled entirely outside this function).
func cauchyMatrix(k, m int) (matrix []byte, stride int) {
	initGF256()
	if m <= precompThreshold {
		return precomputedMatrix(m)
	}

	rows := m - 1
	matrix = make([]byte, rows*k)
	for y := 1; y < m; y++ {
		row := matrix[(y-1)*k : y*k]
		for x := 0; x < k; x++ {
			row[x] = genElement(x, y)
		}
	}
	return matrix, k
}
