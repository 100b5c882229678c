package crs

import "testing"

func TestCXCYNeverCollide(t *testing.T) {
	const maxK, maxM = 200, 56 // k+m <= 256
	seen := make(map[byte]int)
	for x := 0; x < maxK; x++ {
		v := cx(x)
		if prev, ok := seen[v]; ok {
			t.Fatalf("cx(%d) = %d collides with earlier use at %d", x, v, prev)
		}
		seen[v] = x
	}
	for y := 1; y < maxM; y++ {
		v := cy(y)
		if prev, ok := seen[v]; ok {
			t.Fatalf("cy(%d) = %d collides with an earlier cx/cy use at %d", y, v, prev)
		}
		seen[v] = -y
	}
}

func TestGenElementNeverZero(t *testing.T) {
	initGF256()
	for y := 1; y < 56; y++ {
		for x := 0; x < 200; x++ {
			if genElement(x, y) == 0 {
				t.Fatalf("genElement(%d,%d) = 0, CX and CY must never collide", x, y)
			}
		}
	}
}

func TestCauchyMatrixPrecomputedAndDynamicAgree(t *testing.T) {
	initGF256()
	k, m := 10, 5
	precomp, precompStride := cauchyMatrix(k, m)
	for y := 1; y < m; y++ {
		for x := 0; x < k; x++ {
			want := genElement(x, y)
			got := precomp[(y-1)*precompStride+x]
			if got != want {
				t.Fatalf("precomputed matrix[%d][%d] = %d, want %d", y, x, got, want)
			}
		}
	}

	m2 := precompThreshold + 1
	dyn, dynStride := cauchyMatrix(k, m2)
	if dynStride != k {
		t.Fatalf("dynamic matrix stride = %d, want k=%d", dynStride, k)
	}
	for y := 1; y < m2; y++ {
		for x := 0; x < k; x++ {
			want := genElement(x, y)
			got := dyn[(y-1)*dynStride+x]
			if got != want {
				t.Fatalf("dynamic matrix[%d][%d] = %d, want %d", y, x, got, want)
			}
		}
	}
}
