package bench

import "math/rand"

// rlcMul is a self-contained GF(256) multiply table, independent of the
// crs package's: random linear coding is a deliberately distinct scheme in
// this comparison, not a consumer of the Cauchy core's tables.
var rlcMul [256][256]byte

func init() {
	log := [256]int{}
	exp := [512]byte{}
	x := 1
	for i := 0; i < 255; i++ {
		exp[i] = byte(x)
		log[byte(x)] = i
		x <<= 1
		if x&0x100 != 0 {
			x ^= 0x11d
		}
	}
	for i := 255; i < 512; i++ {
		exp[i] = exp[i-255]
	}
	for a := 1; a < 256; a++ {
		for b := 1; b < 256; b++ {
			rlcMul[a][b] = exp[log[byte(a)]+log[byte(b)]]
		}
	}
}

func rlcXor(dst, src []byte) {
	for i := range dst {
		dst[i] ^= src[i]
	}
}

// encodeRLC generates m parity rows over k source rows with random nonzero
// GF(256) coefficients, one coefficient vector per parity row prefixed onto
// its payload so the decoder can rebuild the equations without a side
// channel — the same layout packet_rlc.go used for its coefficient header.
func encodeRLC(rng *rand.Rand, src [][]byte, k, m int) [][]byte {
	l := len(src[0])
	out := make([][]byte, m)
	for j := 0; j < m; j++ {
		coeff := make([]byte, k)
		for i := range coeff {
			for coeff[i] == 0 {
				coeff[i] = byte(rng.Intn(256))
			}
		}
		y := make([]byte, l)
		for i := 0; i < k; i++ {
			for b := 0; b < l; b++ {
				y[b] ^= rlcMul[coeff[i]][src[i][b]]
			}
		}
		pkt := make([]byte, k+l)
		copy(pkt, coeff)
		copy(pkt[k:], y)
		out[j] = pkt
	}
	return out
}

// decodeRLCFrom recovers the k source rows given at least k surviving rows
// between data and parity: surviving data rows are systematic (implicit
// unit coefficient vector), surviving parity rows carry their coefficient
// vector as a k-byte prefix. Gaussian elimination over GF(256) solves for
// whichever data rows were erased.
func decodeRLCFrom(k int, data [][]byte, dataSurvive []bool, parity [][]byte, paritySurvive []bool) ([][]byte, bool) {
	l := 0
	for i, ok := range dataSurvive {
		if ok {
			l = len(data[i])
			break
		}
	}
	if l == 0 {
		for i, ok := range paritySurvive {
			if ok {
				l = len(parity[i]) - k
				break
			}
		}
	}
	if l <= 0 {
		return nil, false
	}

	type row struct {
		vec  []byte
		data []byte
	}
	rows := make([]row, 0, k)
	for i, ok := range dataSurvive {
		if !ok {
			continue
		}
		v := make([]byte, k)
		v[i] = 1
		rows = append(rows, row{vec: v, data: append([]byte(nil), data[i]...)})
	}
	for j, ok := range paritySurvive {
		if !ok {
			continue
		}
		pkt := parity[j]
		v := append([]byte(nil), pkt[:k]...)
		d := append([]byte(nil), pkt[k:k+l]...)
		rows = append(rows, row{vec: v, data: d})
	}
	if len(rows) < k {
		return nil, false
	}

	m := len(rows)
	r := 0
	for c := 0; c < k && r < m; c++ {
		pivot := -1
		for i := r; i < m; i++ {
			if rows[i].vec[c] != 0 {
				pivot = i
				break
			}
		}
		if pivot == -1 {
			continue
		}
		rows[r], rows[pivot] = rows[pivot], rows[r]

		inv := rlcInv(rows[r].vec[c])
		for j := 0; j < k; j++ {
			rows[r].vec[j] = rlcMul[rows[r].vec[j]][inv]
		}
		for b := 0; b < l; b++ {
			rows[r].data[b] = rlcMul[rows[r].data[b]][inv]
		}

		for i := 0; i < m; i++ {
			if i == r {
				continue
			}
			a := rows[i].vec[c]
			if a == 0 {
				continue
			}
			for j := 0; j < k; j++ {
				rows[i].vec[j] ^= rlcMul[a][rows[r].vec[j]]
			}
			tmp := make([]byte, l)
			for b := 0; b < l; b++ {
				tmp[b] = rlcMul[a][rows[r].data[b]]
			}
			rlcXor(rows[i].data, tmp)
		}
		r++
	}
	if r < k {
		return nil, false
	}

	out := make([][]byte, k)
	for i := 0; i < k; i++ {
		found := -1
		for j := range rows {
			ok := true
			for c := 0; c < k; c++ {
				want := byte(0)
				if c == i {
					want = 1
				}
				if rows[j].vec[c] != want {
					ok = false
					break
				}
			}
			if ok {
				found = j
				break
			}
		}
		if found == -1 {
			return nil, false
		}
		out[i] = rows[found].data
	}
	return out, true
}

func rlcInv(a byte) byte {
	for b := 1; b < 256; b++ {
		if rlcMul[a][byte(b)] == 1 {
			return byte(b)
		}
	}
	return 1
}
