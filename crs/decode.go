package crs

import "fmt"

// Block is one surviving block handed to Decode: either an original data
// block (Row in [0, k)) or a recovery block (Row in [k, k+m), recovery row
// Row-k). The wire package's header carries exactly this Row value.
type Block struct {
	Data []byte
	Row  int
}

// Decode reconstructs all k original data blocks from exactly k surviving
// blocks out of the k+m a matching Encode call produced. The surviving set
// may be any mix of original and recovery blocks; which k of the k+m rows
// survived does not matter, only that exactly k did.
func Decode(k, m int, blocks []Block) ([][]byte, error) {
	initGF256()

	blockLen, originals, recoveries, err := classifyBlocks(k, m, blocks)
	if err != nil {
		return nil, err
	}

	erasures := make([]int, 0, k)
	for x := 0; x < k; x++ {
		if originals[x] == nil {
			erasures = append(erasures, x)
		}
	}

	out := make([][]byte, k)
	for x := 0; x < k; x++ {
		if originals[x] != nil {
			out[x] = append([]byte(nil), originals[x]...)
		}
	}
	if len(erasures) == 0 {
		return out, nil
	}

	if k == 1 {
		// The sole erased block is index 0; every recovery block is an
		// exact replica of it under k==1's replication encoding.
		for y := 0; y < m; y++ {
			if recoveries[y] != nil {
				out[0] = append([]byte(nil), recoveries[y]...)
				return out, nil
			}
		}
		return nil, fmt.Errorf("%w: k=1 decode found no surviving block", ErrInvalidParameters)
	}

	if m == 1 {
		x0 := erasures[0]
		dst := append([]byte(nil), recoveries[0]...)
		others := make([][]byte, 0, k-1)
		for x := 0; x < k; x++ {
			if originals[x] != nil {
				others = append(others, originals[x])
			}
		}
		i := 0
		for ; i+1 < len(others); i += 2 {
			xorAdd(dst, others[i], others[i+1], blockLen)
		}
		if i < len(others) {
			xorInto(dst, others[i], blockLen)
		}
		out[x0] = dst
		return out, nil
	}

	return decodeGeneral(k, m, blockLen, originals, recoveries, erasures, out)
}

// classifyBlocks validates the shared Decode preconditions and sorts the
// input into per-index original and per-row recovery slots. A nil entry in
// either slice means that index/row did not survive.
func classifyBlocks(k, m int, blocks []Block) (blockLen int, originals, recoveries [][]byte, err error) {
	if k < 1 || m < 1 {
		return 0, nil, nil, fmt.Errorf("%w: k=%d m=%d must both be >= 1", ErrInvalidParameters, k, m)
	}
	if k+m > 256 {
		return 0, nil, nil, fmt.Errorf("%w: k=%d m=%d sums past 256", ErrInvalidParameters, k, m)
	}
	if len(blocks) != k {
		return 0, nil, nil, fmt.Errorf("%w: got %d blocks, want k=%d", ErrInvalidParameters, len(blocks), k)
	}

	blockLen = len(blocks[0].Data)
	if blockLen == 0 || blockLen%8 != 0 {
		return 0, nil, nil, fmt.Errorf("%w: block length %d must be a positive multiple of 8", ErrInvalidParameters, blockLen)
	}

	originals = make([][]byte, k)
	recoveries = make([][]byte, m)
	for _, b := range blocks {
		if len(b.Data) != blockLen {
			return 0, nil, nil, fmt.Errorf("%w: all blocks must share one length, got %d and %d", ErrInvalidParameters, blockLen, len(b.Data))
		}
		switch {
		case b.Row < 0 || b.Row >= k+m:
			return 0, nil, nil, fmt.Errorf("%w: row %d out of range for k=%d m=%d", ErrInvalidParameters, b.Row, k, m)
		case b.Row < k:
			if originals[b.Row] != nil {
				return 0, nil, nil, ErrDuplicateRowID
			}
			originals[b.Row] = b.Data
		default:
			y := b.Row - k
			if recoveries[y] != nil {
				return 0, nil, nil, ErrDuplicateRowID
			}
			recoveries[y] = b.Data
		}
	}
	return blockLen, originals, recoveries, nil
}

// decodeGeneral handles k >= 2, m >= 2, and at least one erasure: it
// eliminates the known originals out of each surviving recovery row
// (reducing the system to one equation per erasure), then solves the
// resulting GF(256) linear system with Gaussian elimination and
// back-substitution, reusing the bit-slice and window engines for every
// block-level scale-and-XOR.
func decodeGeneral(k, m, blockLen int, originals, recoveries [][]byte, erasures []int, out [][]byte) ([][]byte, error) {
	subbytes := blockLen / 8
	matrix, stride := cauchyMatrix(k, m)

	recoveryRows := make([]int, 0, len(erasures))
	for y := 0; y < m; y++ {
		if recoveries[y] != nil {
			recoveryRows = append(recoveryRows, y)
		}
	}
	r := len(erasures)
	if len(recoveryRows) != r {
		return nil, fmt.Errorf("%w: %d erasures but %d surviving recovery rows", ErrInvalidParameters, r, len(recoveryRows))
	}

	rowCoeff := func(y, x int) byte {
		if y == 0 {
			return 1
		}
		return matrix[(y-1)*stride+x]
	}

	// Phase 3: eliminate every known original's contribution out of each
	// surviving recovery row, leaving residual[i] = sum over erased columns
	// of rowCoeff(recoveryRows[i], x) * original[x].
	residual := make([][]byte, r)
	for i, y := range recoveryRows {
		residual[i] = append([]byte(nil), recoveries[y]...)
	}
	windowThisPhase := r > windowedDecodeMinErasures
	var scratch []byte
	if windowThisPhase {
		scratch = make([]byte, 2*window4Scratch*subbytes)
	}
	for x := 0; x < k; x++ {
		if originals[x] == nil {
			continue
		}
		if windowThisPhase {
			w := buildWindow8(scratch, subbytes, originals[x])
			for i, y := range recoveryRows {
				if c := rowCoeff(y, x); c != 0 {
					windowedBitsliceXorInto(residual[i], subbytes, w, c)
				}
			}
		} else {
			for i, y := range recoveryRows {
				if c := rowCoeff(y, x); c != 0 {
					bitsliceXorInto(residual[i], originals[x], subbytes, c)
				}
			}
		}
	}

	// Phase 4: the r x r coefficient matrix over the erased columns.
	coef := make([][]byte, r)
	for i, y := range recoveryRows {
		coef[i] = make([]byte, r)
		for j, x := range erasures {
			coef[i][j] = rowCoeff(y, x)
		}
	}

	// Phase 5: forward elimination to upper-triangular form. Pivots are not
	// normalized here; the division by each diagonal entry is deferred to
	// back-substitution.
	for col := 0; col < r; col++ {
		pivot := -1
		for row := col; row < r; row++ {
			if coef[row][col] != 0 {
				pivot = row
				break
			}
		}
		if pivot == -1 {
			return nil, ErrSingularMatrix
		}
		if pivot != col {
			coef[col], coef[pivot] = coef[pivot], coef[col]
			residual[col], residual[pivot] = residual[pivot], residual[col]
		}

		pivotVal := coef[col][col]
		below := r - col - 1
		windowThisStep := below > windowedDecodeMinErasures
		var w window8
		if windowThisStep {
			w = buildWindow8(scratch, subbytes, residual[col])
		}
		for row := col + 1; row < r; row++ {
			if coef[row][col] == 0 {
				continue
			}
			factor := gfDiv(coef[row][col], pivotVal)
			for c := col; c < r; c++ {
				coef[row][c] ^= gfMul(factor, coef[col][c])
			}
			if windowThisStep {
				windowedBitsliceXorInto(residual[row], subbytes, w, factor)
			} else {
				bitsliceXorInto(residual[row], residual[col], subbytes, factor)
			}
		}
	}

	// Phase 6: back-substitution. Solve from the last unknown upward, and
	// as soon as one is solved, eliminate its contribution from every row
	// still waiting to be solved.
	solved := make([][]byte, r)
	for j := r - 1; j >= 0; j-- {
		diag := coef[j][j]
		var u []byte
		if diag == 1 {
			u = residual[j]
		} else {
			u = make([]byte, blockLen)
			bitsliceXorInto(u, residual[j], subbytes, gfInv(diag))
		}
		solved[j] = u

		if j == 0 {
			break
		}
		windowThisStep := j > windowedDecodeMinErasures
		var w window8
		if windowThisStep {
			w = buildWindow8(scratch, subbytes, u)
		}
		for row := 0; row < j; row++ {
			c := coef[row][j]
			if c == 0 {
				continue
			}
			if windowThisStep {
				windowedBitsliceXorInto(residual[row], subbytes, w, c)
			} else {
				bitsliceXorInto(residual[row], u, subbytes, c)
			}
		}
	}

	for j, x := range erasures {
		out[x] = solved[j]
	}
	return out, nil
}
