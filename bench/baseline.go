package bench

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// runVandermondeRS runs one (k, m) trial through klauspost/reedsolomon's
// Vandermonde-matrix Reed-Solomon implementation, dropping the same row
// pattern a Cauchy trial would see, and reports whether the k data shards
// reconstructed byte-for-byte.
func runVandermondeRS(k, m int, data [][]byte, survive []bool) (ok bool, err error) {
	enc, err := reedsolomon.New(k, m)
	if err != nil {
		return false, fmt.Errorf("bench: reedsolomon.New: %w", err)
	}

	shards := make([][]byte, k+m)
	for i := 0; i < k; i++ {
		shards[i] = append([]byte(nil), data[i]...)
	}
	for i := k; i < k+m; i++ {
		shards[i] = make([]byte, len(data[0]))
	}
	if err := enc.Encode(shards); err != nil {
		return false, fmt.Errorf("bench: reedsolomon encode: %w", err)
	}

	for i, alive := range survive {
		if !alive {
			shards[i] = nil
		}
	}
	if err := enc.ReconstructData(shards); err != nil {
		return false, nil //nolint:nilerr // a reconstruction failure is a benchmark result, not a tool error
	}

	for i := 0; i < k; i++ {
		if shards[i] == nil || string(shards[i]) != string(data[i]) {
			return false, nil
		}
	}
	return true, nil
}
