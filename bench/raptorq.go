package bench

import (
	"errors"

	rqq "github.com/xssnick/raptorq"
)

// runRaptorQ encodes a single (k, blockLen) generation as k*blockLen
// contiguous bytes, drops symbols according to survive, and attempts to
// decode — mirroring the shape of the crs and Vandermonde-RS trials so all
// three land in the same report rows.
func runRaptorQ(k, m int, blockLen int, data [][]byte, survive []bool) (ok bool, err error) {
	payload := make([]byte, 0, k*blockLen)
	for _, d := range data {
		payload = append(payload, d...)
	}

	rq := rqq.NewRaptorQ(uint32(blockLen))
	enc, err := rq.CreateEncoder(payload)
	if err != nil {
		return false, errors.New("bench: raptorq CreateEncoder: " + err.Error())
	}

	n := k + m
	dec, err := rq.CreateDecoder(uint32(len(payload)))
	if err != nil {
		return false, errors.New("bench: raptorq CreateDecoder: " + err.Error())
	}

	for id := 0; id < n; id++ {
		if id < len(survive) && !survive[id] {
			continue
		}
		sym := enc.GenSymbol(uint32(id))
		if done, err := dec.AddSymbol(uint32(id), sym); err != nil {
			return false, nil //nolint:nilerr // a bad symbol is a benchmark outcome, not a tool error
		} else if done {
			break
		}
	}

	done, out, err := dec.Decode()
	if err != nil || !done {
		return false, nil
	}
	if len(out) < len(payload) {
		return false, nil
	}
	for i, d := range data {
		if string(out[i*blockLen:(i+1)*blockLen]) != string(d) {
			return false, nil
		}
	}
	return true, nil
}
