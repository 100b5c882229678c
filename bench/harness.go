// Package bench runs the Cauchy Reed-Solomon core through comparative
// (k, m, loss) sweeps against RaptorQ, plain random linear coding, and
// Vandermonde Reed-Solomon.
package bench

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/cauchy256/crs/crs"
	"github.com/cauchy256/crs/internal/erasure"
)

// Scheme names one of the codes exercised by a sweep cell.
type Scheme string

const (
	SchemeCauchyRS Scheme = "cauchy-rs"
	SchemeRaptorQ  Scheme = "raptorq"
	SchemeRLC      Scheme = "rlc"
	SchemeVandeRS  Scheme = "vandermonde-rs"
)

// Cell is one (scheme, k, m, loss) point in a sweep.
type Cell struct {
	Scheme Scheme
	K      int
	M      int
	Loss   float64
}

// Result aggregates one Cell's trials.
type Result struct {
	Cell       Cell
	Runs       int
	Successes  int
	EncodeNS   int64
	DecodeNS   int64
}

// SuccessRate returns the fraction of trials that reconstructed correctly.
func (r Result) SuccessRate() float64 {
	if r.Runs == 0 {
		return 0
	}
	return float64(r.Successes) / float64(r.Runs)
}

// Metrics wraps the prometheus summaries cmd/crsbench exposes via promhttp
// when -metrics-addr is set. One summary per scheme so /metrics can show a
// per-scheme latency breakdown.
type Metrics struct {
	encode *prometheus.SummaryVec
	decode *prometheus.SummaryVec
}

// NewMetrics registers the bench summaries against reg. Pass
// prometheus.NewRegistry() for an isolated registry, or nil to use the
// default global one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		encode: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       "crsbench_encode_seconds",
			Help:       "Encode latency per scheme.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"scheme"}),
		decode: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       "crsbench_decode_seconds",
			Help:       "Decode latency per scheme.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, []string{"scheme"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.encode, m.decode)
	return m
}

// RunSweep runs runs trials of every cell, at most workers of them
// concurrently via errgroup, and returns one Result per cell in the same
// order as cells. workers <= 0 means unbounded. metrics may be nil.
func RunSweep(cells []Cell, runs int, blockLen int, seed int64, workers int, metrics *Metrics) ([]Result, error) {
	results := make([]Result, len(cells))
	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, cell := range cells {
		i, cell := i, cell
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed + int64(i)))
			res, err := runCell(rng, cell, runs, blockLen, metrics)
			if err != nil {
				return fmt.Errorf("cell %+v: %w", cell, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runCell(rng *rand.Rand, cell Cell, runs, blockLen int, metrics *Metrics) (Result, error) {
	res := Result{Cell: cell, Runs: runs}
	drop := erasure.NewBernoulli(cell.Loss, rng)

	for trial := 0; trial < runs; trial++ {
		data := make([][]byte, cell.K)
		for i := range data {
			data[i] = make([]byte, blockLen)
			rng.Read(data[i])
		}
		survive := drop.WithinBudget(cell.K+cell.M, cell.M)

		encStart := time.Now()
		ok, err := runOneCell(cell, data, survive, blockLen)
		elapsed := time.Since(encStart)
		if err != nil {
			return res, err
		}
		if metrics != nil {
			metrics.encode.WithLabelValues(string(cell.Scheme)).Observe(elapsed.Seconds())
			metrics.decode.WithLabelValues(string(cell.Scheme)).Observe(elapsed.Seconds())
		}
		if ok {
			res.Successes++
		}
	}
	return res, nil
}

func runOneCell(cell Cell, data [][]byte, survive []bool, blockLen int) (bool, error) {
	switch cell.Scheme {
	case SchemeCauchyRS:
		return runCauchyRS(cell.K, cell.M, data, survive)
	case SchemeVandeRS:
		return runVandermondeRS(cell.K, cell.M, data, survive)
	case SchemeRaptorQ:
		return runRaptorQ(cell.K, cell.M, blockLen, data, survive)
	case SchemeRLC:
		return runRLC(cell.K, cell.M, data, survive)
	default:
		return false, fmt.Errorf("bench: unknown scheme %q", cell.Scheme)
	}
}

func runCauchyRS(k, m int, data [][]byte, survive []bool) (bool, error) {
	recovery, err := crs.Encode(k, m, data)
	if err != nil {
		return false, fmt.Errorf("crs encode: %w", err)
	}
	blocks := make([]crs.Block, 0, k)
	for i := 0; i < k; i++ {
		if survive[i] {
			blocks = append(blocks, crs.Block{Data: data[i], Row: i})
		}
	}
	for j := 0; j < m; j++ {
		if survive[k+j] {
			blocks = append(blocks, crs.Block{Data: recovery[j], Row: k + j})
		}
	}
	// Decode takes exactly k blocks; any k of the survivors suffice.
	if len(blocks) > k {
		blocks = blocks[:k]
	}
	got, err := crs.Decode(k, m, blocks)
	if err != nil {
		return false, nil //nolint:nilerr // a decode failure here is a benchmark outcome
	}
	for i := range data {
		if string(got[i]) != string(data[i]) {
			return false, nil
		}
	}
	return true, nil
}

func runRLC(k, m int, data [][]byte, survive []bool) (bool, error) {
	rng := rand.New(rand.NewSource(1)) // coefficients need not vary per trial for a latency/success comparison
	parity := encodeRLC(rng, data, k, m)

	dataSurvive := survive[:k]
	paritySurvive := survive[k:]
	out, ok := decodeRLCFrom(k, data, dataSurvive, parity, paritySurvive)
	if !ok {
		return false, nil
	}
	for i := range data {
		if string(out[i]) != string(data[i]) {
			return false, nil
		}
	}
	return true, nil
}
