// Command crsbench sweeps the Cauchy Reed-Solomon core against RaptorQ,
// random linear coding, and Vandermonde Reed-Solomon across a grid of
// (k, m, loss) cells and writes a JSON report plus a markdown heat-map.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cauchy256/crs/bench"
)

func parseShapes(s string) ([][2]int, error) {
	var shapes [][2]int
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.Split(part, ",")
		if len(kv) != 2 {
			return nil, fmt.Errorf("bad shape %q, want k,m", part)
		}
		k, err := strconv.Atoi(strings.TrimSpace(kv[0]))
		if err != nil {
			return nil, fmt.Errorf("bad k in %q: %w", part, err)
		}
		m, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			return nil, fmt.Errorf("bad m in %q: %w", part, err)
		}
		shapes = append(shapes, [2]int{k, m})
	}
	return shapes, nil
}

func parseLosses(s string) ([]float64, error) {
	var losses []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("bad loss %q: %w", part, err)
		}
		losses = append(losses, f)
	}
	return losses, nil
}

func parseSchemes(s string) []bench.Scheme {
	if s == "all" {
		return []bench.Scheme{bench.SchemeCauchyRS, bench.SchemeVandeRS, bench.SchemeRLC, bench.SchemeRaptorQ}
	}
	var out []bench.Scheme
	for _, part := range strings.Split(s, ",") {
		out = append(out, bench.Scheme(strings.TrimSpace(part)))
	}
	return out
}

func main() {
	var (
		shapesFlag  = flag.String("shapes", "8,4;16,4;32,8", "semicolon-separated k,m shapes")
		lossFlag    = flag.String("loss", "0.05,0.1,0.2,0.4", "comma-separated loss probabilities")
		schemeFlag  = flag.String("scheme", "all", "cauchy-rs,vandermonde-rs,rlc,raptorq or all")
		runs        = flag.Int("runs", 2000, "trials per (scheme,k,m,loss) cell")
		blockBytes  = flag.Int("block-bytes", 1280, "bytes per block, must be a multiple of 8")
		seed        = flag.Int64("seed", 42, "base random seed")
		workers     = flag.Int("workers", runtime.GOMAXPROCS(0), "maximum concurrent sweep cells (<=0 for unbounded)")
		jsonOut     = flag.String("json-out", "", "write the JSON report here (empty skips)")
		mdOut       = flag.String("md-out", "", "write the markdown heat-map here (empty skips)")
		metricsAddr = flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address instead of exiting after the sweep")
	)
	flag.Parse()

	shapes, err := parseShapes(*shapesFlag)
	if err != nil {
		fatalf("%v", err)
	}
	losses, err := parseLosses(*lossFlag)
	if err != nil {
		fatalf("%v", err)
	}
	schemes := parseSchemes(*schemeFlag)

	var cells []bench.Cell
	for _, scheme := range schemes {
		for _, sh := range shapes {
			for _, loss := range losses {
				cells = append(cells, bench.Cell{Scheme: scheme, K: sh[0], M: sh[1], Loss: loss})
			}
		}
	}

	var reg *prometheus.Registry
	var metrics *bench.Metrics
	if *metricsAddr != "" {
		reg = prometheus.NewRegistry()
		metrics = bench.NewMetrics(reg)
	}

	fmt.Fprintf(os.Stderr, "running %d cells x %d runs\n", len(cells), *runs)
	results, err := bench.RunSweep(cells, *runs, *blockBytes, *seed, *workers, metrics)
	if err != nil {
		fatalf("sweep failed: %v", err)
	}

	if *jsonOut != "" {
		b, err := bench.WriteJSON(results)
		if err != nil {
			fatalf("marshal report: %v", err)
		}
		if err := os.WriteFile(*jsonOut, b, 0o644); err != nil {
			fatalf("write json: %v", err)
		}
	}
	if *mdOut != "" {
		if err := os.WriteFile(*mdOut, []byte(bench.WriteHeatmap(results)), 0o644); err != nil {
			fatalf("write markdown: %v", err)
		}
	}

	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		fmt.Fprintf(os.Stderr, "serving metrics on %s\n", *metricsAddr)
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			fatalf("metrics server: %v", err)
		}
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "crsbench: "+format+"\n", args...)
	os.Exit(1)
}
