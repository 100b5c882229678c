package bench

import (
	"fmt"
	"sort"
	"strings"

	"github.com/francoispqt/gojay"
)

// WriteJSON encodes a sweep's results with gojay rather than encoding/json —
// the sweep can run into the tens of thousands of cells, and gojay's
// streaming encoder avoids building an intermediate []map[string]any for
// each one.
func WriteJSON(results []Result) ([]byte, error) {
	doc := resultSlice(results)
	return gojay.MarshalJSONArray(&doc)
}

type resultSlice []Result

func (s *resultSlice) MarshalJSONArray(enc *gojay.Encoder) {
	for i := range *s {
		enc.AddObject(resultObj{(*s)[i]})
	}
}

func (s *resultSlice) IsNil() bool { return s == nil || len(*s) == 0 }

type resultObj struct{ Result }

func (r resultObj) MarshalJSONObject(enc *gojay.Encoder) {
	enc.AddStringKey("scheme", string(r.Cell.Scheme))
	enc.AddIntKey("k", r.Cell.K)
	enc.AddIntKey("m", r.Cell.M)
	enc.AddFloatKey("loss", r.Cell.Loss)
	enc.AddIntKey("runs", r.Runs)
	enc.AddIntKey("successes", r.Successes)
	enc.AddFloatKey("success_rate", r.SuccessRate())
	enc.AddInt64Key("encode_ns", r.EncodeNS)
	enc.AddInt64Key("decode_ns", r.DecodeNS)
}

func (r resultObj) IsNil() bool { return false }

// WriteHeatmap renders one markdown table per scheme: rows are (k, m) shapes,
// columns are loss rates, cells are the observed success rate.
func WriteHeatmap(results []Result) string {
	type shape struct{ k, m int }
	bySchemeShapeLoss := map[Scheme]map[shape]map[float64]Result{}
	losses := map[float64]bool{}

	for _, r := range results {
		sh := shape{r.Cell.K, r.Cell.M}
		if bySchemeShapeLoss[r.Cell.Scheme] == nil {
			bySchemeShapeLoss[r.Cell.Scheme] = map[shape]map[float64]Result{}
		}
		if bySchemeShapeLoss[r.Cell.Scheme][sh] == nil {
			bySchemeShapeLoss[r.Cell.Scheme][sh] = map[float64]Result{}
		}
		bySchemeShapeLoss[r.Cell.Scheme][sh][r.Cell.Loss] = r
		losses[r.Cell.Loss] = true
	}

	sortedLosses := make([]float64, 0, len(losses))
	for l := range losses {
		sortedLosses = append(sortedLosses, l)
	}
	sort.Float64s(sortedLosses)

	var schemes []Scheme
	for s := range bySchemeShapeLoss {
		schemes = append(schemes, s)
	}
	sort.Slice(schemes, func(i, j int) bool { return schemes[i] < schemes[j] })

	var b strings.Builder
	for _, scheme := range schemes {
		fmt.Fprintf(&b, "## %s\n\n", scheme)
		b.WriteString("| k,m |")
		for _, l := range sortedLosses {
			fmt.Fprintf(&b, " loss=%.3g |", l)
		}
		b.WriteString("\n|---|")
		for range sortedLosses {
			b.WriteString("---|")
		}
		b.WriteString("\n")

		var shapes []shape
		for sh := range bySchemeShapeLoss[scheme] {
			shapes = append(shapes, sh)
		}
		sort.Slice(shapes, func(i, j int) bool {
			if shapes[i].k != shapes[j].k {
				return shapes[i].k < shapes[j].k
			}
			return shapes[i].m < shapes[j].m
		})
		for _, sh := range shapes {
			fmt.Fprintf(&b, "| %d,%d |", sh.k, sh.m)
			for _, l := range sortedLosses {
				if r, ok := bySchemeShapeLoss[scheme][sh][l]; ok {
					fmt.Fprintf(&b, " %.1f%% |", 100*r.SuccessRate())
				} else {
					b.WriteString(" - |")
				}
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}
