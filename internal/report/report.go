// Package report renders pipeline results for the paper: Markdown tables and
// Graphviz DOT network diagrams. Pure presentation, no statistics.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/statlab-vienna/surveygraph/internal/dataset"
	"github.com/statlab-vienna/surveygraph/internal/describe"
	"github.com/statlab-vienna/surveygraph/internal/model"
	"github.com/statlab-vienna/surveygraph/internal/weighting"
)

// Edge colors for the network diagrams; sign maps to exactly these two.
const (
	positiveEdgeColor = "#2066a8"
	negativeEdgeColor = "#c46666"
)

// ExclusionMarkdown renders the cleaner's per-filter accounting.
func ExclusionMarkdown(rep *dataset.CleanReport) string {
	var b strings.Builder
	b.WriteString("[EXCLUSIONS]\n")
	fmt.Fprintf(&b, "Raw respondents: %d\n", rep.Raw)
	for i, s := range rep.Steps {
		fmt.Fprintf(&b, "%d. %s: -%d (n=%d)\n", i+1, s.Name, s.Removed, s.Remaining)
	}
	fmt.Fprintf(&b, "Analysis sample: %d (%d excluded)\n", rep.Final, rep.TotalRemoved())
	return b.String()
}

// TableMarkdown renders a descriptive table; proportions and means print with
// three decimals.
func TableMarkdown(t *describe.Table) string {
	var b strings.Builder
	tag := "unweighted"
	if t.Weighted {
		tag = "weighted"
	}
	fmt.Fprintf(&b, "[TABLE] %s (%s, n=%d)\n", t.Title, tag, t.N)
	b.WriteString("| |")
	for _, c := range t.Cols {
		fmt.Fprintf(&b, " %s |", c)
	}
	b.WriteString("\n|---|")
	for range t.Cols {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for i, r := range t.Rows {
		fmt.Fprintf(&b, "| %s |", r)
		for _, v := range t.Values[i] {
			fmt.Fprintf(&b, " %.3f |", v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WeightsMarkdown renders the per-stratum weights, sorted by stratum label.
func WeightsMarkdown(w *weighting.Weights) string {
	var b strings.Builder
	b.WriteString("[POST-STRATIFICATION WEIGHTS]\n")
	type row struct {
		label  string
		weight float64
	}
	rows := make([]row, 0, len(w.ByStratum))
	for s, v := range w.ByStratum {
		rows = append(rows, row{label: s.String(), weight: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].label < rows[j].label })
	for _, r := range rows {
		fmt.Fprintf(&b, "- %s: %.4f\n", r.label, r.weight)
	}
	if len(w.DroppedStrata) > 0 {
		b.WriteString("\n[UNOBSERVED POPULATION STRATA]\n")
		for _, s := range w.DroppedStrata {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	return b.String()
}

// FitMarkdown summarizes a fitted network: strongest edges and mean
// predictability per variable.
func FitMarkdown(f *model.Fit, threshold float64) string {
	var b strings.Builder
	b.WriteString("[NETWORK]\n")
	if f.Iterations > 0 {
		fmt.Fprintf(&b, "Post-stratified, %d bootstrap iterations\n", f.Iterations)
	}
	type edge struct {
		a, b   string
		r      float64
		lo, hi float64
	}
	var edges []edge
	p := len(f.Variables)
	for i := 0; i < p; i++ {
		for j := i + 1; j < p; j++ {
			r := f.Partial[i][j]
			if math.Abs(r) < threshold {
				continue
			}
			e := edge{a: f.Variables[i], b: f.Variables[j], r: r}
			if f.Lower != nil {
				e.lo, e.hi = f.Lower[i][j], f.Upper[i][j]
			}
			edges = append(edges, e)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		ai, aj := math.Abs(edges[i].r), math.Abs(edges[j].r)
		if ai == aj {
			return edges[i].a+edges[i].b < edges[j].a+edges[j].b
		}
		return ai > aj
	})
	for _, e := range edges {
		if f.Lower != nil {
			fmt.Fprintf(&b, "- %s ~ %s: %.3f [%.3f, %.3f]\n", e.a, e.b, e.r, e.lo, e.hi)
		} else {
			fmt.Fprintf(&b, "- %s ~ %s: %.3f\n", e.a, e.b, e.r)
		}
	}

	b.WriteString("\n[PREDICTABILITY]\n")
	for _, name := range f.Variables {
		samples := f.Predictability[name]
		if len(samples) == 0 {
			continue
		}
		sum := 0.0
		for _, s := range samples {
			sum += s
		}
		fmt.Fprintf(&b, "- %s: %.3f (%d samples)\n", name, sum/float64(len(samples)), len(samples))
	}
	return b.String()
}

// NetworkDOT renders the partial-correlation network as Graphviz DOT. Edge
// sign maps to the two fixed colors, width scales with magnitude, and edges
// below the display threshold are omitted.
func NetworkDOT(f *model.Fit, threshold float64) string {
	var b strings.Builder
	b.WriteString("graph network {\n")
	b.WriteString("  layout=circo;\n")
	b.WriteString("  node [shape=circle, fontsize=10];\n")
	for _, v := range f.Variables {
		fmt.Fprintf(&b, "  %q;\n", v)
	}
	p := len(f.Variables)
	for i := 0; i < p; i++ {
		for j := i + 1; j < p; j++ {
			r := f.Partial[i][j]
			if math.Abs(r) < threshold {
				continue
			}
			color := positiveEdgeColor
			if r < 0 {
				color = negativeEdgeColor
			}
			fmt.Fprintf(&b, "  %q -- %q [color=%q, penwidth=%.2f, label=\"%.2f\"];\n",
				f.Variables[i], f.Variables[j], color, 0.5+4*math.Abs(r), r)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
