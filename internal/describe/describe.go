// Package describe computes the descriptive tables of the study: group-wise
// means, proportions and row-normalized contingency tables, each in an
// unweighted and a post-stratified variant for comparison.
package describe

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/statlab-vienna/surveygraph/internal/dataset"
	"github.com/statlab-vienna/surveygraph/internal/weighting"
)

// Grouping names a demographic axis tables can be split by.
type Grouping string

const (
	ByGender   Grouping = "gender"
	ByAgeGroup Grouping = "age_group"
	ByEduGroup Grouping = "edu_group"
)

// Table is one rendered statistic: row labels x column labels with numeric
// cells.
type Table struct {
	Title    string
	Rows     []string
	Cols     []string
	Values   [][]float64
	N        int
	Weighted bool
}

func groupLabel(r *dataset.Respondent, by Grouping) (string, error) {
	switch by {
	case ByGender:
		return r.Gender.String(), nil
	case ByAgeGroup:
		return r.AgeGroup.String(), nil
	case ByEduGroup:
		return r.EduGroup.String(), nil
	}
	return "", fmt.Errorf("unknown grouping %q", by)
}

func checkReady(d *dataset.Data) error {
	if !d.Recoded() {
		return fmt.Errorf("describe: data not recoded; refusing to mix codings")
	}
	if !d.Grouped() {
		return fmt.Errorf("describe: group labels not derived")
	}
	return nil
}

// GroupMeans computes per-group means of the named variables over observed
// values. The group-by runs on a gota dataframe, one frame per variable so
// each mean uses that variable's observed rows.
func GroupMeans(d *dataset.Data, by Grouping, varNames []string) (*Table, error) {
	if err := checkReady(d); err != nil {
		return nil, err
	}
	t := &Table{
		Title: fmt.Sprintf("means by %s", by),
		Cols:  varNames,
		N:     d.Len(),
	}
	cells := map[string]map[string]float64{} // group -> var -> mean
	for _, name := range varNames {
		v, err := dataset.VariableByName(name)
		if err != nil {
			return nil, err
		}
		var labels []string
		var values []float64
		for i := range d.Respondents {
			r := &d.Respondents[i]
			x, ok := v.Get(r)
			if !ok {
				continue
			}
			lbl, err := groupLabel(r, by)
			if err != nil {
				return nil, err
			}
			labels = append(labels, lbl)
			values = append(values, x)
		}
		if len(values) == 0 {
			continue
		}
		df := dataframe.New(
			series.New(labels, series.String, "group"),
			series.New(values, series.Float, name),
		)
		agg := df.GroupBy("group").Aggregation(
			[]dataframe.AggregationType{dataframe.Aggregation_MEAN},
			[]string{name},
		)
		if agg.Err != nil {
			return nil, fmt.Errorf("group-by %s over %s: %w", by, name, agg.Err)
		}
		recs := agg.Records()
		if len(recs) < 2 {
			continue
		}
		gi, vi := -1, -1
		for j, h := range recs[0] {
			switch h {
			case "group":
				gi = j
			case name + "_MEAN":
				vi = j
			}
		}
		if gi < 0 || vi < 0 {
			return nil, fmt.Errorf("group-by %s over %s: unexpected aggregation columns %v", by, name, recs[0])
		}
		for _, rec := range recs[1:] {
			m, err := strconv.ParseFloat(rec[vi], 64)
			if err != nil {
				return nil, fmt.Errorf("group-by %s over %s: parse mean %q: %w", by, name, rec[vi], err)
			}
			if cells[rec[gi]] == nil {
				cells[rec[gi]] = map[string]float64{}
			}
			cells[rec[gi]][name] = m
		}
	}
	for g := range cells {
		t.Rows = append(t.Rows, g)
	}
	sort.Strings(t.Rows)
	t.Values = make([][]float64, len(t.Rows))
	for i, g := range t.Rows {
		t.Values[i] = make([]float64, len(varNames))
		for j, name := range varNames {
			t.Values[i][j] = cells[g][name]
		}
	}
	return t, nil
}

// WeightedGroupMeans computes the post-stratified counterpart of GroupMeans.
func WeightedGroupMeans(d *dataset.Data, by Grouping, varNames []string, w *weighting.Weights) (*Table, error) {
	if err := checkReady(d); err != nil {
		return nil, err
	}
	type acc struct {
		sum  float64
		wsum float64
	}
	cells := map[string]map[string]*acc{}
	for _, name := range varNames {
		v, err := dataset.VariableByName(name)
		if err != nil {
			return nil, err
		}
		for i := range d.Respondents {
			r := &d.Respondents[i]
			x, ok := v.Get(r)
			if !ok {
				continue
			}
			lbl, err := groupLabel(r, by)
			if err != nil {
				return nil, err
			}
			wi := w.Of(r)
			if cells[lbl] == nil {
				cells[lbl] = map[string]*acc{}
			}
			a := cells[lbl][name]
			if a == nil {
				a = &acc{}
				cells[lbl][name] = a
			}
			a.sum += wi * x
			a.wsum += wi
		}
	}
	t := &Table{
		Title:    fmt.Sprintf("weighted means by %s", by),
		Cols:     varNames,
		N:        d.Len(),
		Weighted: true,
	}
	for g := range cells {
		t.Rows = append(t.Rows, g)
	}
	sort.Strings(t.Rows)
	t.Values = make([][]float64, len(t.Rows))
	for i, g := range t.Rows {
		t.Values[i] = make([]float64, len(varNames))
		for j, name := range varNames {
			if a := cells[g][name]; a != nil && a.wsum > 0 {
				t.Values[i][j] = a.sum / a.wsum
			}
		}
	}
	return t, nil
}

// Contingency cross-tabulates a variable against a demographic axis and
// row-normalizes to proportions. A nil weights argument yields the unweighted
// table; otherwise cell mass is the sum of post-stratification weights.
func Contingency(d *dataset.Data, by Grouping, varName string, w *weighting.Weights) (*Table, error) {
	if err := checkReady(d); err != nil {
		return nil, err
	}
	v, err := dataset.VariableByName(varName)
	if err != nil {
		return nil, err
	}
	counts := map[string]map[int]float64{}
	maxCat := 0
	for i := range d.Respondents {
		r := &d.Respondents[i]
		x, ok := v.Get(r)
		if !ok {
			continue
		}
		cat := int(x)
		if cat > maxCat {
			maxCat = cat
		}
		lbl, err := groupLabel(r, by)
		if err != nil {
			return nil, err
		}
		mass := 1.0
		if w != nil {
			mass = w.Of(r)
		}
		if counts[lbl] == nil {
			counts[lbl] = map[int]float64{}
		}
		counts[lbl][cat] += mass
	}
	t := &Table{
		Title:    fmt.Sprintf("%s by %s", varName, by),
		N:        d.Len(),
		Weighted: w != nil,
	}
	for c := 0; c <= maxCat; c++ {
		t.Cols = append(t.Cols, strconv.Itoa(c))
	}
	for g := range counts {
		t.Rows = append(t.Rows, g)
	}
	sort.Strings(t.Rows)
	t.Values = make([][]float64, len(t.Rows))
	for i, g := range t.Rows {
		row := make([]float64, maxCat+1)
		total := 0.0
		for c, n := range counts[g] {
			row[c] = n
			total += n
		}
		if total > 0 {
			for c := range row {
				row[c] /= total
			}
		}
		t.Values[i] = row
	}
	return t, nil
}
