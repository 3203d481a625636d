// Package weighting post-stratifies the analysis sample against the census
// joint distribution over gender x age group x education group.
package weighting

import (
	"fmt"
	"sort"

	"github.com/statlab-vienna/surveygraph/internal/census"
	"github.com/statlab-vienna/surveygraph/internal/dataset"
)

// Policy selects how population strata without sample support are handled.
type Policy int8

const (
	// Strict fails when the population has a stratum the sample never
	// observed.
	Strict Policy = iota
	// Partial drops unobserved population strata and renormalizes the
	// remaining population shares within gender, so weights stay normalized
	// per gender stratum.
	Partial
)

// Weights is the fitted post-stratification result.
type Weights struct {
	ByStratum map[census.Stratum]float64
	// DroppedStrata lists population cells without sample support that the
	// partial policy ignored.
	DroppedStrata []census.Stratum
}

// Of returns the weight of a respondent's stratum.
func (w *Weights) Of(r *dataset.Respondent) float64 {
	return w.ByStratum[census.Stratum{Gender: r.Gender, Age: r.AgeGroup, Edu: r.EduGroup}]
}

// Vector expands the stratum weights to one weight per respondent, in data
// order.
func (w *Weights) Vector(d *dataset.Data) []float64 {
	out := make([]float64, d.Len())
	for i := range d.Respondents {
		out[i] = w.Of(&d.Respondents[i])
	}
	return out
}

// PostStratify computes per-stratum weights as the ratio of population share
// to sample share, gender by gender. Weights are normalized so that within
// each gender the weights sum to that gender's sample size (mean weight 1),
// which also makes weighted proportions sum to 1 within gender.
func PostStratify(d *dataset.Data, pop *census.Joint, policy Policy) (*Weights, error) {
	if !d.Grouped() {
		return nil, fmt.Errorf("post-stratify: derive age and education groups first")
	}

	sampleN := map[census.Stratum]int{}
	genderN := map[dataset.Gender]int{}
	for i := range d.Respondents {
		r := &d.Respondents[i]
		s := census.Stratum{Gender: r.Gender, Age: r.AgeGroup, Edu: r.EduGroup}
		sampleN[s]++
		genderN[r.Gender]++
	}
	for s := range sampleN {
		if pop.Counts[s] == 0 {
			return nil, fmt.Errorf("post-stratify: sample stratum %s has no population counterpart", s)
		}
	}

	w := &Weights{ByStratum: map[census.Stratum]float64{}}

	for _, g := range []dataset.Gender{dataset.Male, dataset.Female} {
		n := genderN[g]
		if n == 0 {
			continue
		}
		// Population total over the strata we can actually weight.
		popObserved := 0.0
		for s, c := range pop.Counts {
			if s.Gender != g {
				continue
			}
			if sampleN[s] == 0 {
				switch policy {
				case Strict:
					return nil, fmt.Errorf("post-stratify: population stratum %s unobserved in sample", s)
				case Partial:
					w.DroppedStrata = append(w.DroppedStrata, s)
					continue
				}
			}
			popObserved += c
		}
		if popObserved == 0 {
			return nil, fmt.Errorf("post-stratify: no usable population strata for gender %s", g)
		}
		for s, c := range pop.Counts {
			if s.Gender != g || sampleN[s] == 0 {
				continue
			}
			popShare := c / popObserved
			sampShare := float64(sampleN[s]) / float64(n)
			w.ByStratum[s] = popShare / sampShare
		}
	}

	sort.Slice(w.DroppedStrata, func(i, j int) bool {
		return w.DroppedStrata[i].String() < w.DroppedStrata[j].String()
	})
	return w, nil
}
