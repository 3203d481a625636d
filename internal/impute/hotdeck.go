// Package impute fills scattered missing values in the analysis block. The
// pipeline treats the imputation model as a narrow interface so the heavy
// numerical backend can be swapped without touching pipeline logic.
package impute

import (
	"fmt"
	"math/rand"

	"github.com/statlab-vienna/surveygraph/internal/dataset"
)

// Imputer produces m completed copies of the data drawn from a model of the
// observed values. Draws must be deterministic for a fixed seed.
type Imputer interface {
	Impute(d *dataset.Data, m int) ([]*dataset.Data, error)
}

// HotDeck is the default imputer: for each missing value it draws a donor
// value of the same variable from respondents in the same gender x age-group
// cell, falling back to the whole column when the cell has no observed donor.
// Conditioning on the demographic cell keeps the draws consistent with the
// joint structure the descriptives condition on.
type HotDeck struct {
	Seed int64
}

func (h HotDeck) Impute(d *dataset.Data, m int) ([]*dataset.Data, error) {
	if m <= 0 {
		return nil, fmt.Errorf("impute: need at least one draw, got %d", m)
	}
	if !d.Grouped() {
		return nil, fmt.Errorf("impute: group labels not derived")
	}

	type cellKey struct {
		g dataset.Gender
		a dataset.AgeGroup
	}
	vars := dataset.AnalysisVariables()

	// Donor pools per variable: observed values by demographic cell plus the
	// whole-column fallback.
	byCell := make([]map[cellKey][]float64, len(vars))
	all := make([][]float64, len(vars))
	for vi, v := range vars {
		byCell[vi] = map[cellKey][]float64{}
		for i := range d.Respondents {
			r := &d.Respondents[i]
			x, ok := v.Get(r)
			if !ok {
				continue
			}
			k := cellKey{g: r.Gender, a: r.AgeGroup}
			byCell[vi][k] = append(byCell[vi][k], x)
			all[vi] = append(all[vi], x)
		}
		if len(all[vi]) == 0 {
			return nil, fmt.Errorf("impute: variable %s has no observed values", v.Name)
		}
	}

	rng := rand.New(rand.NewSource(h.Seed))
	draws := make([]*dataset.Data, m)
	for di := 0; di < m; di++ {
		cp := d.Clone()
		for i := range cp.Respondents {
			r := &cp.Respondents[i]
			k := cellKey{g: r.Gender, a: r.AgeGroup}
			for vi, v := range vars {
				if _, ok := v.Get(r); ok {
					continue
				}
				pool := byCell[vi][k]
				if len(pool) == 0 {
					pool = all[vi]
				}
				v.Set(r, pool[rng.Intn(len(pool))])
			}
		}
		draws[di] = cp
	}
	return draws, nil
}
