// Package model estimates the partial-correlation network over the analysis
// variables. The estimator is a Gaussian copula graphical model: marginals
// enter only through rank-based normal scores, so ordinal, binary and
// continuous variables share one dependency structure.
package model

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/statlab-vienna/surveygraph/internal/dataset"
)

// Fit holds a fitted network: partial correlations with credible intervals
// and per-variable predictability (variance explained by all others).
type Fit struct {
	Variables []string    `json:"variables"`
	Partial   [][]float64 `json:"partial"`
	Lower     [][]float64 `json:"lower,omitempty"`
	Upper     [][]float64 `json:"upper,omitempty"`
	// Predictability maps variable name to posterior samples of its
	// explained variance.
	Predictability map[string][]float64 `json:"predictability"`
	// Iterations is the bootstrap batch size for post-stratified fits.
	Iterations int `json:"iterations,omitempty"`
}

// Estimator is the narrow interface the pipeline depends on, so tests can run
// against a fake instead of the numerical backend.
type Estimator interface {
	Fit(ctx context.Context, d *dataset.Data) (*Fit, error)
}

// Copula is the default estimator. PosteriorDraws controls how many
// nonparametric posterior resamples back the credible intervals and
// predictability distributions; zero disables them (used inside the
// post-stratified bootstrap, where the outer resampling provides the spread).
type Copula struct {
	Seed           int64
	PosteriorDraws int
}

// Fit estimates the network from a completed (no missing values) dataset.
func (c Copula) Fit(ctx context.Context, d *dataset.Data) (*Fit, error) {
	X, names, err := buildMatrix(d)
	if err != nil {
		return nil, err
	}
	n, p := X.Dims()
	if n <= p {
		return nil, fmt.Errorf("copula fit: %d rows for %d variables", n, p)
	}

	scores := normalScores(X)
	partial, pred, err := estimate(scores)
	if err != nil {
		return nil, fmt.Errorf("copula fit: %w", err)
	}

	fit := &Fit{
		Variables:      names,
		Partial:        partial,
		Predictability: map[string][]float64{},
	}
	for j, name := range names {
		fit.Predictability[name] = []float64{pred[j]}
	}
	if c.PosteriorDraws <= 0 {
		return fit, nil
	}

	// Nonparametric posterior: resample rows, re-estimate, read intervals off
	// the empirical distribution.
	rng := rand.New(rand.NewSource(c.Seed))
	partialDraws := make([][][]float64, 0, c.PosteriorDraws)
	predDraws := make(map[string][]float64, p)
	for b := 0; b < c.PosteriorDraws; b++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		bp, bpred, err := estimate(normalScores(subsetRows(X, idx)))
		if err != nil {
			return nil, fmt.Errorf("posterior draw %d: %w", b+1, err)
		}
		partialDraws = append(partialDraws, bp)
		for j, name := range names {
			predDraws[name] = append(predDraws[name], bpred[j])
		}
	}

	fit.Lower = zeros(p)
	fit.Upper = zeros(p)
	sample := make([]float64, len(partialDraws))
	for i := 0; i < p; i++ {
		for j := i + 1; j < p; j++ {
			for b, draw := range partialDraws {
				sample[b] = draw[i][j]
			}
			sort.Float64s(sample)
			lo := stat.Quantile(0.025, stat.Empirical, sample, nil)
			hi := stat.Quantile(0.975, stat.Empirical, sample, nil)
			fit.Lower[i][j], fit.Lower[j][i] = lo, lo
			fit.Upper[i][j], fit.Upper[j][i] = hi, hi
		}
	}
	fit.Predictability = predDraws
	return fit, nil
}

// buildMatrix assembles the n x p model matrix from the variable registry.
// Missing values are a hard error here: imputation runs before estimation.
func buildMatrix(d *dataset.Data) (*mat.Dense, []string, error) {
	if !d.Recoded() {
		return nil, nil, fmt.Errorf("model: data not recoded")
	}
	vars := dataset.Variables()
	names := make([]string, len(vars))
	for j, v := range vars {
		names[j] = v.Name
	}
	n := d.Len()
	X := mat.NewDense(n, len(vars), nil)
	for i := range d.Respondents {
		r := &d.Respondents[i]
		for j, v := range vars {
			x, ok := v.Get(r)
			if !ok {
				return nil, nil, fmt.Errorf("model: respondent %d missing %s; impute before fitting", r.ID, v.Name)
			}
			X.Set(i, j, x)
		}
	}
	return X, names, nil
}

// normalScores replaces each column by its rank-based normal scores
// (midranks on ties, (rank)/(n+1) plotting positions).
func normalScores(X *mat.Dense) *mat.Dense {
	n, p := X.Dims()
	out := mat.NewDense(n, p, nil)
	idx := make([]int, n)
	ranks := make([]float64, n)
	for j := 0; j < p; j++ {
		col := mat.Col(nil, j, X)
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool { return col[idx[a]] < col[idx[b]] })
		for i := 0; i < n; {
			k := i
			for k+1 < n && col[idx[k+1]] == col[idx[i]] {
				k++
			}
			mid := float64(i+k)/2 + 1 // midrank, 1-based
			for t := i; t <= k; t++ {
				ranks[idx[t]] = mid
			}
			i = k + 1
		}
		for i := 0; i < n; i++ {
			out.Set(i, j, distuv.UnitNormal.Quantile(ranks[i]/float64(n+1)))
		}
	}
	return out
}

// estimate computes partial correlations and predictability from the score
// matrix: correlation -> precision (ridge-stabilized Cholesky) -> scaled
// negative off-diagonals.
func estimate(scores *mat.Dense) ([][]float64, []float64, error) {
	_, p := scores.Dims()
	corr := mat.NewSymDense(p, nil)
	stat.CorrelationMatrix(corr, scores, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			if math.IsNaN(corr.At(i, j)) {
				return nil, nil, fmt.Errorf("degenerate column: correlation undefined at (%d,%d)", i, j)
			}
		}
	}

	prec := mat.NewSymDense(p, nil)
	var chol mat.Cholesky
	ridge := 0.0
	for attempt := 0; ; attempt++ {
		shifted := mat.NewSymDense(p, nil)
		shifted.CopySym(corr)
		if ridge > 0 {
			for i := 0; i < p; i++ {
				shifted.SetSym(i, i, shifted.At(i, i)+ridge)
			}
		}
		if chol.Factorize(shifted) {
			break
		}
		if attempt >= 6 {
			return nil, nil, fmt.Errorf("correlation matrix not positive definite (ridge up to %g)", ridge)
		}
		if ridge == 0 {
			ridge = 1e-6
		} else {
			ridge *= 10
		}
	}
	if err := chol.InverseTo(prec); err != nil {
		return nil, nil, fmt.Errorf("invert correlation matrix: %w", err)
	}

	partial := zeros(p)
	pred := make([]float64, p)
	for i := 0; i < p; i++ {
		pred[i] = clamp(1-1/prec.At(i, i), 0, 1)
		for j := 0; j < p; j++ {
			if i == j {
				continue
			}
			r := -prec.At(i, j) / math.Sqrt(prec.At(i, i)*prec.At(j, j))
			partial[i][j] = clamp(r, -1, 1)
		}
	}
	return partial, pred, nil
}

func subsetRows(X *mat.Dense, idx []int) *mat.Dense {
	_, p := X.Dims()
	out := mat.NewDense(len(idx), p, nil)
	for i, r := range idx {
		out.SetRow(i, mat.Row(nil, r, X))
	}
	return out
}

func zeros(p int) [][]float64 {
	m := make([][]float64, p)
	for i := range m {
		m[i] = make([]float64, p)
	}
	return m
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
