package model

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/statlab-vienna/surveygraph/internal/dataset"
)

// BootstrapOptions configures the post-stratified resampling.
type BootstrapOptions struct {
	// Iterations is the number of weighted bootstrap re-estimates; the study
	// documents 250.
	Iterations int
	// Workers bounds the parallel fan-out; <=0 means GOMAXPROCS.
	Workers int
	Seed    int64
}

// DefaultBootstrapOptions matches the documented analysis.
func DefaultBootstrapOptions(seed int64) BootstrapOptions {
	return BootstrapOptions{Iterations: 250, Seed: seed}
}

// PostStratified estimates the weighted network. The estimation backend has
// no weighted likelihood, so the weights enter through resampling: each
// iteration draws n respondents with replacement with probability
// proportional to their post-stratification weight, re-estimates the model,
// and the batch is aggregated by element-wise averaging of the
// partial-correlation matrices and pooling of all predictability samples.
//
// Iterations are independent and run in parallel; any iteration error aborts
// the whole batch, because averaging over a silently reduced batch would bias
// the estimate.
func PostStratified(ctx context.Context, est Estimator, d *dataset.Data, weights []float64, opt BootstrapOptions) (*Fit, error) {
	n := d.Len()
	if n == 0 {
		return nil, fmt.Errorf("post-stratified fit: empty data")
	}
	if len(weights) != n {
		return nil, fmt.Errorf("post-stratified fit: %d weights for %d respondents", len(weights), n)
	}
	if opt.Iterations <= 0 {
		return nil, fmt.Errorf("post-stratified fit: need a positive iteration count")
	}

	cum := make([]float64, n)
	total := 0.0
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("post-stratified fit: negative weight at row %d", i)
		}
		total += w
		cum[i] = total
	}
	if total <= 0 {
		return nil, fmt.Errorf("post-stratified fit: all weights zero")
	}

	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	fits := make([]*Fit, opt.Iterations)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := 0; i < opt.Iterations; i++ {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(opt.Seed + int64(i)))
			idx := make([]int, n)
			for k := range idx {
				idx[k] = sort.SearchFloat64s(cum, rng.Float64()*total)
			}
			f, err := est.Fit(ctx, d.Subset(idx))
			if err != nil {
				return fmt.Errorf("bootstrap iteration %d: %w", i+1, err)
			}
			fits[i] = f
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return Aggregate(fits)
}

// Aggregate combines independent re-estimates: element-wise mean of the
// partial-correlation matrices (the operation is commutative, so iteration
// order never matters) plus 2.5/97.5 percentile bands over iterations, and
// pooled predictability samples.
func Aggregate(fits []*Fit) (*Fit, error) {
	if len(fits) == 0 {
		return nil, fmt.Errorf("aggregate: no fits")
	}
	names := fits[0].Variables
	p := len(names)
	for _, f := range fits {
		if len(f.Variables) != p {
			return nil, fmt.Errorf("aggregate: fits disagree on variable count")
		}
	}

	out := &Fit{
		Variables:      names,
		Partial:        zeros(p),
		Lower:          zeros(p),
		Upper:          zeros(p),
		Predictability: map[string][]float64{},
		Iterations:     len(fits),
	}
	sample := make([]float64, len(fits))
	for i := 0; i < p; i++ {
		for j := 0; j < p; j++ {
			if i == j {
				continue
			}
			sum := 0.0
			for b, f := range fits {
				sum += f.Partial[i][j]
				sample[b] = f.Partial[i][j]
			}
			out.Partial[i][j] = sum / float64(len(fits))
			sort.Float64s(sample)
			out.Lower[i][j] = quantile(sample, 0.025)
			out.Upper[i][j] = quantile(sample, 0.975)
		}
	}
	for _, f := range fits {
		for name, samples := range f.Predictability {
			out.Predictability[name] = append(out.Predictability[name], samples...)
		}
	}
	return out, nil
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[lo+1]*w
}
