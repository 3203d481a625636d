package cmd

import (
	"fmt"

	"github.com/statlab-vienna/surveygraph/internal/census"
	"github.com/statlab-vienna/surveygraph/internal/dataset"
	"github.com/statlab-vienna/surveygraph/internal/weighting"
)

// loadCleaned runs load -> clean -> group derivation on the configured raw
// file. Group derivation runs before recoding because the education lookup is
// defined on raw codes.
func loadCleaned() (*dataset.Data, *dataset.CleanReport, error) {
	d, err := dataset.Load(cfg.RawPath, dataset.DefaultLoadOptions())
	if err != nil {
		return nil, nil, err
	}
	opt := dataset.DefaultCleanOptions()
	if cfg.TimingThreshold > 0 {
		opt.TimingThreshold = cfg.TimingThreshold
	}
	cleaned, rep := dataset.Clean(d, opt)
	if err := dataset.DeriveGroups(cleaned); err != nil {
		return nil, nil, fmt.Errorf("derive groups: %w", err)
	}
	return cleaned, rep, nil
}

// loadPrepared is loadCleaned plus recoding: the form every descriptive and
// model stage consumes.
func loadPrepared() (*dataset.Data, *dataset.CleanReport, error) {
	d, rep, err := loadCleaned()
	if err != nil {
		return nil, nil, err
	}
	if err := dataset.Recode(d); err != nil {
		return nil, nil, err
	}
	return d, rep, nil
}

// computeWeights builds the census joint distribution and post-stratifies the
// sample under the partial policy.
func computeWeights(d *dataset.Data) (*weighting.Weights, error) {
	pop, err := census.LoadJoint(cfg.CensusPath, cfg.CensusSheet)
	if err != nil {
		return nil, fmt.Errorf("census: %w", err)
	}
	w, err := weighting.PostStratify(d, pop, weighting.Partial)
	if err != nil {
		return nil, err
	}
	for _, s := range w.DroppedStrata {
		fmt.Printf("⚠ population stratum %s has no sample support; renormalized around it\n", s)
	}
	return w, nil
}
