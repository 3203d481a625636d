package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statlab-vienna/surveygraph/internal/cache"
	"github.com/statlab-vienna/surveygraph/internal/impute"
	"github.com/statlab-vienna/surveygraph/internal/model"
)

const (
	baseFitKey      = "base_fit"
	postStratFitKey = "poststrat_fit"
)

var (
	fitRecompute  bool
	fitForceStale bool
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Impute, fit the base network, and run the post-stratified bootstrap",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := loadPrepared()
		if err != nil {
			return err
		}
		w, err := computeWeights(d)
		if err != nil {
			return err
		}

		imputer := impute.HotDeck{Seed: cfg.Seed}
		draws, err := imputer.Impute(d, cfg.Imputations)
		if err != nil {
			return fmt.Errorf("impute: %w", err)
		}
		completed := draws[0] // base analysis consumes the first draw

		store, err := cache.New(cfg.CacheDir)
		if err != nil {
			return err
		}
		hash := completed.Hash()

		est := model.Copula{Seed: cfg.Seed, PosteriorDraws: cfg.PosteriorDraws}
		if _, err := loadOrFit(cmd.Context(), store, baseFitKey, hash, func(ctx context.Context) (*model.Fit, error) {
			return est.Fit(ctx, completed)
		}); err != nil {
			return err
		}

		bootOpt := model.BootstrapOptions{
			Iterations: cfg.BootstrapIters,
			Workers:    cfg.BootstrapWorkers,
			Seed:       cfg.Seed + 1,
		}
		// Each bootstrap iteration skips the inner posterior draws; the outer
		// resampling provides the spread.
		iterEst := model.Copula{Seed: cfg.Seed + 2}
		if _, err := loadOrFit(cmd.Context(), store, postStratFitKey, hash, func(ctx context.Context) (*model.Fit, error) {
			return model.PostStratified(ctx, iterEst, completed, w.Vector(completed), bootOpt)
		}); err != nil {
			return err
		}
		return nil
	},
}

// loadOrFit returns the cached fit for key unless it is absent, stale (and
// recomputation is allowed), or --recompute is set.
func loadOrFit(ctx context.Context, store *cache.Store, key, hash string, fit func(context.Context) (*model.Fit, error)) (*model.Fit, error) {
	if !fitRecompute {
		var cached model.Fit
		ok, meta, err := store.Load(key, hash, &cached)
		if ok {
			fmt.Printf("✓ %s: using cached fit %s from %s\n", key, meta.ID, meta.CreatedAt.Format("2006-01-02 15:04"))
			return &cached, nil
		}
		if err != nil && errors.Is(err, cache.ErrStale) {
			fmt.Printf("⚠ %s: cache was computed from different data (%v)\n", key, err)
			if fitForceStale {
				ok, _, err = store.Load(key, "", &cached)
				if err != nil {
					return nil, err
				}
				if ok {
					fmt.Printf("⚠ %s: reusing stale fit because --force-stale is set\n", key)
					return &cached, nil
				}
			}
			fmt.Printf("  recomputing %s\n", key)
		} else if err != nil {
			return nil, err
		}
	}
	f, err := fit(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.Save(key, hash, f); err != nil {
		return nil, err
	}
	fmt.Printf("✓ %s: fitted and cached\n", key)
	return f, nil
}

// loadFit fetches a cached fit without recomputing; used by report.
func loadFit(store *cache.Store, key, hash string, forceStale bool) (*model.Fit, error) {
	var f model.Fit
	ok, _, err := store.Load(key, hash, &f)
	if err != nil {
		if errors.Is(err, cache.ErrStale) && forceStale {
			fmt.Printf("⚠ %s: rendering stale fit because --force-stale is set\n", key)
			if ok2, _, err2 := store.Load(key, "", &f); err2 == nil && ok2 {
				return &f, nil
			}
		}
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no cached %s; run 'surveygraph fit' first", key)
	}
	return &f, nil
}

func init() {
	rootCmd.AddCommand(fitCmd)
	fitCmd.Flags().BoolVar(&fitRecompute, "recompute", false, "ignore cached fits and re-estimate")
	fitCmd.Flags().BoolVar(&fitForceStale, "force-stale", false, "reuse cached fits even when the data hash changed")
}
