package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/statlab-vienna/surveygraph/internal/dataset"
	"github.com/statlab-vienna/surveygraph/internal/report"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Post-stratify the sample against the census joint distribution",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := loadCleaned()
		if err != nil {
			return err
		}
		w, err := computeWeights(d)
		if err != nil {
			return err
		}
		fmt.Print(report.WeightsMarkdown(w))

		// Sanity: weights sum to the sample size within each gender.
		sums := map[dataset.Gender]float64{}
		ns := map[dataset.Gender]int{}
		for i := range d.Respondents {
			r := &d.Respondents[i]
			sums[r.Gender] += w.Of(r)
			ns[r.Gender]++
		}
		for g, sum := range sums {
			if math.Abs(sum-float64(ns[g])) > 1e-6 {
				return fmt.Errorf("weights for %s sum to %.4f, expected %d", g, sum, ns[g])
			}
		}
		fmt.Println("✓ weights normalized within gender strata")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(weightsCmd)
}
