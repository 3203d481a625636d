package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/statlab-vienna/surveygraph/internal/describe"
	"github.com/statlab-vienna/surveygraph/internal/report"
)

var (
	descBy       string
	descVars     []string
	descCrosstab []string
	descOutput   string
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Descriptive tables, unweighted and post-stratified side by side",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, _, err := loadPrepared()
		if err != nil {
			return err
		}
		w, err := computeWeights(d)
		if err != nil {
			return err
		}

		by := describe.Grouping(descBy)
		var b strings.Builder

		means, err := describe.GroupMeans(d, by, descVars)
		if err != nil {
			return err
		}
		b.WriteString(report.TableMarkdown(means))
		b.WriteString("\n")
		wmeans, err := describe.WeightedGroupMeans(d, by, descVars, w)
		if err != nil {
			return err
		}
		b.WriteString(report.TableMarkdown(wmeans))

		for _, name := range descCrosstab {
			for _, weighted := range []bool{false, true} {
				ww := w
				if !weighted {
					ww = nil
				}
				t, err := describe.Contingency(d, by, name, ww)
				if err != nil {
					return err
				}
				b.WriteString("\n")
				b.WriteString(report.TableMarkdown(t))
			}
		}

		if descOutput != "" {
			if err := os.MkdirAll(filepath.Dir(descOutput), 0o755); err != nil {
				return fmt.Errorf("mkdir output dir: %w", err)
			}
			if err := os.WriteFile(descOutput, []byte(b.String()), 0o644); err != nil {
				return fmt.Errorf("write tables: %w", err)
			}
			fmt.Printf("✓ Wrote tables to %s\n", descOutput)
			return nil
		}
		fmt.Print(b.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVar(&descBy, "by", string(describe.ByGender), "grouping axis: gender|age_group|edu_group")
	describeCmd.Flags().StringSliceVar(&descVars, "vars",
		[]string{"age", "self_health", "exercise", "diet_quality", "sleep_quality", "smoker", "chronic_ill"},
		"variables to summarize")
	describeCmd.Flags().StringSliceVar(&descCrosstab, "crosstab",
		[]string{"self_health", "smoker"},
		"variables to cross-tabulate against the grouping axis")
	describeCmd.Flags().StringVarP(&descOutput, "output", "o", "", "optional path to write the tables (Markdown)")
}
