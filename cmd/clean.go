package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statlab-vienna/surveygraph/internal/report"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [raw.csv]",
	Short: "Load and clean the raw export; print the exclusion report",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg.RawPath = args[0]
		}
		_, rep, err := loadCleaned()
		if err != nil {
			return err
		}
		fmt.Print(report.ExclusionMarkdown(rep))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
