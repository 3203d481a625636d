package cmd

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the whole pipeline: clean, weights, describe, fit, report",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, sub := range []*cobra.Command{cleanCmd, weightsCmd, describeCmd, fitCmd, reportCmd} {
			if err := sub.RunE(sub, nil); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
