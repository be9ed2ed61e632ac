package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Capture visual evidence of Clockzen features",
	Long: `evidence drives a browser through scripted scenarios against the
Clockzen web application and persists screenshot artifacts proving that
features render and behave correctly.`,
	SilenceUsage: true,
}

func init() {
	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewVersionCommand())
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
