package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clockzen/evidence-harness/config"
	"github.com/clockzen/evidence-harness/internal/scenarios"
)

// NewListCommand creates the list command
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered scenarios and their artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := config.EvidenceRoot()

			fmt.Println("TAG             ROUTE           NAME")
			fmt.Println("--------------- --------------- ----------------------------------------")
			for _, sc := range scenarios.All() {
				fmt.Printf("%-15s %-15s %s\n", sc.FeatureTag, sc.Route, sc.Name)
				for _, path := range sc.ArtifactPaths(root) {
					fmt.Printf("%-15s %-15s -> %s\n", "", "", path)
				}
			}
			return nil
		},
	}
}
