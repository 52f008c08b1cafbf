package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/accunode/accunode-go/pkg/errors"
)

func init() {
	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the role-scoped dashboard summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("refresh")

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.StatStore.Fetch(cmd.Context(), force)
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Printf("Scope: %s\n", stats.Scope)
			fmt.Printf("Companies: %d\n", stats.TotalCompanies)
			fmt.Printf("Predictions: %d\n", stats.TotalPredictions)
			fmt.Printf("Average default rate: %.2f%%\n", stats.AverageDefaultRate*100)
			fmt.Printf("High-risk companies: %d\n", stats.HighRiskCount)
			if len(stats.SectorCounts) > 0 {
				fmt.Println("By sector:")
				for sector, n := range stats.SectorCounts {
					fmt.Printf("  %s: %d\n", sector, n)
				}
			}
			return nil
		},
	}
	dashboardCmd.Flags().Bool("refresh", false, "Bypass the stats cache")

	rootCmd.AddCommand(dashboardCmd)
}
