package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/budgetlens-dev/budgetlens/internal/model"
)

func newImportCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Scan the drop directory and classify every export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			counts := map[model.Category]int{}
			for _, tx := range a.service.Snapshot() {
				counts[tx.Category]++
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d transactions classified\n", total(counts))
			for _, c := range []model.Category{
				model.CategoryDirectCost,
				model.CategoryBookedMeasure,
				model.CategoryParkedMeasure,
				model.CategoryOutlier,
			} {
				if counts[c] > 0 {
					fmt.Fprintf(out, "  %-15s %d\n", c, counts[c])
				}
			}
			return nil
		},
	}
	return cmd
}

func total(counts map[model.Category]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
