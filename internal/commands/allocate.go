package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/budgetlens-dev/budgetlens/internal/allocation"
)

func newAllocateCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Read and write budget allocations",
	}
	cmd.AddCommand(newAllocateSetCommand(configPath))
	cmd.AddCommand(newAllocateGetCommand(configPath))
	return cmd
}

func newAllocateSetCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <level> <key> <amount>",
		Short: "Set the allocated budget for a department or region",
		Long: `Set the allocated budget for a node. Level is "department" or "region";
region keys are composite, e.g. "Dept|North".`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", args[2], err)
			}

			a, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			warning, err := a.store.SetAllocation(cmd.Context(), allocation.Level(args[0]), args[1], amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s allocated %s\n", args[0], args[1], amount.StringFixed(2))
			if warning.OverAllocated {
				fmt.Fprintf(cmd.OutOrStdout(),
					"warning: regions of %s now total %s against a department budget of %s\n",
					warning.Department, warning.RegionsTotal.StringFixed(2), warning.ParentAllocated.StringFixed(2))
			}
			return nil
		},
	}
}

func newAllocateGetCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <level> <key>",
		Short: "Print the allocated budget for a department or region",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			amount, err := a.store.GetAllocation(cmd.Context(), allocation.Level(args[0]), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", amount.StringFixed(2))
			return nil
		},
	}
}
