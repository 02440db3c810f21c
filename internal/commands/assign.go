package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/budgetlens-dev/budgetlens/internal/model"
)

func newAssignCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <id> <region> <district>",
		Short: "Manually place a parked measure into a region and district",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			tx, err := a.service.Assign(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if err := a.saveOverlay(); err != nil {
				return err
			}
			printTransaction(cmd.OutOrStdout(), tx)
			return nil
		},
	}
	return cmd
}

func newUnassignCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unassign <id>",
		Short: "Reverse a manual assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			tx, err := a.service.Unassign(args[0])
			if err != nil {
				return err
			}
			if err := a.saveOverlay(); err != nil {
				return err
			}
			printTransaction(cmd.OutOrStdout(), tx)
			return nil
		},
	}
	return cmd
}

func printTransaction(w io.Writer, tx model.Transaction) {
	location := "unassigned"
	if tx.Located() {
		location = tx.Region + "/" + tx.District
	}
	fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
		tx.ID, tx.Category, tx.Effective.StringFixed(2), location, tx.Status)
}
