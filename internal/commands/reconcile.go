package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newReconcileCommand(configPath *string) *cobra.Command {
	var dateStr string

	cmd := &cobra.Command{
		Use:   "reconcile <order-no> <actual-amount>",
		Short: "Match a parked measure against its booked accounting record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actual, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("parsing actual amount %q: %w", args[1], err)
			}
			bookingDate := time.Now()
			if dateStr != "" {
				bookingDate, err = time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("parsing booking date %q: %w", dateStr, err)
				}
			}

			a, err := loadApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			tx, err := a.service.Reconcile(args[0], actual, bookingDate)
			if err != nil {
				return err
			}
			// The measure is final now; its overlay entry would be stale on
			// the next replay.
			if err := a.saveOverlay(); err != nil {
				return err
			}

			printTransaction(cmd.OutOrStdout(), tx)
			fmt.Fprintf(cmd.OutOrStdout(), "variance: %s\n", tx.Variance.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "booking date (YYYY-MM-DD, default today)")
	return cmd
}
