package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/budgetlens-dev/budgetlens/internal/aggregate"
	"github.com/budgetlens-dev/budgetlens/internal/model"
	"github.com/budgetlens-dev/budgetlens/internal/report"
)

func newReportCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate all transactions and print per-department budget usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			known := a.cfg.Hierarchy.DepartmentNames()
			res := aggregate.Aggregate(a.service.Snapshot(), known)

			for _, dept := range departmentKeys(res, known) {
				summary, err := a.builder.BuildSummary(ctx, dept, res, a.store)
				if err != nil {
					return err
				}
				printSummary(cmd.OutOrStdout(), summary)
			}
			return nil
		},
	}
	return cmd
}

// departmentKeys lists configured departments first, alphabetically, with
// "unmapped" last when it accumulated anything.
func departmentKeys(res aggregate.Result, known map[string]bool) []model.NodeKey {
	var names []string
	for name := range known {
		names = append(names, name)
	}
	sort.Strings(names)

	keys := make([]model.NodeKey, 0, len(names)+1)
	for _, name := range names {
		keys = append(keys, model.DepartmentKey(name))
	}
	unmapped := model.DepartmentKey(model.UnmappedDepartment)
	if _, ok := res[unmapped]; ok {
		keys = append(keys, unmapped)
	}
	return keys
}

func printSummary(w io.Writer, s report.Summary) {
	marker := ""
	if s.OverBudget() {
		marker = "  OVER BUDGET"
	}
	fmt.Fprintf(w, "%s: allocated %s, booked %s, reserved %s, remaining %s (%s%% used)%s\n",
		s.Key, s.Allocated.StringFixed(2), s.Booked.StringFixed(2),
		s.Reserved.StringFixed(2), s.Remaining.StringFixed(2),
		s.UsagePercentage.StringFixed(1), marker)

	if s.UnassignedCount > 0 || s.OutlierCount > 0 {
		fmt.Fprintf(w, "  %d awaiting assignment, %d outliers\n", s.UnassignedCount, s.OutlierCount)
	}
	for _, row := range s.Breakdown {
		fmt.Fprintf(w, "  %-20s booked %12s  reserved %12s  total %12s\n",
			row.Name, row.Booked.StringFixed(2), row.Reserved.StringFixed(2), row.Total.StringFixed(2))
	}
}
