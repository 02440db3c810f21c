// Package commands wires the engine into the budgetlens CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/budgetlens-dev/budgetlens/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "budgetlens",
		Short:   "Organizational budget reconciliation and assignment",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "budgetlens.yaml", "path to budgetlens.yaml")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newImportCommand(&configPath))
	rootCmd.AddCommand(newReportCommand(&configPath))
	rootCmd.AddCommand(newAssignCommand(&configPath))
	rootCmd.AddCommand(newUnassignCommand(&configPath))
	rootCmd.AddCommand(newReconcileCommand(&configPath))
	rootCmd.AddCommand(newAllocateCommand(&configPath))

	return rootCmd
}
