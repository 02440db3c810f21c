package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/budgetlens-dev/budgetlens/internal/config"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new budgetlens project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(cmd, absDir)
		},
	}
	return cmd
}

func runInit(cmd *cobra.Command, dir string) error {
	if err := os.MkdirAll(filepath.Join(dir, "import"), 0o755); err != nil {
		return fmt.Errorf("creating import directory: %w", err)
	}

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(dir, "budgetlens.db")
	cfg.Import.Dir = filepath.Join(dir, "import")
	if err := config.Save(filepath.Join(dir, "budgetlens.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized budgetlens project at %s\n", dir)
	fmt.Fprintln(cmd.OutOrStdout(), "Add your departments to budgetlens.yaml and drop exports into import/.")
	return nil
}
