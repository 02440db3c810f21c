package main

import (
	"os"

	"github.com/budgetlens-dev/budgetlens/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
